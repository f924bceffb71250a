// Package token signs and verifies HMAC bearer tokens that carry an identity.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload carried by identity tokens.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// allowedAlgorithms restricts verification to HMAC methods so a token can
// never select a different key type.
var allowedAlgorithms = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Verifier validates tokens signed with a pre-shared secret.
type Verifier struct {
	secret    []byte
	clockSkew time.Duration
	now       func() time.Time
}

// NewVerifier creates a verifier for secret with the given expiry leeway.
func NewVerifier(secret []byte, clockSkew time.Duration) *Verifier {
	return &Verifier{
		secret:    secret,
		clockSkew: clockSkew,
		now:       time.Now,
	}
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Verification is self-contained; no I/O is performed.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("%w: token is invalid", ErrMalformedToken)
	}

	if claims.ID == 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingClaim)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingClaim)
	}

	return claims, nil
}

// classify maps jwt parse errors onto this package's sentinels while keeping
// the original error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", ErrMissingClaim, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}
