package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs identity tokens with HS256.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer creates an issuer for secret.
func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Issue returns a signed token for id/username that expires after ttl.
func (i *Issuer) Issue(id int64, username string, ttl time.Duration) (string, error) {
	if id == 0 || username == "" {
		return "", fmt.Errorf("%w: id and username are required", ErrMissingClaim)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	now := i.now()
	claims := &Claims{
		ID:       id,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
