package auth

import (
	"context"
	"time"

	"github.com/jamesprial/storefront-api/internal/auth/internal/token"
)

// tokenVerifierAdapter adapts token.Verifier to the TokenVerifier interface.
type tokenVerifierAdapter struct {
	verifier *token.Verifier
}

func (a *tokenVerifierAdapter) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := a.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: claims.ID, Username: claims.Username}, nil
}

// tokenIssuerAdapter adapts token.Issuer to the TokenIssuer interface.
type tokenIssuerAdapter struct {
	issuer *token.Issuer
}

func (a *tokenIssuerAdapter) Issue(identity Identity, ttl time.Duration) (string, error) {
	return a.issuer.Issue(identity.ID, identity.Username, ttl)
}

// NewTokenVerifier creates a verifier for tokens signed with secret.
// clockSkew is the leeway applied to the exp claim.
func NewTokenVerifier(secret string, clockSkew time.Duration) TokenVerifier {
	return &tokenVerifierAdapter{verifier: token.NewVerifier([]byte(secret), clockSkew)}
}

// NewTokenIssuer creates an issuer that signs with secret using HS256.
func NewTokenIssuer(secret string) TokenIssuer {
	return &tokenIssuerAdapter{issuer: token.NewIssuer([]byte(secret))}
}
