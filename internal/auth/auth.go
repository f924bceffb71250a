// Package auth verifies and issues the bearer tokens that identify callers of
// privileged routes. Tokens are HMAC-signed JWTs carrying an id and username;
// verification is self-contained and performs no I/O.
package auth

import (
	"context"
	"time"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	// ID is the numeric user identifier from the "id" claim.
	ID int64 `json:"id"`

	// Username is the login name from the "username" claim.
	Username string `json:"username"`
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	// Verify checks signature and expiry and returns the identity the token
	// carries. The returned error wraps one of this package's sentinels and is
	// meant for logs only.
	Verify(ctx context.Context, token string) (*Identity, error)
}

// TokenIssuer signs identity tokens for a login collaborator.
type TokenIssuer interface {
	// Issue returns a signed token for identity that expires after ttl.
	Issue(identity Identity, ttl time.Duration) (string, error)
}
