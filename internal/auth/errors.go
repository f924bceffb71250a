package auth

import "github.com/jamesprial/storefront-api/internal/auth/internal/token"

// Sentinel errors returned (wrapped) by TokenVerifier.Verify.
var (
	ErrMalformedToken       = token.ErrMalformedToken
	ErrInvalidSignature     = token.ErrInvalidSignature
	ErrTokenExpired         = token.ErrTokenExpired
	ErrUnsupportedAlgorithm = token.ErrUnsupportedAlgorithm
	ErrMissingClaim         = token.ErrMissingClaim
)
