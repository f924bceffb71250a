package token

import "errors"

// Sentinel errors describing why verification failed. They are logged for
// operators; clients only ever see a single generic message.
var (
	// ErrMalformedToken indicates the token could not be parsed.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidSignature indicates signature verification failed.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrTokenExpired indicates the exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrUnsupportedAlgorithm indicates the token is not HMAC-signed.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrMissingClaim indicates a required claim is absent or empty.
	ErrMissingClaim = errors.New("missing claim")
)
