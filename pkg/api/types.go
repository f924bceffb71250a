// Package api provides wire-level constants shared by the storefront API and
// its clients.
package api

// Authentication scheme.
const (
	// BearerScheme is the Authorization scheme accepted on protected routes.
	BearerScheme = "Bearer"

	// BearerPrefix is the exact, case-sensitive prefix of a bearer credential.
	BearerPrefix = BearerScheme + " "
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRequestID carries the per-request correlation ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderRetryAfter is sent with rate-limited responses.
	HeaderRetryAfter = "Retry-After"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"
)

// Request input sources a route may validate.
const (
	SourceBody   = "body"
	SourceParams = "params"
	SourceQuery  = "query"
)
