package transport

import (
	"context"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// RequestContext carries the identity and validated input of one request.
type RequestContext = transportcore.RequestContext

// Source names the part of a request a validation stage reads.
type Source = transportcore.Source

// Validation sources.
const (
	SourceBody   = transportcore.SourceBody
	SourceParams = transportcore.SourceParams
	SourceQuery  = transportcore.SourceQuery
)

// Validated returns the value a validation stage stored for source as T.
//
//	params, ok := transport.Validated[CategoryParams](rc, transport.SourceParams)
func Validated[T any](rc *RequestContext, source Source) (T, bool) {
	return transportcore.Validated[T](rc, source)
}

// RequestContextFromContext extracts the RequestContext from ctx.
// Returns nil and false outside a route pipeline.
func RequestContextFromContext(ctx context.Context) (*RequestContext, bool) {
	return transportcore.RequestContextFromContext(ctx)
}

// RequestIDFromContext returns the request correlation ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return transportcore.RequestIDFromContext(ctx)
}
