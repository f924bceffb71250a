// Package transport provides the HTTP transport layer for the storefront API.
//
// # Architecture
//
// Every route runs a pipeline: zero or more stages, then the handler. A stage
// either passes (possibly attaching data to the per-request RequestContext)
// or returns an error; the first error ends the pipeline and is handed to the
// ErrorResponder, the only component that writes failure responses.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public types (aliases of transportcore)
//	├── errors.go                 # Transport domain errors
//	├── context.go                # RequestContext and Validated[T]
//	├── wire.go                   # Factory functions
//	├── transportcore/            # Core types shared with internal packages
//	└── internal/
//	    ├── http/
//	    │   ├── server.go         # HTTP server with graceful shutdown
//	    │   ├── router.go         # gorilla/mux routing and 404/405
//	    │   ├── pipeline.go       # Stage ordering, abort checks, panic recovery
//	    │   └── response.go       # Error responder
//	    ├── middleware/
//	    │   ├── auth.go           # Bearer authentication stage
//	    │   ├── validate.go       # Schema validation stage
//	    │   ├── recovery.go       # Panic recovery
//	    │   ├── requestid.go      # X-Request-ID
//	    │   ├── logging.go        # Request logging
//	    │   ├── metrics.go        # Prometheus request metrics
//	    │   ├── security.go       # Hardening headers
//	    │   ├── cors.go           # CORS
//	    │   ├── bodylimit.go      # Request body cap
//	    │   └── ratelimit.go      # Per-client rate limiting
//	    └── handlers/
//	        └── health.go         # /health and /ready
//
// # Stage Ordering
//
// Stages run in phase order regardless of registration order: authentication
// before validation, so an unauthenticated request is rejected with 401
// before its input is examined. Validation stages run in the order given.
//
//	svc.Router.Handle(http.MethodPut, "/api/admin/categories/{id}", update,
//		svc.RequireAuth(),
//		transport.Validate(transport.SourceParams, schema.For[CategoryParams]()),
//		transport.Validate(transport.SourceBody, schema.For[UpdateCategory]()),
//	)
//
// # Middleware Chain
//
// Global middleware is applied in this order:
//
//  1. Recovery - last-resort panic handler
//  2. Request ID - echoes or generates X-Request-ID
//  3. Logging - logs request details
//  4. Metrics - request counts and latency by route template (optional)
//  5. Security headers
//  6. CORS - answers preflight requests directly
//  7. Body limit - caps request bodies (413)
//  8. Rate limit - per-client token bucket (optional, 429)
//
// # Error Handling
//
// Failures are rendered as {"error": code, "message": message, "details": details}.
// Typed errors from internal/errors keep their status and message; anything
// else becomes a generic 500 and the original error is only logged. A
// response is written at most once per request, and nothing is written for a
// client that has already gone away.
package transport
