// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Phase orders stages within a route pipeline. Lower phases run first;
// stages in the same phase keep their registration order.
type Phase int

const (
	// PhaseAuthenticate establishes the caller's identity.
	PhaseAuthenticate Phase = 10

	// PhaseValidate parses and validates request input.
	PhaseValidate Phase = 20
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseAuthenticate:
		return "authenticate"
	case PhaseValidate:
		return "validate"
	default:
		return "custom"
	}
}

// Stage is one step of a route pipeline. Process either attaches data to the
// RequestContext and returns nil, or returns an error that ends the request.
// Stages never write to the response; failures are rendered by the
// ErrorResponder.
type Stage interface {
	Phase() Phase
	Process(r *http.Request, rc *RequestContext) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	P  Phase
	Fn func(r *http.Request, rc *RequestContext) error
}

// Phase returns the configured phase.
func (s StageFunc) Phase() Phase { return s.P }

// Process calls Fn.
func (s StageFunc) Process(r *http.Request, rc *RequestContext) error { return s.Fn(r, rc) }

// Handler is the terminal step of a route pipeline. Returning an error hands
// it to the ErrorResponder; a handler that returns an error must not have
// written a response.
type Handler func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start binds the listener and begins serving in the background.
	// Bind failures are returned directly; later serve failures are
	// delivered on Err.
	Start() error

	// Shutdown stops accepting connections and waits for in-flight requests
	// until ctx is done. It is idempotent: later calls return the first
	// result.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string

	// Err reports a fatal serve error. It is closed when serving stops.
	Err() <-chan error
}

// Router handles HTTP request routing and pipeline composition.
type Router interface {
	http.Handler

	// Handle registers handler for method and path behind the given stages.
	// Path uses gorilla/mux template syntax, e.g. "/api/categories/{id}".
	Handle(method, path string, handler Handler, stages ...Stage)

	// HandleHTTP registers a plain http.Handler that bypasses the pipeline.
	HandleHTTP(method, path string, handler http.Handler)

	// Use wraps the whole router, including unmatched requests, with
	// middleware. The first middleware registered is the outermost.
	Use(middlewares ...Middleware)

	// RouteTemplate returns the path template matching r, or "" when no
	// route matches.
	RouteTemplate(r *http.Request) string
}

// ErrorResponder renders a failure as the JSON error envelope.
type ErrorResponder interface {
	// Respond writes the response for err exactly once. If a response was
	// already started on w, it only logs.
	Respond(w http.ResponseWriter, r *http.Request, err error)
}

// ErrorObserver is notified of every error response by code.
type ErrorObserver interface {
	ObserveError(code string)
}

// AuthFailureObserver is notified of rejected credentials by reason.
type AuthFailureObserver interface {
	ObserveAuthFailure(reason string)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
