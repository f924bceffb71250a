package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// router implements transportcore.Router using gorilla/mux.
type router struct {
	mux         *mux.Router
	responder   transportcore.ErrorResponder
	logger      logrus.FieldLogger
	middlewares []transportcore.Middleware
	handler     http.Handler
}

// NewRouter creates a router whose unmatched requests are answered by
// responder: 404 for unknown paths and 405 for a known path with another
// method. Middleware registration is not safe for concurrent use and must
// finish before serving.
func NewRouter(responder transportcore.ErrorResponder, logger logrus.FieldLogger) transportcore.Router {
	if responder == nil {
		panic("responder cannot be nil")
	}

	r := &router{
		mux:         mux.NewRouter(),
		responder:   responder,
		logger:      logging.OrDefault(logger),
		middlewares: make([]transportcore.Middleware, 0),
	}

	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responder.Respond(w, req, internalerrors.NotFound("Route not found"))
	})
	r.mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responder.Respond(w, req, internalerrors.MethodNotAllowed(""))
	})

	r.handler = r.mux
	return r
}

// Handle registers handler behind stages for method and path.
func (r *router) Handle(method, path string, handler transportcore.Handler, stages ...transportcore.Stage) {
	if handler == nil {
		panic("handler cannot be nil")
	}
	p := newPipeline(handler, stages, r.responder, r.logger)
	r.mux.Handle(path, p).Methods(method)
}

// HandleHTTP registers a plain handler for method and path.
func (r *router) HandleHTTP(method, path string, handler http.Handler) {
	if handler == nil {
		panic("handler cannot be nil")
	}
	r.mux.Handle(path, handler).Methods(method)
}

// Use wraps the router with middlewares.
// Middleware is applied in order, so the first middleware in the list
// is the outermost layer (executes first).
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
	r.handler = r.applyMiddleware(r.mux)
}

// ServeHTTP implements http.Handler.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// RouteTemplate returns the registered template matching req.
func (r *router) RouteTemplate(req *http.Request) string {
	var match mux.RouteMatch
	if !r.mux.Match(req, &match) || match.Route == nil || match.MatchErr != nil {
		return ""
	}
	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return tpl
}

// applyMiddleware wraps the handler with all registered middleware.
func (r *router) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order so the first middleware
	// registered is the outermost layer
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
