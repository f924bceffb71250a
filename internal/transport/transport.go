// Package transport provides the HTTP transport layer for the storefront API.
// It composes authentication, validation and error translation into a route
// pipeline and owns the server lifecycle.
package transport

import (
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// Re-export types from transportcore.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and pipeline composition.
type Router = transportcore.Router

// Stage is one step of a route pipeline.
type Stage = transportcore.Stage

// StageFunc adapts a function to the Stage interface.
type StageFunc = transportcore.StageFunc

// Phase orders stages within a route pipeline.
type Phase = transportcore.Phase

// Handler is the terminal step of a route pipeline.
type Handler = transportcore.Handler

// ErrorResponder renders failures as the JSON error envelope.
type ErrorResponder = transportcore.ErrorResponder

// Pinger reports whether a dependency is reachable.
type Pinger = transportcore.Pinger

// Phases.
const (
	PhaseAuthenticate = transportcore.PhaseAuthenticate
	PhaseValidate     = transportcore.PhaseValidate
)
