// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/jamesprial/storefront-api/internal/auth"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// TokenVerifier is a mock implementation of auth.TokenVerifier.
type TokenVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (*auth.Identity, error)

	mu     sync.Mutex
	tokens []string
}

// Verify records the token and calls the mock VerifyFunc.
func (m *TokenVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return nil, nil
}

// Tokens returns every token passed to Verify, in call order.
func (m *TokenVerifier) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

// ErrorResponder is a mock transportcore.ErrorResponder that records errors
// and writes a bare status.
type ErrorResponder struct {
	// Status is written for every error; 0 means 500.
	Status int

	mu     sync.Mutex
	errors []error
}

// Respond records err and writes Status.
func (m *ErrorResponder) Respond(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.errors = append(m.errors, err)
	m.mu.Unlock()

	status := m.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
}

// Errors returns the recorded errors.
func (m *ErrorResponder) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.errors...)
}

// Called reports whether Respond was invoked.
func (m *ErrorResponder) Called() bool {
	return len(m.Errors()) > 0
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = nil
}

// Stage is a mock transportcore.Stage.
type Stage struct {
	P           transportcore.Phase
	ProcessFunc func(r *http.Request, rc *transportcore.RequestContext) error

	mu    sync.Mutex
	calls int
}

// Phase returns P.
func (m *Stage) Phase() transportcore.Phase {
	return m.P
}

// Process counts the call and delegates to ProcessFunc.
func (m *Stage) Process(r *http.Request, rc *transportcore.RequestContext) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.ProcessFunc != nil {
		return m.ProcessFunc(r, rc)
	}
	return nil
}

// Calls returns how many times Process ran.
func (m *Stage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Pinger is a mock transportcore.Pinger.
type Pinger struct {
	PingFunc func(ctx context.Context) error
}

// Ping calls the mock PingFunc.
func (m *Pinger) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Observer records error and auth failure observations.
type Observer struct {
	mu           sync.Mutex
	ErrorCodes   []string
	AuthFailures []string
}

// ObserveError records code.
func (m *Observer) ObserveError(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCodes = append(m.ErrorCodes, code)
}

// ObserveAuthFailure records reason.
func (m *Observer) ObserveAuthFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthFailures = append(m.AuthFailures, reason)
}

// Snapshot returns copies of the recorded observations.
func (m *Observer) Snapshot() (errorCodes, authFailures []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorCodes...), append([]string(nil), m.AuthFailures...)
}
