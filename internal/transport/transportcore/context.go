package transportcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jamesprial/storefront-api/internal/auth"
	"github.com/jamesprial/storefront-api/pkg/api"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// RequestContextKey is the context key for the per-request RequestContext.
	RequestContextKey contextKey = "request_context"

	// RequestIDContextKey is the context key for the request correlation ID.
	RequestIDContextKey contextKey = "request_id"
)

// Source names the part of a request a validation stage reads.
type Source string

const (
	SourceBody   Source = api.SourceBody
	SourceParams Source = api.SourceParams
	SourceQuery  Source = api.SourceQuery
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceBody, SourceParams, SourceQuery:
		return true
	default:
		return false
	}
}

// RequestContext carries what the pipeline learned about one request: the
// authenticated identity and the validated input per source. It is created
// when the request enters a route pipeline and discarded with it.
//
// Every slot can be filled at most once; a second attempt returns
// ErrSlotOccupied.
type RequestContext struct {
	mu        sync.RWMutex
	requestID string
	identity  *auth.Identity
	body      slot
	params    slot
	query     slot
}

type slot struct {
	set   bool
	value any
}

// NewRequestContext creates an empty context for the request with requestID.
func NewRequestContext(requestID string) *RequestContext {
	return &RequestContext{requestID: requestID}
}

// RequestID returns the correlation ID of the request.
func (rc *RequestContext) RequestID() string {
	return rc.requestID
}

// Identity returns the authenticated caller, if any.
func (rc *RequestContext) Identity() (*auth.Identity, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.identity == nil {
		return nil, false
	}
	identity := *rc.identity
	return &identity, true
}

// SetIdentity attaches the authenticated caller.
func (rc *RequestContext) SetIdentity(identity auth.Identity) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.identity != nil {
		return fmt.Errorf("%w: identity", ErrSlotOccupied)
	}
	rc.identity = &identity
	return nil
}

// SetValidated stores the validated value for source.
func (rc *RequestContext) SetValidated(source Source, value any) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	s, err := rc.slotFor(source)
	if err != nil {
		return err
	}
	if s.set {
		return fmt.Errorf("%w: %s", ErrSlotOccupied, source)
	}
	s.set = true
	s.value = value
	return nil
}

// Validated returns the value stored for source.
func (rc *RequestContext) Validated(source Source) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	s, err := rc.slotFor(source)
	if err != nil || !s.set {
		return nil, false
	}
	return s.value, true
}

func (rc *RequestContext) slotFor(source Source) (*slot, error) {
	switch source {
	case SourceBody:
		return &rc.body, nil
	case SourceParams:
		return &rc.params, nil
	case SourceQuery:
		return &rc.query, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

// Validated returns the value stored for source as T. It reports false when
// the slot is empty or holds a different type.
func Validated[T any](rc *RequestContext, source Source) (T, bool) {
	var zero T
	if rc == nil {
		return zero, false
	}
	value, ok := rc.Validated(source)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// ContextWithRequestContext adds rc to ctx.
func ContextWithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestContextKey, rc)
}

// RequestContextFromContext extracts the RequestContext from ctx.
// Returns nil and false if none is present.
func RequestContextFromContext(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(RequestContextKey).(*RequestContext)
	return rc, ok && rc != nil
}

// ContextWithRequestID adds the request correlation ID to ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestIDContextKey, requestID)
}

// RequestIDFromContext returns the request correlation ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
