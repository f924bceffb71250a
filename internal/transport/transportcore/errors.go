package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// These are used for error identification and testing.
var (
	// ErrSlotOccupied indicates a RequestContext slot was filled twice.
	ErrSlotOccupied = errors.New("request context slot already set")

	// ErrUnknownSource indicates a validation source other than body, params or query.
	ErrUnknownSource = errors.New("unknown input source")

	// ErrRequestAborted indicates the client went away before the pipeline finished.
	ErrRequestAborted = errors.New("request aborted")

	// ErrServerClosed indicates the server has been shut down and cannot be started.
	ErrServerClosed = errors.New("server closed")

	// ErrServerStarted indicates Start was called more than once.
	ErrServerStarted = errors.New("server already started")
)
