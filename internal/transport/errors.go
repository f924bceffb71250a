package transport

import (
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// Re-export errors from transportcore.
var (
	// ErrSlotOccupied indicates a RequestContext slot was filled twice.
	ErrSlotOccupied = transportcore.ErrSlotOccupied

	// ErrUnknownSource indicates an unknown validation source.
	ErrUnknownSource = transportcore.ErrUnknownSource

	// ErrRequestAborted indicates the client went away mid-pipeline.
	ErrRequestAborted = transportcore.ErrRequestAborted

	// ErrServerClosed indicates the server has been shut down.
	ErrServerClosed = transportcore.ErrServerClosed

	// ErrServerStarted indicates Start was called more than once.
	ErrServerStarted = transportcore.ErrServerStarted
)
