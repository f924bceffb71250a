package transportcore

import (
	"encoding/json"
	"net/http"

	"github.com/jamesprial/storefront-api/pkg/api"
)

// ResponseWriter is an http.ResponseWriter that remembers whether a response
// has been started and with which status.
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the status sent, or 200 if nothing was sent yet.
	Status() int

	// Written reports whether headers have been sent.
	Written() bool

	// Unwrap returns the wrapped writer for http.ResponseController.
	Unwrap() http.ResponseWriter
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WrapResponseWriter returns w as a ResponseWriter. A writer that is already
// tracked is returned unchanged so every layer observes the same state.
func WrapResponseWriter(w http.ResponseWriter) ResponseWriter {
	if tracked, ok := w.(ResponseWriter); ok {
		return tracked
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
// Only the first call reaches the client.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.statusCode = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures status code is captured even if WriteHeader is not called explicitly.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Status() int { return rw.statusCode }

func (rw *responseWriter) Written() bool { return rw.written }

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Flush implements http.Flusher when the underlying writer does.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		if !rw.written {
			rw.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
