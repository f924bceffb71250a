package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// quietLogger returns a logger that discards output.
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newRequestContext returns a request and a fresh RequestContext for it.
func newRequestContext(method, target string, body io.Reader) (*http.Request, *transportcore.RequestContext) {
	req := httptest.NewRequest(method, target, body)
	return req, transportcore.NewRequestContext("test-request")
}

// okHandler writes 200 and counts calls.
type okHandler struct {
	calls int
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.WriteHeader(http.StatusOK)
}
