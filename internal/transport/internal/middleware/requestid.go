package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
	"github.com/jamesprial/storefront-api/pkg/api"
)

// maxRequestIDLength caps client-supplied IDs before they reach logs.
const maxRequestIDLength = 128

// NewRequestIDMiddleware creates middleware that assigns every request a
// correlation ID. A well-formed X-Request-ID from the client is kept;
// otherwise a random UUID is generated. The ID is echoed in the response.
func NewRequestIDMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(api.HeaderRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
			}

			w.Header().Set(api.HeaderRequestID, id)
			ctx := transportcore.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validRequestID accepts non-empty printable ASCII up to maxRequestIDLength.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
