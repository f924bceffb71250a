package middleware

import (
	"net/http"
	"strings"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

const (
	corsAllowMethods = "GET, HEAD, PUT, PATCH, POST, DELETE"
	corsMaxAge       = "600"
)

// NewCORSMiddleware creates middleware that allows cross-origin requests from
// allowOrigin ("*" allows any). Preflight requests are answered directly with
// 200 and never reach the router. An empty allowOrigin disables CORS headers.
func NewCORSMiddleware(allowOrigin string) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowOrigin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					h.Set("Access-Control-Allow-Headers", requested)
					h.Add("Vary", "Access-Control-Request-Headers")
				}
				h.Set("Access-Control-Max-Age", corsMaxAge)
				h.Set("Content-Length", "0")
				w.WriteHeader(http.StatusOK)
				return
			}

			h.Set("Access-Control-Expose-Headers", strings.Join([]string{"X-Request-ID", "Retry-After"}, ", "))
			next.ServeHTTP(w, r)
		})
	}
}
