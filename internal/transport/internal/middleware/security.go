package middleware

import (
	"net/http"

	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// securityHeaders are set on every response. The API only serves JSON, so the
// content security policy forbids everything.
var securityHeaders = map[string]string{
	"Content-Security-Policy":           "default-src 'none'; frame-ancestors 'none'",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=15552000; includeSubDomains",
	"X-Content-Type-Options":            "nosniff",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Frame-Options":                   "SAMEORIGIN",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// NewSecurityHeadersMiddleware creates middleware that adds hardening headers.
func NewSecurityHeadersMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range securityHeaders {
				h.Set(name, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
