package middleware

import (
	"net/http"
)

// SecurityConfig controls the response hardening headers.
type SecurityConfig struct {
	// HSTS is only sent outside development, where the API sits behind TLS.
	IsDevelopment bool
}

// staticSecurityHeaders apply to every response. The API serves JSON, CSV and
// event streams only, so nothing may be framed or executed.
var staticSecurityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Permissions-Policy":      "camera=(), microphone=(), payment=(), usb=()",
	// Isolate the browsing context; the tracker UI lives on a sibling origin,
	// so resources stay readable same-site.
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-site",
}

// Security sets hardening headers before the handler runs.
//
// Trips, reports and backups are personal data, so responses default to
// Cache-Control: no-store. CSV and backup downloads keep it; the home address
// event stream replaces it with no-cache when it starts streaming.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range staticSecurityHeaders {
				h.Set(k, v)
			}
			h.Set("Cache-Control", "no-store")
			if !cfg.IsDevelopment {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize rejects request bodies larger than maxBytes. A declared
// Content-Length over the limit is refused up front; chunked bodies are cut
// off while the handler reads them.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
