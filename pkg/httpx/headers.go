package httpx

import (
	"net/http"
	"strings"
)

// DefaultCSP is the content security policy attached to every response.
// Inline styles are allowed for the report form pages; everything else is
// same-origin only.
const DefaultCSP = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; " +
	"base-uri 'self'; form-action 'self'"

// securityHeaders is the fixed header set every response receives,
// regardless of outcome.
var securityHeaders = map[string]string{
	"Content-Security-Policy":           DefaultCSP,
	"X-Frame-Options":                   "DENY",
	"X-Content-Type-Options":            "nosniff",
	"X-XSS-Protection":                  "1; mode=block",
	"Referrer-Policy":                   "strict-origin-when-cross-origin",
	"Permissions-Policy":                "camera=(), microphone=(), geolocation=()",
	"Strict-Transport-Security":         "max-age=31536000; includeSubDomains",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
}

// SetSecurityHeaders applies the fixed security header set, with a CSP
// override if csp is non-empty. API responses additionally get cache
// disabled: token and report payloads must never land in shared caches.
func SetSecurityHeaders(w http.ResponseWriter, path, csp string) {
	h := w.Header()
	for name, value := range securityHeaders {
		h.Set(name, value)
	}
	if csp != "" {
		h.Set("Content-Security-Policy", csp)
	}
	if IsAPIPath(path) {
		NoCache(w)
	}
}

// IsAPIPath reports whether the request targets the JSON API rather than a
// page.
func IsAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
