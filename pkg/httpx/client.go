package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client address, honoring X-Forwarded-For and
// X-Real-IP for proxied requests before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ClientID derives the rate-limit identifier from network address plus
// user-agent. This is an approximation of a client, not a strong identity;
// it only has to make bulk abuse expensive.
func ClientID(r *http.Request) string {
	ua := r.UserAgent()
	if len(ua) > 64 {
		ua = ua[:64]
	}
	return ClientIP(r) + "|" + ua
}
