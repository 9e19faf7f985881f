package httpx

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes. CSRF rejection is deliberately distinct from
// forbidden so clients can tell "resubmit with a fresh token" apart from
// "log in again".
const (
	CodeThreatDetected  = "threat_detected"
	CodeRateLimited     = "rate_limited"
	CodeAuthRequired    = "auth_required"
	CodeAuthInvalid     = "auth_invalid"
	CodeForbidden       = "forbidden"
	CodeCSRFRejected    = "csrf_rejected"
	CodeValidationError = "validation_error"
	CodeNotFound        = "not_found"
	CodeInternalError   = "internal_error"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. Sensitive
// responses must not be cached, so cache headers are disabled here rather
// than per-handler.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a taxonomy error. The message must already be safe for
// clients; nothing internal belongs in it.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// WriteValidationError reports field-level problems with the caller's own
// input. This is the one error shape where detail is allowed.
func WriteValidationError(w http.ResponseWriter, message string, details []string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// NoCache disables caching on the response.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
