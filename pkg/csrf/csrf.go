// Package csrf implements the double-submit anti-forgery token pair: an
// opaque random token held in a cookie and echoed back by the client in a
// header on every state-changing request.
package csrf

import (
	"crypto/subtle"

	"github.com/fieldops/salesreport/pkg/cryptox"
)

// TokenBytes is the raw entropy per token before encoding.
const TokenBytes = cryptox.TokenSize256

// GenerateToken draws a fresh per-session token from the CSPRNG,
// base64url-encoded so it travels in cookies and headers unescaped.
func GenerateToken() (string, error) {
	return cryptox.GenerateToken(TokenBytes)
}

// Validate compares the client-submitted token against the session-bound
// token. Either being empty fails immediately; otherwise the comparison is
// constant-time over the full length, so where the first mismatching byte
// sits never shows up in the response latency. A short-circuiting == here
// would be a timing side-channel.
func Validate(submitted, session string) bool {
	if submitted == "" || session == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(session)) == 1
}
