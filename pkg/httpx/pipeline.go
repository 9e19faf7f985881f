package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fieldops/salesreport/pkg/csrf"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/ratelimit"
	"github.com/fieldops/salesreport/pkg/screen"
	"github.com/fieldops/salesreport/pkg/slogx"
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// Default cookie and header names for the auth and CSRF contracts.
const (
	DefaultAuthCookie = "auth-token"
	DefaultCSRFCookie = "csrf-token"
	DefaultCSRFHeader = "x-csrf-token"
	DefaultLoginPath  = "/login"
)

// PipelineConfig wires the security pipeline's collaborators and policy.
type PipelineConfig struct {
	Limiter *ratelimit.Limiter
	Tokens  TokenVerifier

	// Production enables the HTTPS redirect and Secure cookies.
	Production bool

	// CSP overrides the default Content-Security-Policy when non-empty.
	CSP string

	// ProtectedPrefixes are path prefixes requiring authentication, minus
	// anything listed in PublicPaths.
	ProtectedPrefixes []string

	// PublicPaths are exact paths exempt from authentication (login,
	// refresh, health checks).
	PublicPaths map[string]struct{}

	AuthCookie string
	CSRFCookie string
	CSRFHeader string

	// LoginPath is where unauthenticated page requests get redirected.
	LoginPath string
}

func (cfg *PipelineConfig) applyDefaults() {
	if cfg.AuthCookie == "" {
		cfg.AuthCookie = DefaultAuthCookie
	}
	if cfg.CSRFCookie == "" {
		cfg.CSRFCookie = DefaultCSRFCookie
	}
	if cfg.CSRFHeader == "" {
		cfg.CSRFHeader = DefaultCSRFHeader
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
}

// Pipeline is the per-request security gate. Stages run in a fixed order and
// the first failure short-circuits everything after it, including the
// downstream handler:
//
//	Screening -> RateLimiting -> HTTPS -> AuthCheck -> CSRFCheck -> Dispatch
//
// The ordering is load-bearing. Screening rejects garbage before any state
// is touched; rate limiting runs before authentication so an unauthenticated
// flood cannot burn signature checks; CSRF runs after authentication because
// forgery tokens are meaningless for a caller who will be rejected anyway.
// Every stage fails closed.
func Pipeline(cfg PipelineConfig) Middleware {
	cfg.applyDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Headers are set before any stage can write a status line, so
			// denials carry them too.
			SetSecurityHeaders(w, r.URL.Path, cfg.CSP)

			log := slogx.FromContext(r.Context())

			// 1. Threat screening. Generic 400; the matched pattern is
			// logged server-side and never reflected back.
			if res := screen.Screen(r.URL.Path, r.URL.RawQuery); !res.OK {
				log.Warn("request blocked by threat screen", "reason", res.Reason)
				WriteError(w, http.StatusBadRequest, CodeThreatDetected, "invalid request")
				return
			}

			// 2. Rate limiting.
			if cfg.Limiter != nil {
				decision := cfg.Limiter.Check(ClientID(r), r.URL.Path)
				setRateLimitHeaders(w, decision)
				if !decision.Allowed {
					log.Warn("rate limit exceeded",
						"path", r.URL.Path,
						"retry_after", decision.RetryAfterSeconds(),
					)
					msg := decision.Message
					if msg == "" {
						msg = "too many requests, please try again later"
					}
					WriteError(w, http.StatusTooManyRequests, CodeRateLimited, msg)
					return
				}
			}

			// 3. HTTPS upgrade in production.
			if cfg.Production && !isTLS(r) {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}

			// 4. Authentication on protected paths.
			if cfg.isProtected(r.URL.Path) {
				token := bearerOrCookieToken(r, cfg.AuthCookie)
				if token == "" {
					cfg.denyUnauthenticated(w, r, CodeAuthRequired)
					return
				}
				claims, err := cfg.Tokens.Verify(token)
				if err != nil {
					// Expired and tampered tokens read identically here.
					log.Warn("token verification failed")
					cfg.denyUnauthenticated(w, r, CodeAuthInvalid)
					return
				}
				r = r.WithContext(ContextWithIdentity(r.Context(), claims.Identity()))
			}

			// 5. CSRF double-submit on unsafe methods against the protected
			// API; a safe request without a cookie gets one minted for the
			// next submission.
			if !cfg.checkCSRF(w, r) {
				log.Warn("csrf validation failed", "path", r.URL.Path)
				WriteError(w, http.StatusForbidden, CodeCSRFRejected, "csrf token missing or invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (cfg *PipelineConfig) isProtected(path string) bool {
	if _, ok := cfg.PublicPaths[path]; ok {
		return false
	}
	for _, prefix := range cfg.ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (cfg *PipelineConfig) denyUnauthenticated(w http.ResponseWriter, r *http.Request, code string) {
	if IsAPIPath(r.URL.Path) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, code, "authentication required")
		return
	}
	http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
}

// checkCSRF enforces the double-submit contract. Returns false only when the
// request must be rejected.
func (cfg *PipelineConfig) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(cfg.CSRFCookie)

	if isSafeMethod(r.Method) {
		if err != nil {
			cfg.mintCSRFCookie(w)
		}
		return true
	}

	if !cfg.isProtected(r.URL.Path) || !IsAPIPath(r.URL.Path) {
		return true
	}
	if err != nil || cookie.Value == "" {
		return false
	}
	return csrf.Validate(r.Header.Get(cfg.CSRFHeader), cookie.Value)
}

// mintCSRFCookie sets a fresh token for the client to echo back later. Not
// HttpOnly: the double-submit pattern requires client script to read the
// cookie and copy it into the request header.
func (cfg *PipelineConfig) mintCSRFCookie(w http.ResponseWriter) {
	token, err := csrf.GenerateToken()
	if err != nil {
		// Fail closed by minting nothing; the next unsafe request will be
		// rejected for a missing cookie.
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   cfg.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if !d.Allowed {
		h.Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func isTLS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
