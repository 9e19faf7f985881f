package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fieldops/salesreport/pkg/httpx"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/ratelimit"
)

// devSecret is the well-known development fallback. Validate refuses it in
// production precisely because it is public.
const devSecret = "salesreport-dev-secret-do-not-use-in-production"

type Config struct {
	Env       string // dev, prod, test (default: dev)
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // json, text (default: json)
	Port      int    // HTTP server port (default: 8080)

	DatabaseFile string // path to SQLite database file (default: ./salesreport.db)

	TokenSecret string        // HMAC signing secret; required in prod
	Issuer      string        // token issuer claim (default: salesreport)
	Audience    string        // token audience claim (default: salesreport-api)
	AccessTTL   time.Duration // access token lifetime (default: 1h)
	RefreshTTL  time.Duration // refresh token lifetime (default: 168h)

	AuthCookie string // auth cookie name (default: auth-token)
	CSRFCookie string // csrf cookie name (default: csrf-token)

	LoginRateMax    int           // login attempts per window (default: 5)
	LoginRateWindow time.Duration // login rate window (default: 15m)
	APIRateMax      int           // per-route API requests per window (default: 100)
	APIRateWindow   time.Duration // API rate window (default: 1m)
	DefaultRateMax  int           // fallback requests per window (default: 200)
	DefaultRateWin  time.Duration // fallback rate window (default: 1m)

	RateLimitSweep       time.Duration // rate-limit store sweep interval (default: 5m)
	HousekeepingInterval time.Duration // refresh-token sweep interval (default: 1h)
	ShutdownGracePeriod  time.Duration // graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "salesreport.db"),

		TokenSecret: os.Getenv("TOKEN_SECRET"),
		Issuer:      getEnvOrDefault("TOKEN_ISSUER", "salesreport"),
		Audience:    getEnvOrDefault("TOKEN_AUDIENCE", "salesreport-api"),
		AccessTTL:   getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTTL),
		RefreshTTL:  getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTTL),

		AuthCookie: getEnvOrDefault("AUTH_COOKIE_NAME", httpx.DefaultAuthCookie),
		CSRFCookie: getEnvOrDefault("CSRF_COOKIE_NAME", httpx.DefaultCSRFCookie),

		LoginRateMax:    getEnvIntOrDefault("RATELIMIT_LOGIN_MAX", 5),
		LoginRateWindow: getEnvDurationOrDefault("RATELIMIT_LOGIN_WINDOW", 15*time.Minute),
		APIRateMax:      getEnvIntOrDefault("RATELIMIT_API_MAX", 100),
		APIRateWindow:   getEnvDurationOrDefault("RATELIMIT_API_WINDOW", time.Minute),
		DefaultRateMax:  getEnvIntOrDefault("RATELIMIT_DEFAULT_MAX", 200),
		DefaultRateWin:  getEnvDurationOrDefault("RATELIMIT_DEFAULT_WINDOW", time.Minute),

		RateLimitSweep:       getEnvDurationOrDefault("RATELIMIT_SWEEP_INTERVAL", ratelimit.DefaultSweepInterval),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Production reports whether this instance claims to be a production
// deployment.
func (c Config) Production() bool { return c.Env == "prod" }

// Validate enforces deployment invariants. A production instance with a
// missing, short or well-known token secret must die at startup, not limp
// along signing forgeable tokens.
func (c *Config) Validate() error {
	if c.Production() {
		if c.TokenSecret == "" {
			return errors.New("config: TOKEN_SECRET is required in production")
		}
		if c.TokenSecret == devSecret {
			return errors.New("config: TOKEN_SECRET must not be the development default in production")
		}
		if len(c.TokenSecret) < jwtx.MinSecretLen {
			return fmt.Errorf("config: TOKEN_SECRET must be at least %d bytes", jwtx.MinSecretLen)
		}
		return nil
	}

	// Development and test fall back to the public dev secret so the
	// service starts without ceremony.
	if c.TokenSecret == "" {
		c.TokenSecret = devSecret
	}
	return nil
}

// RateLimitTable builds the per-route table. Resolution is exact path match
// with the default entry as fallback.
func (c Config) RateLimitTable() ratelimit.Table {
	apiRule := ratelimit.Rule{
		Window:      c.APIRateWindow,
		MaxRequests: c.APIRateMax,
		Message:     "too many requests, please slow down",
	}
	return ratelimit.Table{
		Rules: map[string]ratelimit.Rule{
			"/api/auth/login": {
				Window:      c.LoginRateWindow,
				MaxRequests: c.LoginRateMax,
				Message:     "too many login attempts, please try again later",
			},
			"/api/auth/refresh": apiRule,
			"/api/reports":      apiRule,
			"/api/customers":    apiRule,
		},
		Default: ratelimit.Rule{
			Window:      c.DefaultRateWin,
			MaxRequests: c.DefaultRateMax,
			Message:     "too many requests, please try again later",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
