// Package jwtx issues and verifies the service's signed bearer tokens.
// Tokens are HMAC-signed (HS256) with one symmetric process secret; identity
// claims are embedded at issue time and immutable until expiry.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the minimum accepted secret length in bytes. Anything
// shorter undercuts the HMAC and is refused outright.
const MinSecretLen = 32

var (
	// ErrInvalidToken is the only verification failure callers see. Expired,
	// tampered, wrong-issuer and wrong-use tokens all collapse into it so the
	// API surface never acts as an oracle for why a token was rejected.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrWeakSecret reports a secret below MinSecretLen at construction.
	ErrWeakSecret = errors.New("jwtx: signing secret too short")
)

// Service signs and verifies token pairs.
type Service struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTLs overrides the default access/refresh lifetimes.
func WithTTLs(access, refresh time.Duration) Option {
	return func(s *Service) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

// WithClock substitutes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a token service. The secret is process configuration;
// rejecting short secrets here means a misdeployed instance fails at startup
// instead of signing weak tokens.
func NewService(secret []byte, issuer, audience string, opts ...Option) (*Service, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakSecret, MinSecretLen, len(secret))
	}
	s := &Service{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssuePair mints a new access/refresh token pair for the given identity.
func (s *Service) IssuePair(id Identity) (TokenPair, error) {
	now := s.now().UTC()

	access, err := s.sign(newClaims(id, UseAccess, s.issuer, s.audience, s.accessTTL, now))
	if err != nil {
		return TokenPair{}, fmt.Errorf("jwtx: sign access token: %w", err)
	}
	refresh, err := s.sign(newClaims(id, UseRefresh, s.issuer, s.audience, s.refreshTTL, now))
	if err != nil {
		return TokenPair{}, fmt.Errorf("jwtx: sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Verify validates an access token and returns its claims. Signature,
// expiry, issuer, audience and token use are all enforced; any mismatch is
// ErrInvalidToken.
func (s *Service) Verify(token string) (Claims, error) {
	return s.verify(token, UseAccess)
}

// VerifyRefresh validates a refresh token. Protected routes never accept
// these; only the refresh endpoint calls this.
func (s *Service) VerifyRefresh(token string) (Claims, error) {
	return s.verify(token, UseRefresh)
}

func (s *Service) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Service) verify(token, use string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.TokenUse != use || claims.UserID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
