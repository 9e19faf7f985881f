package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are short-lived; refresh tokens only ever
// mint new access tokens and are never accepted by protected routes.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Token-use claim values distinguishing the two flavors.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Identity is the claim set established once at login from a verified
// credential lookup. It rides inside the signed token unchanged for the
// token's lifetime; a role change only takes effect at the next issue.
type Identity struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
	IsManager  bool   `json:"is_manager"`
}

// Claims are the signed token contents: registered claims plus the identity
// fields and a token-use discriminator.
type Claims struct {
	jwt.RegisteredClaims

	UserID     int64  `json:"uid"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Department string `json:"dept,omitempty"`
	IsManager  bool   `json:"mgr"`
	TokenUse   string `json:"use"`
}

// Identity extracts the identity fields back out of verified claims.
func (c Claims) Identity() Identity {
	return Identity{
		UserID:     c.UserID,
		Email:      c.Email,
		Name:       c.Name,
		Department: c.Department,
		IsManager:  c.IsManager,
	}
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expiry
}

func newClaims(id Identity, use, issuer, audience string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id.UserID, 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     id.UserID,
		Email:      id.Email,
		Name:       id.Name,
		Department: id.Department,
		IsManager:  id.IsManager,
		TokenUse:   use,
	}
}
