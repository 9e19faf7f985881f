package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/pkg/cryptox"
	"github.com/fieldops/salesreport/pkg/jwtx"
)

const testPassword = "MySecure123!"

// testHash is bcrypt(testPassword), precomputed so every test does not pay
// for a cost-12 hash.
var testHash = func() string {
	h, err := cryptox.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
}()

func newAuthFixture(t *testing.T) (*service.AuthService, *fakeStore, int64) {
	t.Helper()

	tokens, err := jwtx.NewService(
		[]byte("0123456789abcdef0123456789abcdef"),
		"salesreport", "salesreport-api",
	)
	require.NoError(t, err)

	st := newFakeStore()
	userID := st.addUser(domain.User{
		Email:        "rep@example.com",
		Name:         "Taylor Rep",
		Department:   "West",
		PasswordHash: testHash,
		IsActive:     true,
	})

	return &service.AuthService{Store: st, Tokens: tokens}, st, userID
}

func TestLogin(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	claims, err := auth.Tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)

	// The refresh token is stored by fingerprint, never verbatim.
	stored, ok := st.tokenByFingerprint(cryptox.FingerprintToken(pair.RefreshToken))
	require.True(t, ok)
	require.Equal(t, userID, stored.UserID)
	require.False(t, stored.Revoked)
}

func TestLoginNormalizesEmail(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.Login(context.Background(), "  Rep@Example.COM  ", testPassword)
	require.NoError(t, err)
}

// Unknown users and wrong passwords are indistinguishable to the caller.
func TestLoginFailuresAreUniform(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, "nobody@example.com", testPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "rep@example.com", "WrongPass456!")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	auth, st, _ := newAuthFixture(t)
	st.addUser(domain.User{
		Email:        "gone@example.com",
		PasswordHash: testHash,
		IsActive:     false,
	})

	_, err := auth.Login(context.Background(), "gone@example.com", testPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefreshRotates(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	next, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old record is revoked, the new one live.
	old, ok := st.tokenByFingerprint(cryptox.FingerprintToken(pair.RefreshToken))
	require.True(t, ok)
	require.True(t, old.Revoked)
	require.Equal(t, 1, st.liveTokenCount(userID))

	// The rotated token works.
	_, err = auth.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

// Reusing a rotated-out token means it leaked; every session for that user
// is revoked in response.
func TestRefreshReplayRevokesAllSessions(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, 1, st.liveTokenCount(userID))

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
	require.Equal(t, 0, st.liveTokenCount(userID))
}

func TestRefreshRejectsUnknownAndGarbageTokens(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	// Validly signed but never stored (issued out of band).
	pair, err := auth.Tokens.IssuePair(jwtx.Identity{UserID: 1, Email: "rep@example.com"})
	require.NoError(t, err)
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

// An access token must not pass where a refresh token is expected.
func TestRefreshRejectsAccessToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	st.mu.Lock()
	u := st.users[userID]
	u.IsActive = false
	st.users[userID] = u
	st.mu.Unlock()

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestLogout(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, 1, st.liveTokenCount(userID))

	require.NoError(t, auth.Logout(ctx, pair.RefreshToken))
	require.Equal(t, 0, st.liveTokenCount(userID))

	// Logging out twice, or with junk, is fine.
	require.NoError(t, auth.Logout(ctx, pair.RefreshToken))
	require.NoError(t, auth.Logout(ctx, "junk"))

	// The revoked session cannot be refreshed.
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestChangePassword(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	pair, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, 1, st.liveTokenCount(userID))

	const next = "Brand#New472pw"
	score, err := auth.ChangePassword(ctx, userID, testPassword, next)
	require.NoError(t, err)
	require.Equal(t, 5, score)

	// Every open session dies with the old password.
	require.Equal(t, 0, st.liveTokenCount(userID))
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	_, err = auth.Login(ctx, "rep@example.com", testPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "rep@example.com", next)
	require.NoError(t, err)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	_, err = auth.ChangePassword(ctx, userID, "not-the-password", "Brand#New472pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Nothing changed: the old credential and session still work.
	require.Equal(t, 1, st.liveTokenCount(userID))
	_, err = auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)
}

func TestChangePasswordEnforcesStrength(t *testing.T) {
	auth, _, userID := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		next string
		want string
	}{
		{"too short", "Ab1!", "new_password must be at least 8 characters"},
		{"common", "Password123", "new_password must contain a special character"},
		{"unchanged", testPassword, "new_password must differ from the current password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.ChangePassword(ctx, userID, testPassword, tc.next)
			require.ErrorIs(t, err, service.ErrValidation)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.want)
		})
	}
}

func TestHousekeepingSweep(t *testing.T) {
	auth, st, userID := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Login(ctx, "rep@example.com", testPassword)
	require.NoError(t, err)

	n, err := st.RefreshTokens().DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 1, st.liveTokenCount(userID))

	n, err = st.RefreshTokens().DeleteExpired(ctx, time.Now().UTC().Add(8*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 0, st.liveTokenCount(userID))
}
