package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/enumm/identity/internal/database/testutil"
	"github.com/enumm/identity/internal/models"
)

func newSessionFixture(t *testing.T, current *time.Time) (*SessionService, *TokenService, *models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	clock := func() time.Time { return *current }

	tokens, err := NewTokenService(TokenConfig{Secret: testSecret, Issuer: "enumm", TTL: time.Hour, Clock: clock})
	require.NoError(t, err)

	sessions, err := NewSessionService(db, tokens, SessionConfig{Clock: clock})
	require.NoError(t, err)

	user := &models.User{Email: "a@x.com", PasswordHash: "hash", Status: models.StatusVerified}
	require.NoError(t, db.Create(user).Error)

	return sessions, tokens, user
}

func TestSessionOpenValidateClose(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, tokens, user := newSessionFixture(t, &current)
	ctx := context.Background()

	token, expiresAt, err := tokens.Issue(user.Email)
	require.NoError(t, err)

	_, err = sessions.Open(ctx, user.ID, token, expiresAt)
	require.NoError(t, err)

	resolved, err := sessions.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, user.Email, resolved.Email)

	require.NoError(t, sessions.Close(ctx, token))

	_, err = sessions.Validate(ctx, token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, _, _ := newSessionFixture(t, &current)
	ctx := context.Background()

	// Tokens that were never issued close without error.
	require.NoError(t, sessions.Close(ctx, "never-issued"))
	require.NoError(t, sessions.Close(ctx, ""))
	require.NoError(t, sessions.Close(ctx, "never-issued"))
}

func TestSessionValidateRejectsForgedToken(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, _, _ := newSessionFixture(t, &current)

	_, err := sessions.Validate(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionValidateRejectsRevokedButSignedToken(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, tokens, user := newSessionFixture(t, &current)
	ctx := context.Background()

	token, expiresAt, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, token, expiresAt)
	require.NoError(t, err)

	require.NoError(t, sessions.Close(ctx, token))

	// The signature still verifies, but the row is gone.
	require.True(t, tokens.Validate(token))
	_, err = sessions.Validate(ctx, token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionValidateRejectsExpiredRow(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, tokens, user := newSessionFixture(t, &current)
	ctx := context.Background()

	token, expiresAt, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, token, expiresAt)
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, err = sessions.Validate(ctx, token)
	require.Error(t, err)
}

func TestSessionCleanupExpired(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, tokens, user := newSessionFixture(t, &current)
	ctx := context.Background()

	liveToken, liveExpiry, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, liveToken, liveExpiry)
	require.NoError(t, err)

	staleToken, _, err := tokens.Issue(user.Email + ".stale")
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, staleToken, current.Add(-time.Minute))
	require.NoError(t, err)

	removed, err := sessions.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = sessions.Validate(ctx, liveToken)
	require.NoError(t, err)
}

func TestMultipleConcurrentSessionsPerUser(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions, tokens, user := newSessionFixture(t, &current)
	ctx := context.Background()

	first, firstExpiry, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, first, firstExpiry)
	require.NoError(t, err)

	current = current.Add(time.Second)

	second, secondExpiry, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, second, secondExpiry)
	require.NoError(t, err)

	_, err = sessions.Validate(ctx, first)
	require.NoError(t, err)
	_, err = sessions.Validate(ctx, second)
	require.NoError(t, err)

	// Closing one session leaves the other untouched.
	require.NoError(t, sessions.Close(ctx, first))
	_, err = sessions.Validate(ctx, second)
	require.NoError(t, err)
}
