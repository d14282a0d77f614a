package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	iauth "github.com/enumm/identity/internal/auth"
	"github.com/enumm/identity/internal/database/testutil"
	"github.com/enumm/identity/internal/models"
	"github.com/enumm/identity/internal/services"
)

const cleanupTestSecret = "0123456789abcdef0123456789abcdef"

func TestCleanerRunOncePurgesStaleRows(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	ctx := context.Background()

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{
		Secret: cleanupTestSecret, Issuer: "enumm", TTL: time.Hour, Clock: clock,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, tokens, iauth.SessionConfig{Clock: clock})
	require.NoError(t, err)

	verifications, err := services.NewVerificationService(db, nil,
		services.WithVerificationClock(clock),
		services.WithVerificationExpiry(time.Hour),
	)
	require.NoError(t, err)

	user := &models.User{Email: "talent@example.com", PasswordHash: "hash", Status: models.StatusVerified}
	require.NoError(t, db.Create(user).Error)

	liveJWT, liveExpiry, err := tokens.Issue(user.Email)
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, liveJWT, liveExpiry)
	require.NoError(t, err)

	staleJWT, _, err := tokens.Issue(user.Email + ".stale")
	require.NoError(t, err)
	_, err = sessions.Open(ctx, user.ID, staleJWT, current.Add(-time.Minute))
	require.NoError(t, err)

	_, err = verifications.Issue(ctx, user)
	require.NoError(t, err)

	current = current.Add(30 * time.Minute)
	liveToken, err := verifications.Issue(ctx, user)
	require.NoError(t, err)

	current = current.Add(45 * time.Minute)

	cleaner := NewCleaner(sessions, verifications)
	require.NoError(t, cleaner.RunOnce(ctx))

	var sessionCount, tokenCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	require.NoError(t, db.Model(&models.VerificationToken{}).Count(&tokenCount).Error)
	require.EqualValues(t, 1, sessionCount)
	require.EqualValues(t, 1, tokenCount)

	// The surviving rows are the live ones.
	_, err = verifications.Consume(nil, liveToken)
	require.NoError(t, err)
}

func TestCleanerSchedulesJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{
		Secret: cleanupTestSecret, Issuer: "enumm", TTL: time.Hour,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, tokens, iauth.SessionConfig{})
	require.NoError(t, err)

	verifications, err := services.NewVerificationService(db, nil)
	require.NoError(t, err)

	cleaner := NewCleaner(sessions, verifications,
		WithSessionSchedule("@every 1h"),
		WithTokenSchedule("@every 24h"),
	)
	require.NoError(t, cleaner.Start())

	<-cleaner.Stop().Done()
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{
		Secret: cleanupTestSecret, Issuer: "enumm", TTL: time.Hour,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, tokens, iauth.SessionConfig{})
	require.NoError(t, err)

	cleaner := NewCleaner(sessions, nil, WithSessionSchedule("not-a-spec"))
	require.Error(t, cleaner.Start())
}
