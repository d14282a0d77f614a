package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/database/testutil"
	"github.com/enumm/identity/internal/models"
	apperrors "github.com/enumm/identity/pkg/errors"
)

func strptr(s string) *string { return &s }

func newProfileFixture(t *testing.T) (*ProfileService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewProfileService(db)
	require.NoError(t, err)

	user := &models.User{Email: "talent@example.com", PasswordHash: "hash", Status: models.StatusVerified}
	require.NoError(t, db.Create(user).Error)

	return svc, db
}

func TestProfileGetEmptyProfile(t *testing.T) {
	svc, _ := newProfileFixture(t)

	view, err := svc.Get(context.Background(), "talent@example.com")
	require.NoError(t, err)
	require.Equal(t, 0, view.Completeness)
	require.Equal(t, []string{"transcript", "statement_of_purpose"}, view.MissingFields)
	require.Empty(t, view.Transcript)
}

func TestProfileUpdateIsNullCoalescing(t *testing.T) {
	svc, _ := newProfileFixture(t)
	ctx := context.Background()

	view, err := svc.Update(ctx, "talent@example.com", ProfileUpdate{
		Transcript: strptr("BSc Computer Science, 3.8 GPA"),
	})
	require.NoError(t, err)
	require.Equal(t, 50, view.Completeness)
	require.Equal(t, []string{"statement_of_purpose"}, view.MissingFields)

	// An absent field leaves the stored value alone.
	view, err = svc.Update(ctx, "talent@example.com", ProfileUpdate{
		StatementOfPurpose: strptr("I want to build things."),
	})
	require.NoError(t, err)
	require.Equal(t, "BSc Computer Science, 3.8 GPA", view.Transcript)
	require.Equal(t, 100, view.Completeness)
	require.Empty(t, view.MissingFields)

	// A present empty string clears the field.
	view, err = svc.Update(ctx, "talent@example.com", ProfileUpdate{
		Transcript: strptr(""),
	})
	require.NoError(t, err)
	require.Equal(t, 50, view.Completeness)
	require.Equal(t, []string{"transcript"}, view.MissingFields)
}

func TestProfileUpdateReusesSingleRow(t *testing.T) {
	svc, db := newProfileFixture(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "talent@example.com", ProfileUpdate{Transcript: strptr("a")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "talent@example.com", ProfileUpdate{Transcript: strptr("b")})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.TalentProfile{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProfileUnknownSubject(t *testing.T) {
	svc, _ := newProfileFixture(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "nobody@example.com")
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	_, err = svc.Update(ctx, "", ProfileUpdate{})
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
