package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageAndInternal(t *testing.T) {
	base := New("TEST_CODE", "something failed", http.StatusBadRequest)
	require.Equal(t, "something failed", base.Error())

	cause := errors.New("db timeout")
	wrapped := base.WithInternal(cause)
	require.Equal(t, "something failed: db timeout", wrapped.Error())
	require.ErrorIs(t, wrapped, cause)

	// WithInternal must not mutate the shared sentinel.
	require.Nil(t, base.Internal)
}

func TestSentinelMatchingSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials.WithInternal(errors.New("bad password")))
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrRateLimited)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrEmailInUse)
	require.Equal(t, "EMAIL_IN_USE", appErr.Code)
	require.Equal(t, http.StatusConflict, appErr.StatusCode)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.Equal(t, http.StatusInternalServerError, generic.StatusCode)
}

func TestWrapNeverProducesBusinessKind(t *testing.T) {
	wrapped := Wrap(errors.New("connection refused"), "user lookup failed")
	require.Equal(t, ErrInternalServer.Code, wrapped.Code)
	require.NotErrorIs(t, wrapped, ErrInvalidCredentials)
}
