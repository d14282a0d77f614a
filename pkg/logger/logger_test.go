package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerAvailableBeforeInit(t *testing.T) {
	require.NotNil(t, L())
	require.NotPanics(t, func() {
		L().Info("pre-init message is a no-op")
	})
}

func TestInitAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		require.NoError(t, Init(level))
		require.NotNil(t, L())
	}
}

func TestInitFallsBackOnUnknownLevel(t *testing.T) {
	require.NoError(t, Init("chatty"))
	require.NotNil(t, WithModule("test"))
}
