package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSMTPMailerDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@x.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSMTPMailerRequiresHostWhenEnabled(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	payload := formatMessage("noreply@enumm.io", []string{"a@x.com", "b@x.com"}, "Verify", "click the link")

	require.True(t, strings.HasPrefix(payload, "From: noreply@enumm.io\r\n"))
	require.Contains(t, payload, "To: a@x.com, b@x.com\r\n")
	require.Contains(t, payload, "Subject: Verify\r\n")
	require.True(t, strings.HasSuffix(payload, "\r\nclick the link"))
}

func TestLogMailerRecordsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer(zap.New(core))

	err := mailer.Send(context.Background(), Message{
		To:      []string{"talent@example.com"},
		Subject: "Confirm your account",
		Body:    "http://localhost:8080/v1/auth/verify-email?token=abc",
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Message, "verification email")
}
