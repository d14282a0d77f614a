package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(signupPayload{Email: "talent@example.com", Password: "longenough"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(signupPayload{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	fields := []string{failures[0].Field, failures[1].Field}
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
}
