package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/enumm/identity/pkg/response"
	appValidator "github.com/enumm/identity/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. When either step fails, the validation envelope is written and false
// is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.ValidationError(c, []response.FieldError{
			{Field: "body", Rule: "json"},
		})
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.ValidationError(c, fieldErrors(err))
		return false
	}

	return true
}

func fieldErrors(err error) []response.FieldError {
	var ve appValidator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return []response.FieldError{{Field: "body", Rule: "invalid"}}
	}

	fields := make([]response.FieldError, 0, len(ve))
	for _, failure := range ve {
		fields = append(fields, response.FieldError{
			Field:  failure.Field,
			Rule:   failure.Tag,
			Format: failure.Param,
		})
	}
	return fields
}
