package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/enumm/identity/pkg/errors"
)

// ErrorBody is the error envelope returned to API clients.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the classified error and a request-scoped trace id.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	TraceID string       `json:"traceId"`
}

// FieldError describes a single request-field validation failure.
type FieldError struct {
	Field  string `json:"field"`
	Rule   string `json:"rule"`
	Format string `json:"format,omitempty"`
}

// JSON writes a success payload verbatim.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error renders an error as the standard envelope, deriving status and code
// from the AppError classification.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Error: ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			TraceID: newTraceID(),
		},
	})
}

// ValidationError renders field-level failures under the VALIDATION_ERROR code.
func ValidationError(c *gin.Context, fields []FieldError) {
	c.JSON(appErrors.ErrValidation.StatusCode, ErrorBody{
		Error: ErrorDetail{
			Code:    appErrors.ErrValidation.Code,
			Message: appErrors.ErrValidation.Message,
			Details: fields,
			TraceID: newTraceID(),
		},
	})
}

func newTraceID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
