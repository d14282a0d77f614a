package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/enumm/identity/internal/models"
	apperrors "github.com/enumm/identity/pkg/errors"
	"github.com/enumm/identity/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxEmailKey  = "userEmail"
	CtxTokenKey  = "bearerToken"
)

// Authenticator resolves a bearer token to its account. Implemented by the
// auth service; every failure must collapse into a single opaque error.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Auth guards routes behind bearer authentication. The resolved identity and
// the raw token are propagated into the request context.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxEmailKey, user.Email)
		c.Set(CtxTokenKey, token)

		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(authz[7:])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, apperrors.ErrUnauthorized)
	c.Abort()
}
