package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/enumm/identity/internal/models"
)

type stubAuthenticator struct {
	user  *models.User
	token string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if s.user != nil && token == s.token {
		return s.user, nil
	}
	return nil, errors.New("no session")
}

func newAuthTestRouter(authn Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", Auth(authn), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email": c.GetString(CtxEmailKey),
			"user":  c.GetString(CtxUserIDKey),
		})
	})
	return r
}

func TestAuthMiddlewareAcceptsValidBearer(t *testing.T) {
	authn := &stubAuthenticator{
		user:  &models.User{ID: "user-1", Email: "talent@example.com"},
		token: "valid-token",
	}
	r := newAuthTestRouter(authn)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "talent@example.com")
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	authn := &stubAuthenticator{
		user:  &models.User{ID: "user-1", Email: "talent@example.com"},
		token: "valid-token",
	}
	r := newAuthTestRouter(authn)

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"bare token":   "valid-token",
		"empty bearer": "Bearer   ",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			require.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestAuthMiddlewareRejectsUnknownToken(t *testing.T) {
	authn := &stubAuthenticator{
		user:  &models.User{ID: "user-1", Email: "talent@example.com"},
		token: "valid-token",
	}
	r := newAuthTestRouter(authn)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerTokenCaseInsensitiveScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "bearer some-token")

	token, ok := BearerToken(c)
	require.True(t, ok)
	require.Equal(t, "some-token", token)
}
