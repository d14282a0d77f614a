package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enumm/identity/internal/middleware"
	"github.com/enumm/identity/internal/services"
	"github.com/enumm/identity/pkg/response"
)

// AuthHandler exposes the signup, verification and session flows over HTTP.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	// A resend for an existing unverified account is accepted, not created.
	status := http.StatusCreated
	if result.Resent {
		status = http.StatusAccepted
	}

	response.JSON(c, status, result)
}

// POST /v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// POST /v1/auth/logout
//
// Always succeeds, including for tokens that never named a session; the
// bearer header is optional here.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": "Logged out successfully."})
}
