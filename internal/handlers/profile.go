package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enumm/identity/internal/middleware"
	"github.com/enumm/identity/internal/services"
	apperrors "github.com/enumm/identity/pkg/errors"
	"github.com/enumm/identity/pkg/response"
)

// ProfileHandler serves the talent profile of the authenticated account.
type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	email := c.GetString(middleware.CtxEmailKey)
	if email == "" {
		response.Error(c, apperrors.ErrNotAuthenticated)
		return
	}

	view, err := h.profiles.Get(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view)
}

// PUT /v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	email := c.GetString(middleware.CtxEmailKey)
	if email == "" {
		response.Error(c, apperrors.ErrNotAuthenticated)
		return
	}

	var req services.ProfileUpdate
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.profiles.Update(c.Request.Context(), email, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view)
}
