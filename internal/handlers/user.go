package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles
type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/profile", h.GetMyProfile, requireAuth)
	g.PUT("/profile", h.UpdateProfile, requireAuth)
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) GetMyProfile(c echo.Context) error {
	profile, err := h.auth.GetProfile(c.Request().Context(), actor(c).ID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, profile)
}

// GetUser returns another user's profile
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.auth.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.auth.UpdateProfile(c.Request().Context(), actor(c).ID, req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, profile)
}
