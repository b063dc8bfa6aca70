package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedHandler handles the caller's saved items
type SavedHandler struct {
	saved *services.SavedItems
}

func NewSavedHandler(saved *services.SavedItems) *SavedHandler {
	return &SavedHandler{saved: saved}
}

func (h *SavedHandler) RegisterSavedRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/saved", h.GetSavedItems, requireAuth)
	g.POST("/saved/:id", h.SaveItem, requireAuth)
	g.DELETE("/saved/:id", h.UnsaveItem, requireAuth)
}

func (h *SavedHandler) GetSavedItems(c echo.Context) error {
	items, err := h.saved.List(c.Request().Context(), actor(c).ID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, items)
}

func (h *SavedHandler) SaveItem(c echo.Context) error {
	if err := h.saved.Save(c.Request().Context(), actor(c).ID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Item saved"})
}

func (h *SavedHandler) UnsaveItem(c echo.Context) error {
	if err := h.saved.Unsave(c.Request().Context(), actor(c).ID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Item removed from saved"})
}
