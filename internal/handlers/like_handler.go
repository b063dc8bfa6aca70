package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles likes on works
type LikeHandler struct {
	ledger *services.EngagementLedger
}

func NewLikeHandler(ledger *services.EngagementLedger) *LikeHandler {
	return &LikeHandler{ledger: ledger}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/works/:id/like", h.LikeWork, requireAuth)
	g.DELETE("/works/:id/like", h.UnlikeWork, requireAuth)
	g.GET("/works/:id/likes", h.GetLikes)
}

func (h *LikeHandler) LikeWork(c echo.Context) error {
	like, err := h.ledger.AddLike(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, like)
}

func (h *LikeHandler) UnlikeWork(c echo.Context) error {
	if err := h.ledger.RemoveLike(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Work unliked"})
}

// GetLikes returns the like count and whether the caller likes the work
func (h *LikeHandler) GetLikes(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	count, err := h.ledger.LikeCount(ctx, id)
	if err != nil {
		return httpError(err)
	}
	liked := false
	if viewer := viewerID(c); viewer != "" {
		if liked, err = h.ledger.HasLiked(ctx, id, viewer); err != nil {
			return httpError(err)
		}
	}
	return ok(c, http.StatusOK, echo.Map{"count": count, "liked": liked})
}
