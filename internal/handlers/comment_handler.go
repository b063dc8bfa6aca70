package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	ledger *services.EngagementLedger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(ledger *services.EngagementLedger) *CommentHandler {
	return &CommentHandler{ledger: ledger}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/works/:id/comments", h.CreateComment, requireAuth)
	g.GET("/works/:id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment, requireAuth)
	g.DELETE("/comments/:id", h.DeleteComment, requireAuth)
	g.POST("/comments/:id/like", h.LikeComment, requireAuth)
	g.DELETE("/comments/:id/like", h.UnlikeComment, requireAuth)
}

// CreateComment adds a comment, or a reply when parentId is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.ledger.AddComment(c.Request().Context(), actor(c), c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, comment)
}

// GetComments lists a work's comments with their authors
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.ledger.ListComments(c.Request().Context(), viewerID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"comments": comments, "total": len(comments)})
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.ledger.UpdateComment(c.Request().Context(), actor(c), c.Param("id"), req.Content)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.ledger.DeleteComment(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) LikeComment(c echo.Context) error {
	like, err := h.ledger.LikeComment(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, like)
}

func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	if err := h.ledger.UnlikeComment(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment unliked"})
}
