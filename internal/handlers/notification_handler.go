package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	inbox *services.Inbox
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inbox *services.Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// RegisterNotificationRoutes registers notification routes; all of them need a caller.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	n := g.Group("/notifications", requireAuth)
	n.GET("", h.GetNotifications)
	n.GET("/grouped", h.GetGroupedNotifications)
	n.GET("/unread-count", h.GetUnreadCount)
	n.PUT("/read-all", h.MarkAllAsRead)
	n.PUT("/:id/read", h.SetRead)
	n.DELETE("/:id", h.DeleteNotification)
	n.DELETE("", h.DeleteNotifications)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.inbox.List(c.Request().Context(), actor(c).ID, page, limit)
	if err != nil {
		return httpError(err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID := actor(c).ID
	grouped, err := h.inbox.Grouped(ctx, userID, time.Now())
	if err != nil {
		return httpError(err)
	}
	unread, err := h.inbox.UnreadCount(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"notifications": grouped,
		"unreadCount":   unread,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.inbox.UnreadCount(c.Request().Context(), actor(c).ID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// SetRead marks one notification read or unread; an empty body marks it read
func (h *NotificationHandler) SetRead(c echo.Context) error {
	req := models.SetReadRequest{IsRead: true}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
	}
	if err := h.inbox.SetRead(c.Request().Context(), actor(c).ID, c.Param("id"), req.IsRead); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"id": c.Param("id"), "isRead": req.IsRead})
}

// MarkAllAsRead marks the listed notifications, or all of them, as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	var req models.BulkNotificationRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
	}
	if err := h.inbox.SetReadMany(c.Request().Context(), actor(c).ID, req.IDs, true); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.inbox.Delete(c.Request().Context(), actor(c).ID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notification deleted"})
}

// DeleteNotifications deletes the listed notifications, or all of them
func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	var req models.BulkNotificationRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
	}
	if err := h.inbox.DeleteMany(c.Request().Context(), actor(c).ID, req.IDs); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notifications deleted"})
}
