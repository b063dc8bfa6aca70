package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LecturerHandler serves a lecturer's analytics and activity feed
type LecturerHandler struct {
	analytics *services.AnalyticsAggregator
	activity  *services.ActivityFeed
}

func NewLecturerHandler(analytics *services.AnalyticsAggregator, activity *services.ActivityFeed) *LecturerHandler {
	return &LecturerHandler{analytics: analytics, activity: activity}
}

func (h *LecturerHandler) RegisterLecturerRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/analytics", h.GetAnalytics, requireAuth)
	g.GET("/activity", h.GetActivity, requireAuth)
}

func (h *LecturerHandler) GetAnalytics(c echo.Context) error {
	a := actor(c)
	if !a.IsLecturer() {
		return echo.NewHTTPError(http.StatusForbidden, "Only lecturers have analytics")
	}
	result, err := h.analytics.Compute(c.Request().Context(), a.ID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// GetActivity returns recent engagement on the caller's works, ?limit= caps it
func (h *LecturerHandler) GetActivity(c echo.Context) error {
	a := actor(c)
	if !a.IsLecturer() {
		return echo.NewHTTPError(http.StatusForbidden, "Only lecturers have an activity feed")
	}
	events, err := h.activity.ForLecturer(c.Request().Context(), a.ID, intQuery(c, "limit", 0))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, events)
}
