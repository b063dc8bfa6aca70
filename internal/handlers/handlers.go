package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/scholarfolio/backend/internal/middleware"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ok writes the success envelope used by every endpoint.
func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    data,
	})
}

// httpError maps service failures onto HTTP status codes.
func httpError(err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrUnprocessable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	return echo.NewHTTPError(status, echo.Map{
		"success": false,
		"code":    svcErr.Code,
		"message": svcErr.Message,
	})
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// actor returns the authenticated caller. Routes using it sit behind RequireActor.
func actor(c echo.Context) services.Actor {
	a, _ := middleware.CurrentActor(c)
	return a
}

// viewerID is the caller's id, or "" for anonymous requests.
func viewerID(c echo.Context) string {
	a, _ := middleware.CurrentActor(c)
	return a.ID
}

func intQuery(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}
