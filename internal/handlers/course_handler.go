package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CourseHandler handles course routes
type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) RegisterCourseRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/courses", h.CreateCourse, requireAuth)
	g.GET("/courses", h.ListCourses)
	g.GET("/courses/:id", h.GetCourse)
	g.GET("/courses/:id/projects", h.ListProjects)
	g.DELETE("/courses/:id", h.DeleteCourse, requireAuth)
}

func (h *CourseHandler) CreateCourse(c echo.Context) error {
	var req models.CreateCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	course, err := h.courses.CreateCourse(c.Request().Context(), actor(c), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, course)
}

// ListCourses lists every course, or one lecturer's with ?lecturerId=
func (h *CourseHandler) ListCourses(c echo.Context) error {
	courses, err := h.courses.ListCourses(c.Request().Context(), c.QueryParam("lecturerId"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, courses)
}

func (h *CourseHandler) GetCourse(c echo.Context) error {
	course, err := h.courses.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, course)
}

func (h *CourseHandler) ListProjects(c echo.Context) error {
	projects, err := h.courses.ListProjects(c.Request().Context(), viewerID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, projects)
}

// DeleteCourse deletes the course together with its student projects
func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	if err := h.courses.DeleteCourse(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Course deleted successfully"})
}
