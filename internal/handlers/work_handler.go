package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// WorkHandler handles the four work types and the generic /works routes
type WorkHandler struct {
	works *services.WorkService
}

func NewWorkHandler(works *services.WorkService) *WorkHandler {
	return &WorkHandler{works: works}
}

// route segment per work type
var workPaths = map[models.WorkType]string{
	models.WorkTypePublication:     "/publications",
	models.WorkTypeResearchProject: "/research-projects",
	models.WorkTypePortfolioItem:   "/portfolio-items",
	models.WorkTypeStudentProject:  "/student-projects",
}

// RegisterWorkRoutes registers work routes. Reads are public; private works
// are only returned to their owner.
func (h *WorkHandler) RegisterWorkRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/publications", h.CreatePublication, requireAuth)
	g.POST("/research-projects", h.CreateResearchProject, requireAuth)
	g.POST("/portfolio-items", h.CreatePortfolioItem, requireAuth)
	g.POST("/student-projects", h.CreateStudentProject, requireAuth)
	for _, t := range models.WorkTypes {
		path := workPaths[t]
		g.GET(path, h.listWorks(t))
		g.GET(path+"/:id", h.getWork(t))
		g.PATCH(path+"/:id", h.updateWork(t), requireAuth)
		g.DELETE(path+"/:id", h.deleteWork(t), requireAuth)
	}

	g.GET("/works/search", h.Search)
	g.GET("/works/:id", h.getWork(""))
	g.PATCH("/works/:id", h.updateWork(""), requireAuth)
	g.DELETE("/works/:id", h.deleteWork(""), requireAuth)
}

func (h *WorkHandler) CreatePublication(c echo.Context) error {
	var req models.CreatePublicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	pub, err := h.works.CreatePublication(c.Request().Context(), actor(c), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, pub)
}

func (h *WorkHandler) CreateResearchProject(c echo.Context) error {
	var req models.CreateResearchProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.works.CreateResearchProject(c.Request().Context(), actor(c), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, project)
}

func (h *WorkHandler) CreatePortfolioItem(c echo.Context) error {
	var req models.CreatePortfolioItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.works.CreatePortfolioItem(c.Request().Context(), actor(c), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, item)
}

func (h *WorkHandler) CreateStudentProject(c echo.Context) error {
	var req models.CreateStudentProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.works.CreateStudentProject(c.Request().Context(), actor(c), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, project)
}

// getWork fetches a work; under a typed route the id must belong to that type.
func (h *WorkHandler) getWork(t models.WorkType) echo.HandlerFunc {
	return func(c echo.Context) error {
		work, err := h.works.GetWork(c.Request().Context(), viewerID(c), c.Param("id"))
		if err != nil {
			return httpError(err)
		}
		if t != "" && work.Type != t {
			return httpError(services.NotFound("%s %s not found", t.Label(), c.Param("id")))
		}
		return ok(c, http.StatusOK, work)
	}
}

// listWorks lists works of one type, optionally filtered by ?ownerId=
func (h *WorkHandler) listWorks(t models.WorkType) echo.HandlerFunc {
	return func(c echo.Context) error {
		works, err := h.works.ListWorks(c.Request().Context(), viewerID(c), t, c.QueryParam("ownerId"))
		if err != nil {
			return httpError(err)
		}
		return ok(c, http.StatusOK, works)
	}
}

// Search matches ?q= against titles, descriptions and tags
func (h *WorkHandler) Search(c echo.Context) error {
	works, err := h.works.Search(c.Request().Context(), viewerID(c), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, works)
}

// updateWork applies a partial JSON object to a work; under a typed route the
// id must belong to that type.
func (h *WorkHandler) updateWork(t models.WorkType) echo.HandlerFunc {
	return func(c echo.Context) error {
		var fields map[string]interface{}
		if err := c.Echo().JSONSerializer.Deserialize(c, &fields); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		work, err := h.works.UpdateWork(c.Request().Context(), actor(c), c.Param("id"), t, fields)
		if err != nil {
			return httpError(err)
		}
		return ok(c, http.StatusOK, work)
	}
}

func (h *WorkHandler) deleteWork(t models.WorkType) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.works.DeleteWork(c.Request().Context(), actor(c), c.Param("id"), t); err != nil {
			return httpError(err)
		}
		return ok(c, http.StatusOK, echo.Map{"message": "Work deleted successfully"})
	}
}
