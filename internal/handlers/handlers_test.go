package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/middleware"
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/anonto42/scholarfolio/backend/pkg/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e    *echo.Echo
	auth *services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	stores := repositories.NewMemoryRegistry()
	resolver := services.NewWorkResolver(stores)
	references := services.NewReferenceMaintainer(stores, log)
	auth := services.NewAuthService(stores, "handler-secret", time.Hour, log)
	ledger := services.NewEngagementLedger(stores, resolver, services.NewNotifier(stores, resolver, log), log)

	e := echo.New()
	e.Validator = validators.NewValidator()
	NewAuthHandler(auth, nil).RegisterAuthRoutes(e.Group("/api/v1/auth"))
	api := e.Group("/api/v1", middleware.OptionalJWTAuth(auth))
	requireAuth := middleware.RequireActor()
	NewUserHandler(auth).RegisterProfileRoutes(api, requireAuth)
	NewWorkHandler(services.NewWorkService(stores, resolver, references, log)).RegisterWorkRoutes(api, requireAuth)
	NewCommentHandler(ledger).RegisterCommentRoutes(api, requireAuth)
	NewLikeHandler(ledger).RegisterLikeRoutes(api, requireAuth)
	NewSavedHandler(services.NewSavedItems(stores, resolver, log)).RegisterSavedRoutes(api, requireAuth)
	NewNotificationHandler(services.NewInbox(stores)).RegisterNotificationRoutes(api, requireAuth)
	NewLecturerHandler(services.NewAnalyticsAggregator(stores), services.NewActivityFeed(stores, resolver)).RegisterLecturerRoutes(api, requireAuth)
	return &testServer{e: e, auth: auth}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *testServer) register(t *testing.T, username string, role models.Role) (string, string) {
	t.Helper()
	body := `{"username":"` + username + `","email":"` + username + `@uni.test","name":"` + username + `","password":"password123","role":"` + string(role) + `"}`
	status, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status)
	var res services.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func TestPublicationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	lecturerToken, lecturerID := s.register(t, "lena", models.RoleLecturer)
	studentToken, _ := s.register(t, "sam", models.RoleStudent)

	status, _ := s.do(t, http.MethodPost, "/api/v1/publications", "", `{"title":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/publications", lecturerToken, `{"lecturerId":"`+lecturerID+`"}`)
	assert.Equal(t, http.StatusBadRequest, status, "title is required")

	status, env := s.do(t, http.MethodPost, "/api/v1/publications", lecturerToken, `{"lecturerId":"`+lecturerID+`","title":"Deep Nets"}`)
	require.Equal(t, http.StatusCreated, status)
	var pub models.Publication
	require.NoError(t, json.Unmarshal(env.Data, &pub))

	status, _ = s.do(t, http.MethodGet, "/api/v1/publications/"+pub.ID, "", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/research-projects/"+pub.ID, "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/works/"+pub.ID+"/like", studentToken, "")
	assert.Equal(t, http.StatusCreated, status)
	status, env = s.do(t, http.MethodPost, "/api/v1/works/"+pub.ID+"/like", studentToken, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, services.CodeConflict, env.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/saved/"+pub.ID, studentToken, "")
	assert.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", lecturerToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	status, env = s.do(t, http.MethodGet, "/api/v1/analytics", lecturerToken, "")
	require.Equal(t, http.StatusOK, status)
	var analytics services.LecturerAnalytics
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Equal(t, 1, analytics.TotalLikes)
	assert.Equal(t, 1, analytics.TotalSaves)

	status, _ = s.do(t, http.MethodGet, "/api/v1/analytics", studentToken, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/publications/"+pub.ID, studentToken, "")
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/publications/"+pub.ID, lecturerToken, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/saved", studentToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestUpdateWorkOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register(t, "lena", models.RoleLecturer)
	status, env := s.do(t, http.MethodPost, "/api/v1/research-projects", token, `{"lecturerId":"`+id+`","title":"Lab"}`)
	require.Equal(t, http.StatusCreated, status)
	var project models.ResearchProject
	require.NoError(t, json.Unmarshal(env.Data, &project))

	status, env = s.do(t, http.MethodPatch, "/api/v1/works/"+project.ID, token, `{"status":"active","title":"Vision Lab"}`)
	require.Equal(t, http.StatusOK, status)
	var work struct {
		Title string          `json:"title"`
		Type  models.WorkType `json:"type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &work))
	assert.Equal(t, "Vision Lab", work.Title)
	assert.Equal(t, models.WorkTypeResearchProject, work.Type)

	status, _ = s.do(t, http.MethodPatch, "/api/v1/works/"+project.ID, token, `{"ownerId":"someone"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPatch, "/api/v1/works/"+project.ID, token, `{"status":{"phase":2}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPatch, "/api/v1/publications/"+project.ID, token, `{"title":"Elsewhere"}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodPatch, "/api/v1/research-projects/"+project.ID, token, `{"title":"Robotics Lab"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestCommentsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	lecturerToken, lecturerID := s.register(t, "lena", models.RoleLecturer)
	studentToken, _ := s.register(t, "sam", models.RoleStudent)
	otherToken, _ := s.register(t, "sara", models.RoleStudent)

	_, env := s.do(t, http.MethodPost, "/api/v1/portfolio-items", lecturerToken, `{"lecturerId":"`+lecturerID+`","title":"Talk"}`)
	var item models.PortfolioItem
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, env := s.do(t, http.MethodPost, "/api/v1/works/"+item.ID+"/comments", studentToken, `{"content":"Great talk"}`)
	require.Equal(t, http.StatusCreated, status)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	status, _ = s.do(t, http.MethodPost, "/api/v1/works/"+item.ID+"/comments", otherToken, `{"content":"Agreed","parentId":"`+comment.ID+`"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/works/"+item.ID+"/comments", "", "")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Comments []models.CommentWithAuthor `json:"comments"`
		Total    int                        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Total)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, otherToken, "")
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, lecturerToken, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/notifications", studentToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "replied to your comment")
}

func TestNotificationsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/api/v1/notifications", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/notifications", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignInOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "lena", models.RoleLecturer)

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/signin", "", `{"login":"lena@uni.test","password":"password123"}`)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", `{"login":"lena","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "",
		`{"username":"lena","email":"x@uni.test","name":"Lena","password":"password123","role":"lecturer"}`)
	assert.Equal(t, http.StatusConflict, status)
}
