package handlers

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/middleware"
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth     *services.AuthService
	verifier services.IdentityVerifier
}

// NewAuthHandler creates a new AuthHandler. Without a verifier the Firebase
// login route is not registered.
func NewAuthHandler(auth *services.AuthService, verifier services.IdentityVerifier) *AuthHandler {
	return &AuthHandler{auth: auth, verifier: verifier}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/signin", h.SignIn)
	if h.verifier != nil {
		g.POST("/firebase-login", h.FirebaseLogin, middleware.FirebaseAuthMiddleware(h.verifier))
	}
}

// Register creates a local account and returns a token for it
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, res)
}

// SignIn authenticates with username or email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.auth.SignIn(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, res)
}

// FirebaseLogin exchanges the verified Firebase identity for a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	identity, found := middleware.FirebaseIdentity(c)
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase identity")
	}
	res, err := h.auth.FirebaseLogin(c.Request().Context(), identity)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, res)
}
