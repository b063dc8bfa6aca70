package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser map[string]services.Actor

func (s stubParser) ParseToken(token string) (services.Actor, error) {
	actor, ok := s[token]
	if !ok {
		return services.Actor{}, errors.New("bad token")
	}
	return actor, nil
}

type stubVerifier map[string]services.FirebaseIdentity

func (s stubVerifier) Verify(_ context.Context, idToken string) (*services.FirebaseIdentity, error) {
	identity, ok := s[idToken]
	if !ok {
		return nil, errors.New("bad id token")
	}
	return &identity, nil
}

var lecturer = services.Actor{ID: "L1", Role: models.RoleLecturer}

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c)
	return rec, c, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	parser := stubParser{"good": lecturer}

	_, c, err := run(t, JWTAuthMiddleware(parser), "Bearer good")
	require.NoError(t, err)
	actor, ok := CurrentActor(c)
	require.True(t, ok)
	assert.Equal(t, lecturer, actor)

	for _, header := range []string{"", "Bearer", "Token good", "Bearer bad"} {
		_, _, err := run(t, JWTAuthMiddleware(parser), header)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err), "header %q", header)
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	parser := stubParser{"good": lecturer}

	rec, c, err := run(t, OptionalJWTAuth(parser), "Bearer bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := CurrentActor(c)
	assert.False(t, ok)

	_, c, err = run(t, OptionalJWTAuth(parser), "Bearer good")
	require.NoError(t, err)
	_, ok = CurrentActor(c)
	assert.True(t, ok)
}

func TestRequireActor(t *testing.T) {
	_, _, err := run(t, RequireActor(), "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{"id-token": {UID: "fb-1", Email: "sam@uni.test"}}

	_, c, err := run(t, FirebaseAuthMiddleware(verifier), "Bearer id-token")
	require.NoError(t, err)
	identity, ok := FirebaseIdentity(c)
	require.True(t, ok)
	assert.Equal(t, "fb-1", identity.UID)

	_, _, err = run(t, FirebaseAuthMiddleware(verifier), "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
