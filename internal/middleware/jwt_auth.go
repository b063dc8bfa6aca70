package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// TokenParser turns a bearer token into the actor it was issued to
type TokenParser interface {
	ParseToken(token string) (services.Actor, error)
}

// bearerToken extracts "<token>" from "Bearer <token>".
func bearerToken(c echo.Context) (string, *echo.HTTPError) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// JWTAuthMiddleware rejects requests without a valid local JWT.
func JWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, httpErr := bearerToken(c)
			if httpErr != nil {
				return httpErr
			}
			actor, err := parser.ParseToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// OptionalJWTAuth sets the actor when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalJWTAuth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, httpErr := bearerToken(c); httpErr == nil {
				if actor, err := parser.ParseToken(token); err == nil {
					c.Set(actorKey, actor)
				}
			}
			return next(c)
		}
	}
}

// RequireActor rejects requests that no earlier middleware authenticated.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentActor(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			return next(c)
		}
	}
}

// CurrentActor returns the authenticated actor of the request, if any.
func CurrentActor(c echo.Context) (services.Actor, bool) {
	actor, ok := c.Get(actorKey).(services.Actor)
	return actor, ok
}
