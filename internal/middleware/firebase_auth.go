package middleware

import (
	"net/http"

	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const firebaseIdentityKey = "firebaseIdentity"

// FirebaseAuthMiddleware verifies a Firebase ID token sent as a bearer token
// and stores the identity for the handler.
func FirebaseAuthMiddleware(verifier services.IdentityVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, httpErr := bearerToken(c)
			if httpErr != nil {
				return httpErr
			}
			identity, err := verifier.Verify(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}
			c.Set(firebaseIdentityKey, *identity)
			return next(c)
		}
	}
}

// FirebaseIdentity returns the identity verified by FirebaseAuthMiddleware.
func FirebaseIdentity(c echo.Context) (services.FirebaseIdentity, bool) {
	identity, ok := c.Get(firebaseIdentityKey).(services.FirebaseIdentity)
	return identity, ok
}
