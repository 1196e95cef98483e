package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mobilekit/auth-service/internal/api/handler"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

// Auth resolves the opaque bearer token against the token store, loads the
// bound user, and injects both into the request context. Token validity is
// decided entirely by the store: unknown, revoked, and expired tokens are
// indistinguishable here.
func Auth(tokens ports.TokenStore, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			raw := parts[1]

			ctx := c.Request().Context()
			userID, err := tokens.Resolve(ctx, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil {
				// Token outlived its user record; treat as revoked.
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(handler.CtxUserKey, user)
			c.Set(handler.CtxTokenKey, raw)

			return next(c)
		}
	}
}
