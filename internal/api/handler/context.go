package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxUserKey  = "auth_user"
	CtxTokenKey = "auth_token"
)

// ctxUser extracts the authenticated user injected by the Auth middleware.
// Its presence proves the middleware ran; a protected handler reached
// without it is a routing mistake and is rejected with 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(CtxUserKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return user, nil
}

// ctxToken extracts the raw bearer token of the current request.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(CtxTokenKey).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return token, nil
}
