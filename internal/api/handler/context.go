package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-api/internal/api/middleware"
	"github.com/userhub/identity-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// value means the route was wired without the guard; treat it as
// unauthenticated rather than panicking.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(domain.Claims)
	if !ok {
		return domain.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return claims, nil
}
