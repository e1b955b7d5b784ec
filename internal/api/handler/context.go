package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: user id and role must
// both be present (presence proves the middleware ran and the role resolved).
func ctxIdentity(c echo.Context) (userID, email string, role domain.Role, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid user token")
	}

	email, _ = c.Get("email").(string)

	roleStr, _ := c.Get("role").(string)
	role, perr := domain.ParseRole(roleStr)
	if perr != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid user token")
	}

	return userID, email, role, nil
}
