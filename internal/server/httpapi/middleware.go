package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/server/models"
)

const userContextKey = "authcore.user"

// requireAccessToken verifies the bearer access token statelessly, then
// resolves the bearer's current account state by primary key so that a
// deactivated account is rejected even while its access token is unexpired.
func (s *Server) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "missing bearer token"})
		}

		claims, err := s.users.VerifyAccess(token)
		if err != nil {
			return s.fail(c, err)
		}

		user, err := s.users.GetUser(c.Request().Context(), claims.UserID)
		if err != nil {
			return s.fail(c, err)
		}
		if !user.IsActive {
			return s.fail(c, common.ErrAccountInactive)
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	return c.Get(userContextKey).(*models.User)
}
