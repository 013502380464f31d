package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/server/models"
	"github.com/dmitrijs2005/authcore/internal/server/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changeUsernameRequest struct {
	NewUsername string `json:"new_username"`
	Password    string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type authResponse struct {
	Success bool                `json:"success"`
	User    *models.User        `json:"user,omitempty"`
	Tokens  *services.TokenPair `json:"tokens,omitempty"`
}

func (s *Server) handleRegister(c echo.Context) error {
	req := &credentialsRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	user, pair, err := s.users.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, authResponse{Success: true, User: user, Tokens: pair})
}

func (s *Server) handleLogin(c echo.Context) error {
	req := &credentialsRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	user, pair, err := s.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		// An unknown username responds 401 like a bad password, to avoid
		// confirming which accounts exist.
		if errors.Is(err, common.ErrUserNotFound) {
			err = common.ErrCredentialMismatch
		}
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: user, Tokens: pair})
}

func (s *Server) handleRefresh(c echo.Context) error {
	req := &refreshRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	pair, err := s.users.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Tokens: pair})
}

func (s *Server) handleLogout(c echo.Context) error {
	user := currentUser(c)
	if err := s.users.Logout(c.Request().Context(), user.UserID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, authResponse{Success: true, User: currentUser(c)})
}

func (s *Server) handleChangeUsername(c echo.Context) error {
	req := &changeUsernameRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	user, err := s.users.ChangeUsername(c.Request().Context(), currentUser(c).UserID, req.NewUsername, req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: user})
}

func (s *Server) handleChangePassword(c echo.Context) error {
	req := &changePasswordRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	user, err := s.users.ChangePassword(c.Request().Context(), currentUser(c).UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: user})
}
