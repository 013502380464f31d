// Package httpapi is the thin transport boundary over the authentication
// engine. It binds request bodies, delegates to the services layer and maps
// the error taxonomy onto HTTP status codes; no business rules live here.
package httpapi

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/server/services"
)

type Server struct {
	echo   *echo.Echo
	users  *services.UserService
	logger logging.Logger
}

func NewServer(users *services.UserService, logger logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, users: users, logger: logger}

	api := e.Group("/api/auth")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/refresh", s.handleRefresh)

	authed := api.Group("", s.requireAccessToken)
	authed.POST("/logout", s.handleLogout)
	authed.GET("/me", s.handleMe)
	authed.PUT("/username", s.handleChangeUsername)
	authed.PUT("/password", s.handleChangePassword)

	return s
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
