package router

import (
	"net/http"

	"github.com/deppfellow/jobly/internal/auth"
	"github.com/deppfellow/jobly/internal/handler"
	"github.com/deppfellow/jobly/internal/middleware"
	"github.com/labstack/echo/v4"
)

func registerAuthRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	a := h.Auth
	g := r.Group("/auth")
	login := m.RateLimit.Login()

	g.POST("/token", handler.Handle(a.Handler, a.Token, http.StatusOK, func() *handler.TokenRequest {
		return &handler.TokenRequest{}
	}), login)

	g.POST("/register", handler.Handle(a.Handler, a.Register, http.StatusCreated, func() *handler.RegisterRequest {
		return &handler.RegisterRequest{}
	}), login)

	g.GET("/me", handler.Handle(a.Handler, a.Me, http.StatusOK, func() *handler.EmptyRequest {
		return &handler.EmptyRequest{}
	}), m.Auth.Require(auth.RequireLoggedIn))
}
