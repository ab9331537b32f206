package router

import (
	"net/http"

	"github.com/deppfellow/jobly/internal/auth"
	"github.com/deppfellow/jobly/internal/handler"
	"github.com/deppfellow/jobly/internal/middleware"
	"github.com/labstack/echo/v4"
)

func registerUserRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	u := h.User
	g := r.Group("/users")

	admin := m.Auth.Require(auth.RequireAdmin)
	g.POST("", handler.Handle(u.Handler, u.Create, http.StatusCreated, func() *handler.CreateUserRequest {
		return &handler.CreateUserRequest{}
	}), admin)
	g.GET("", handler.Handle(u.Handler, u.List, http.StatusOK, func() *handler.EmptyRequest {
		return &handler.EmptyRequest{}
	}), admin)

	selfOrAdmin := m.Auth.Require(auth.RequireSelfOrAdmin)
	g.GET("/:username", handler.Handle(u.Handler, u.Get, http.StatusOK, func() *handler.UsernameRequest {
		return &handler.UsernameRequest{}
	}), selfOrAdmin)
	g.PATCH("/:username", handler.Handle(u.Handler, u.Update, http.StatusOK, func() *handler.UpdateUserRequest {
		return &handler.UpdateUserRequest{}
	}), selfOrAdmin)
	g.DELETE("/:username", handler.Handle(u.Handler, u.Delete, http.StatusOK, func() *handler.UsernameRequest {
		return &handler.UsernameRequest{}
	}), selfOrAdmin)
}
