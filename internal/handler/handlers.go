package handler

import (
	"github.com/deppfellow/jobly/internal/server"
	"github.com/deppfellow/jobly/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health *HealthHandler
	Auth   *AuthHandler
	User   *UserHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Auth:   NewAuthHandler(s, services.Auth),
		User:   NewUserHandler(s, services.User),
	}
}
