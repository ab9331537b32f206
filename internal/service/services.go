// Package service contains the business logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"

	"github.com/deppfellow/jobly/internal/lib/job"
	"github.com/deppfellow/jobly/internal/repository"
	"github.com/deppfellow/jobly/internal/server"
)

// UserStore is the persistence the services need; *repository.UserRepository
// implements it.
type UserStore interface {
	Create(ctx context.Context, p repository.CreateUserParams) (*repository.User, error)
	Get(ctx context.Context, username string) (*repository.User, error)
	GetWithPassword(ctx context.Context, username string) (*repository.User, error)
	List(ctx context.Context) ([]repository.User, error)
	Update(ctx context.Context, username string, spec repository.UpdateSpec) (*repository.User, error)
	Delete(ctx context.Context, username string) error
}

// TokenIssuer signs tokens; *auth.TokenManager implements it.
type TokenIssuer interface {
	Issue(username string, isAdmin bool) (string, error)
}

// WelcomeMailer schedules welcome emails; *job.JobService implements it.
type WelcomeMailer interface {
	EnqueueWelcomeEmail(ctx context.Context, p job.WelcomeEmailPayload) error
}

type Services struct {
	Auth *AuthService
	User *UserService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Auth: NewAuthService(s, repos.User),
		User: NewUserService(s, repos.User),
	}, nil
}
