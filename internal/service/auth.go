package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/deppfellow/jobly/internal/lib/job"
	"github.com/deppfellow/jobly/internal/repository"
	"github.com/deppfellow/jobly/internal/server"
	"github.com/rs/zerolog"
)

const msgInvalidCredentials = "Invalid username/password"

// RegisterParams is the input of AuthService.Register.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// AuthService checks credentials and issues tokens.
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	mailer     WelcomeMailer
	bcryptCost int
	logger     *zerolog.Logger
}

func NewAuthService(s *server.Server, users UserStore) *AuthService {
	var mailer WelcomeMailer
	if s.Job != nil {
		mailer = s.Job
	}
	return newAuthService(users, s.Tokens, mailer, s.Config.Auth.BcryptCost, s.Logger)
}

func newAuthService(users UserStore, tokens TokenIssuer, mailer WelcomeMailer, bcryptCost int, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login verifies username and password and returns a fresh token. Unknown
// users and wrong passwords fail the same way.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.GetWithPassword(ctx, username)
	if err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return "", errs.NewUnauthorizedError(msgInvalidCredentials, true)
		}
		return "", err
	}

	if !checkPassword(user.Password, password) {
		return "", errs.NewUnauthorizedError(msgInvalidCredentials, true)
	}

	return a.tokens.Issue(user.Username, user.IsAdmin)
}

// Register creates a non-admin account, schedules its welcome email and
// returns a token for it. A failure to schedule the email is logged only.
func (a *AuthService) Register(ctx context.Context, p RegisterParams) (string, *repository.User, error) {
	hashed, err := hashPassword(p.Password, a.bcryptCost)
	if err != nil {
		return "", nil, err
	}

	user, err := a.users.Create(ctx, repository.CreateUserParams{
		Username:       p.Username,
		HashedPassword: hashed,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		IsAdmin:        false,
	})
	if err != nil {
		return "", nil, err
	}

	if a.mailer != nil {
		err := a.mailer.EnqueueWelcomeEmail(ctx, job.WelcomeEmailPayload{
			To:        user.Email,
			FirstName: user.FirstName,
			Username:  user.Username,
		})
		if err != nil {
			a.logger.Error().Err(err).Str("username", user.Username).Msg("failed to enqueue welcome email")
		}
	}

	token, err := a.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
