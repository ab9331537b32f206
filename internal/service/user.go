package service

import (
	"context"
	"slices"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/deppfellow/jobly/internal/repository"
	"github.com/deppfellow/jobly/internal/server"
	"github.com/rs/zerolog"
)

// CreateUserParams is the input of UserService.Create. Unlike
// registration it may create admins.
type CreateUserParams struct {
	RegisterParams
	IsAdmin bool
}

type UserService struct {
	users      UserStore
	tokens     TokenIssuer
	bcryptCost int
	logger     *zerolog.Logger
}

func NewUserService(s *server.Server, users UserStore) *UserService {
	return newUserService(users, s.Tokens, s.Config.Auth.BcryptCost, s.Logger)
}

func newUserService(users UserStore, tokens TokenIssuer, bcryptCost int, logger *zerolog.Logger) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create adds a user and returns it with a token for it.
func (u *UserService) Create(ctx context.Context, p CreateUserParams) (*repository.User, string, error) {
	hashed, err := hashPassword(p.Password, u.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := u.users.Create(ctx, repository.CreateUserParams{
		Username:       p.Username,
		HashedPassword: hashed,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		IsAdmin:        p.IsAdmin,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *UserService) List(ctx context.Context) ([]repository.User, error) {
	return u.users.List(ctx)
}

func (u *UserService) Get(ctx context.Context, username string) (*repository.User, error) {
	return u.users.Get(ctx, username)
}

// Update applies a partial update. A new password is hashed before it is
// stored; spec itself is left untouched.
func (u *UserService) Update(ctx context.Context, username string, spec repository.UpdateSpec) (*repository.User, error) {
	if raw, ok := spec.Get("password"); ok {
		password, ok := raw.(string)
		if !ok {
			return nil, errs.NewInvalidInputError("password must be a string")
		}
		hashed, err := hashPassword(password, u.bcryptCost)
		if err != nil {
			return nil, err
		}
		spec = slices.Clone(spec).Set("password", hashed)
	}

	user, err := u.users.Update(ctx, username, spec)
	if err != nil {
		return nil, err
	}

	u.logger.Info().
		Str("username", username).
		Strs("fields", spec.Names()).
		Msg("user updated")
	return user, nil
}

func (u *UserService) Delete(ctx context.Context, username string) error {
	return u.users.Delete(ctx, username)
}
