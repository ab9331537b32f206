package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/deppfellow/jobly/internal/lib/job"
	"github.com/deppfellow/jobly/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, p repository.CreateUserParams) (*repository.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserStore) Get(ctx context.Context, username string) (*repository.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserStore) GetWithPassword(ctx context.Context, username string) (*repository.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]repository.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, username string, spec repository.UpdateSpec) (*repository.User, error) {
	args := m.Called(ctx, username, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(username string, isAdmin bool) (string, error) {
	args := m.Called(username, isAdmin)
	return args.String(0), args.Error(1)
}

type MockWelcomeMailer struct {
	mock.Mock
}

func (m *MockWelcomeMailer) EnqueueWelcomeEmail(ctx context.Context, p job.WelcomeEmailPayload) error {
	return m.Called(ctx, p).Error(0)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Login(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		users := new(MockUserStore)
		tokens := new(MockTokenIssuer)
		svc := newAuthService(users, tokens, nil, bcrypt.MinCost, &logger)

		users.On("GetWithPassword", ctx, "u1").
			Return(&repository.User{Username: "u1", Password: mustHash(t, "password1"), IsAdmin: true}, nil)
		tokens.On("Issue", "u1", true).Return("signed", nil)

		token, err := svc.Login(ctx, "u1", "password1")
		require.NoError(t, err)
		assert.Equal(t, "signed", token)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		users := new(MockUserStore)
		tokens := new(MockTokenIssuer)
		svc := newAuthService(users, tokens, nil, bcrypt.MinCost, &logger)

		users.On("GetWithPassword", ctx, "u1").
			Return(&repository.User{Username: "u1", Password: mustHash(t, "password1")}, nil)

		_, err := svc.Login(ctx, "u1", "wrong")
		assert.Equal(t, http.StatusUnauthorized, errs.StatusOf(err))
		tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newAuthService(users, new(MockTokenIssuer), nil, bcrypt.MinCost, &logger)

		users.On("GetWithPassword", ctx, "nope").
			Return(nil, errs.NewNotFoundError("No user: nope", true, nil))

		_, err := svc.Login(ctx, "nope", "password1")
		assert.Equal(t, http.StatusUnauthorized, errs.StatusOf(err))
	})
}

func TestAuthService_Register(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	params := RegisterParams{
		Username:  "new",
		Password:  "password",
		FirstName: "First",
		LastName:  "Last",
		Email:     "new@email.com",
	}
	created := &repository.User{Username: "new", FirstName: "First", LastName: "Last", Email: "new@email.com"}

	t.Run("creates a non-admin with a hashed password", func(t *testing.T) {
		users := new(MockUserStore)
		tokens := new(MockTokenIssuer)
		mailer := new(MockWelcomeMailer)
		svc := newAuthService(users, tokens, mailer, bcrypt.MinCost, &logger)

		users.On("Create", ctx, mock.MatchedBy(func(p repository.CreateUserParams) bool {
			return p.Username == "new" && !p.IsAdmin && checkPassword(p.HashedPassword, "password")
		})).Return(created, nil)
		mailer.On("EnqueueWelcomeEmail", ctx, job.WelcomeEmailPayload{
			To: "new@email.com", FirstName: "First", Username: "new",
		}).Return(nil)
		tokens.On("Issue", "new", false).Return("signed", nil)

		token, user, err := svc.Register(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, "signed", token)
		assert.Equal(t, created, user)
		users.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("enqueue failure does not fail registration", func(t *testing.T) {
		users := new(MockUserStore)
		tokens := new(MockTokenIssuer)
		mailer := new(MockWelcomeMailer)
		svc := newAuthService(users, tokens, mailer, bcrypt.MinCost, &logger)

		users.On("Create", ctx, mock.Anything).Return(created, nil)
		mailer.On("EnqueueWelcomeEmail", ctx, mock.Anything).Return(errors.New("redis down"))
		tokens.On("Issue", "new", false).Return("signed", nil)

		token, _, err := svc.Register(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, "signed", token)
	})

	t.Run("duplicate is returned as is", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newAuthService(users, new(MockTokenIssuer), nil, bcrypt.MinCost, &logger)

		dup := errs.NewBadRequestError("A User with this Username already exists", true, nil, nil, nil)
		users.On("Create", ctx, mock.Anything).Return(nil, dup)

		_, _, err := svc.Register(ctx, params)
		assert.Same(t, dup, err)
	})
}

func TestUserService_Update(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("hashes a new password without touching the input", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newUserService(users, new(MockTokenIssuer), bcrypt.MinCost, &logger)

		spec := repository.UpdateSpec{}.Set("firstName", "New").Set("password", "new-password")

		users.On("Update", ctx, "u1", mock.MatchedBy(func(s repository.UpdateSpec) bool {
			hashed, _ := s.Get("password")
			first, _ := s.Get("firstName")
			return first == "New" && checkPassword(hashed.(string), "new-password")
		})).Return(&repository.User{Username: "u1", FirstName: "New"}, nil)

		user, err := svc.Update(ctx, "u1", spec)
		require.NoError(t, err)
		assert.Equal(t, "New", user.FirstName)

		original, _ := spec.Get("password")
		assert.Equal(t, "new-password", original)
		users.AssertExpectations(t)
	})

	t.Run("non-string password is invalid input", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newUserService(users, new(MockTokenIssuer), bcrypt.MinCost, &logger)

		spec := repository.UpdateSpec{{Name: "password", Value: 12345.0}}

		_, err := svc.Update(ctx, "u1", spec)
		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "INVALID_INPUT", httpErr.Code)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("passes other fields through", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newUserService(users, new(MockTokenIssuer), bcrypt.MinCost, &logger)

		spec := repository.UpdateSpec{{Name: "email", Value: "x@y.z"}}
		users.On("Update", ctx, "u1", spec).Return(&repository.User{Username: "u1", Email: "x@y.z"}, nil)

		_, err := svc.Update(ctx, "u1", spec)
		require.NoError(t, err)
	})
}

func TestUserService_Create(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	users := new(MockUserStore)
	tokens := new(MockTokenIssuer)
	svc := newUserService(users, tokens, bcrypt.MinCost, &logger)

	users.On("Create", ctx, mock.MatchedBy(func(p repository.CreateUserParams) bool {
		return p.IsAdmin
	})).Return(&repository.User{Username: "boss", IsAdmin: true}, nil)
	tokens.On("Issue", "boss", true).Return("signed", nil)

	user, token, err := svc.Create(ctx, CreateUserParams{
		RegisterParams: RegisterParams{Username: "boss", Password: "password"},
		IsAdmin:        true,
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "signed", token)
}
