package handler

import (
	"encoding/json"

	"github.com/deppfellow/jobly/internal/repository"
	"github.com/deppfellow/jobly/internal/server"
	"github.com/deppfellow/jobly/internal/service"
	"github.com/deppfellow/jobly/internal/validation"
	"github.com/labstack/echo/v4"
)

type CreateUserRequest struct {
	RegisterRequest
	IsAdmin bool `json:"isAdmin"`
}

func (r *CreateUserRequest) Validate() error {
	return validation.Struct(r)
}

// UsernameRequest carries only the :username route parameter.
type UsernameRequest struct {
	Username string `param:"username" validate:"required"`
}

func (r *UsernameRequest) Validate() error {
	return validation.Struct(r)
}

// updatableUserFields lists the fields PATCH accepts with the rules each
// value must satisfy.
var updatableUserFields = map[string]string{
	"firstName": "min=1,max=30",
	"lastName":  "min=1,max=30",
	"password":  "min=5,max=20",
	"email":     "min=6,max=60,email",
}

// UpdateUserRequest is a partial update of a user. The body keeps its key
// order so the resulting SET clause follows it.
type UpdateUserRequest struct {
	Username string                `param:"username"`
	Fields   repository.UpdateSpec `json:"-"`
}

func (r *UpdateUserRequest) UnmarshalJSON(data []byte) error {
	spec, err := repository.DecodeUpdateSpec(data)
	if err != nil {
		return err
	}
	r.Fields = spec
	return nil
}

// Validate rejects unknown fields and bad values. An empty update is left
// for the repository to refuse.
func (r *UpdateUserRequest) Validate() error {
	var failures validation.CustomValidationErrors

	for _, f := range r.Fields {
		rules, ok := updatableUserFields[f.Name]
		if !ok {
			failures = append(failures, validation.CustomValidationError{
				Field:   f.Name,
				Message: "is not allowed",
			})
			continue
		}

		value, ok := f.Value.(string)
		if !ok {
			failures = append(failures, validation.CustomValidationError{
				Field:   f.Name,
				Message: "must be a string",
			})
			continue
		}

		if err := validation.Var(value, rules); err != nil {
			failures = append(failures, validation.CustomValidationError{
				Field:   f.Name,
				Message: "must satisfy " + rules,
			})
		}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}

type UserResponse struct {
	User *repository.User `json:"user"`
}

type UserWithTokenResponse struct {
	User  *repository.User `json:"user"`
	Token string           `json:"token"`
}

type UserListResponse struct {
	Users []repository.User `json:"users"`
}

type DeletedResponse struct {
	Deleted string `json:"deleted"`
}

type UserHandler struct {
	Handler
	userService *service.UserService
}

func NewUserHandler(s *server.Server, userService *service.UserService) *UserHandler {
	return &UserHandler{
		Handler:     NewHandler(s),
		userService: userService,
	}
}

// Create adds a user, possibly an admin. Admin only.
func (h *UserHandler) Create(c echo.Context, req *CreateUserRequest) (*UserWithTokenResponse, error) {
	user, token, err := h.userService.Create(c.Request().Context(), service.CreateUserParams{
		RegisterParams: req.params(),
		IsAdmin:        req.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &UserWithTokenResponse{User: user, Token: token}, nil
}

func (h *UserHandler) List(c echo.Context, _ *EmptyRequest) (*UserListResponse, error) {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []repository.User{}
	}
	return &UserListResponse{Users: users}, nil
}

func (h *UserHandler) Get(c echo.Context, req *UsernameRequest) (*UserResponse, error) {
	user, err := h.userService.Get(c.Request().Context(), req.Username)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

func (h *UserHandler) Update(c echo.Context, req *UpdateUserRequest) (*UserResponse, error) {
	user, err := h.userService.Update(c.Request().Context(), req.Username, req.Fields)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

func (h *UserHandler) Delete(c echo.Context, req *UsernameRequest) (*DeletedResponse, error) {
	if err := h.userService.Delete(c.Request().Context(), req.Username); err != nil {
		return nil, err
	}
	return &DeletedResponse{Deleted: req.Username}, nil
}

var _ json.Unmarshaler = (*UpdateUserRequest)(nil)
