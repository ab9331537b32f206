package handler

import (
	"github.com/deppfellow/jobly/internal/auth"
	"github.com/deppfellow/jobly/internal/errs"
	"github.com/deppfellow/jobly/internal/middleware"
	"github.com/deppfellow/jobly/internal/server"
	"github.com/deppfellow/jobly/internal/service"
	"github.com/deppfellow/jobly/internal/validation"
	"github.com/labstack/echo/v4"
)

type TokenRequest struct {
	Username string `json:"username" validate:"required,min=1,max=25"`
	Password string `json:"password" validate:"required,min=5,max=20"`
}

func (r *TokenRequest) Validate() error {
	return validation.Struct(r)
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=20"`
	FirstName string `json:"firstName" validate:"required,min=1,max=30"`
	LastName  string `json:"lastName" validate:"required,min=1,max=30"`
	Email     string `json:"email" validate:"required,min=6,max=60,email"`
}

func (r *RegisterRequest) Validate() error {
	return validation.Struct(r)
}

func (r *RegisterRequest) params() service.RegisterParams {
	return service.RegisterParams{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

// EmptyRequest is the payload of endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MeResponse struct {
	User *auth.Claims `json:"user"`
}

type AuthHandler struct {
	Handler
	authService *service.AuthService
}

func NewAuthHandler(s *server.Server, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler:     NewHandler(s),
		authService: authService,
	}
}

// Token exchanges a username and password for a token.
func (h *AuthHandler) Token(c echo.Context, req *TokenRequest) (*TokenResponse, error) {
	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token}, nil
}

// Register creates a regular account and logs it in.
func (h *AuthHandler) Register(c echo.Context, req *RegisterRequest) (*TokenResponse, error) {
	token, _, err := h.authService.Register(c.Request().Context(), req.params())
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token}, nil
}

// Me returns the claims of the caller.
func (h *AuthHandler) Me(c echo.Context, _ *EmptyRequest) (*MeResponse, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return &MeResponse{User: user}, nil
}
