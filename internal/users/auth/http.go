// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/platform/middleware"
	requestutil "github.com/taibuivan/kassa/internal/platform/request"
	"github.com/taibuivan/kassa/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the account lifecycle HTTP endpoints.
//
// # Scope
//
// Registration and login are public and wrapped by the stricter credential
// limiter. Approval requires users.approve.
type Handler struct {
	authService       *Service
	credentialLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a [Handler]. credentialLimiter may be nil.
func NewHandler(service *Service, credentialLimiter func(http.Handler) http.Handler) *Handler {
	return &Handler{authService: service, credentialLimiter: credentialLimiter}
}

// Routes returns a [chi.Router] configured with lifecycle routes.
//
// # Endpoints
//   - POST /register     : Applies for an account (PENDING).
//   - POST /login        : Authenticates and returns a bearer token.
//   - GET  /me           : Current profile with roles and permissions.
//   - POST /approve/{id} : PENDING → APPROVED.
//   - POST /reject/{id}  : PENDING → REJECTED.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Group(func(r chi.Router) {
		if handler.credentialLimiter != nil {
			r.Use(handler.credentialLimiter)
		}
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
	})

	// Protected endpoints
	router.With(middleware.RequireAuth).Get("/me", handler.me)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermissions(PermissionApprove))
		r.Post("/approve/{id}", handler.approve)
		r.Post("/reject/{id}", handler.reject)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

/*
register applies for a new account.

POST /api/v1/auth/register

Response:
  - 201: RegisterResult
  - 400: Validation failure
  - 409: Email or username already taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

/*
login authenticates with email or username.

POST /api/v1/auth/login

Response:
  - 200: LoginResult
  - 401: Invalid credentials or a status-specific denial
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Authenticate(request.Context(), input.Identifier, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.authService.Profile(request.Context(), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, handler.authService.Approve)
}

func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, handler.authService.Reject)
}

func (handler *Handler) transition(
	writer http.ResponseWriter,
	request *http.Request,
	apply func(context.Context, string) (*Account, error),
) {
	accountID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := apply(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}
