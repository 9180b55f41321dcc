// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/platform/middleware"
	requestutil "github.com/taibuivan/kassa/internal/platform/request"
	"github.com/taibuivan/kassa/internal/platform/respond"
	"github.com/taibuivan/kassa/internal/users/auth"
	"github.com/taibuivan/kassa/pkg/pagination"
)

// # Handler Definition

// Handler serves administrative account endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

/*
RegisterRoutes mounts the account management routes.

Endpoints:
  - GET    /                 : List accounts (?search, ?status, ?deleted, ?page, ?limit)
  - POST   /                 : Create an approved account
  - GET    /{id}             : Account with roles and permissions
  - PATCH  /{id}             : Edit profile fields
  - DELETE /{id}             : Soft delete
  - POST   /{id}/suspend     : APPROVED → SUSPENDED
  - POST   /{id}/reinstate   : SUSPENDED → APPROVED
  - POST   /{id}/restore     : Undo a soft delete
  - POST   /{id}/change-password : Reset the secret
*/
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermissions(PermissionRead))
		r.Get("/", handler.list)
		r.Get("/{id}", handler.get)
	})

	router.With(middleware.RequirePermissions(PermissionCreate)).Post("/", handler.create)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermissions(PermissionDelete))
		r.Delete("/{id}", handler.delete)
		r.Post("/{id}/restore", handler.restore)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermissions(PermissionUpdate))
		r.Patch("/{id}", handler.update)
		r.Post("/{id}/suspend", handler.suspend)
		r.Post("/{id}/reinstate", handler.reinstate)
		r.Post("/{id}/change-password", handler.changePassword)
	})
}

// # Request Payloads

type createRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
}

type updateRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
}

type passwordRequest struct {
	NewPassword string `json:"newPassword"`
}

// # Handlers

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	deleted, _ := strconv.ParseBool(query.Get("deleted"))
	filter := Filter{
		Search:  query.Get("search"),
		Status:  auth.Status(query.Get("status")),
		Deleted: deleted,
	}

	accounts, total, err := handler.accountService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Create(request.Context(), auth.RegisterInput(body))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, account)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body updateRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Update(request.Context(), id, UpdateInput(body))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), caller.AccountID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	handler.apply(writer, request, handler.accountService.Suspend)
}

func (handler *Handler) reinstate(writer http.ResponseWriter, request *http.Request) {
	handler.apply(writer, request, handler.accountService.Reinstate)
}

func (handler *Handler) restore(writer http.ResponseWriter, request *http.Request) {
	handler.apply(writer, request, handler.accountService.Restore)
}

func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body passwordRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangePassword(request.Context(), id, body.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// apply runs a single-account command addressed by the {id} parameter.
func (handler *Handler) apply(
	writer http.ResponseWriter,
	request *http.Request,
	command func(context.Context, string) (*auth.Account, error),
) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := command(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}
