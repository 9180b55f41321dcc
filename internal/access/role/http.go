// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/platform/middleware"
	requestutil "github.com/taibuivan/kassa/internal/platform/request"
	"github.com/taibuivan/kassa/internal/platform/respond"
	"github.com/taibuivan/kassa/pkg/pagination"
)

// Permissions gating the registry and assignment routes.
const (
	PermissionRead   = "roles.read"
	PermissionCreate = "roles.create"
	PermissionUpdate = "roles.update"
	PermissionDelete = "roles.delete"
	PermissionAssign = "roles.assign"
)

// Handler serves the role registry.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the registry routes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequirePermissions(PermissionRead)).Get("/", handler.list)
	router.With(middleware.RequirePermissions(PermissionRead)).Get("/{id}", handler.get)
	router.With(middleware.RequirePermissions(PermissionCreate)).Post("/", handler.create)
	router.With(middleware.RequirePermissions(PermissionUpdate)).Patch("/{id}", handler.update)
	router.With(middleware.RequirePermissions(PermissionDelete)).Delete("/{id}", handler.delete)
}

// # Payloads

type createRequest struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	PermissionIDs []string `json:"permissionIds"`
}

type updateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	PermissionIDs *[]string `json:"permissionIds"`
}

// # Handlers

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	roles, total, err := handler.service.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, roles, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Roles created over HTTP are never system roles
	role, err := handler.service.Create(request.Context(), CreateInput{
		Name:          body.Name,
		Description:   body.Description,
		PermissionIDs: body.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, role)
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

	role, err := handler.service.Update(request.Context(), id, UpdateInput(body))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
