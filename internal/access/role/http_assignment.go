// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/platform/middleware"
	requestutil "github.com/taibuivan/kassa/internal/platform/request"
	"github.com/taibuivan/kassa/internal/platform/respond"
)

// AssignmentHandler serves an account's roles. It expects to be mounted
// under a route that binds the account id as "id".
type AssignmentHandler struct {
	service *Service
}

// NewAssignmentHandler constructs an [AssignmentHandler].
func NewAssignmentHandler(service *Service) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// RegisterRoutes mounts the assignment routes.
func (handler *AssignmentHandler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequirePermissions(PermissionRead)).Get("/", handler.list)
	router.With(middleware.RequirePermissions(PermissionAssign)).Post("/{roleId}", handler.assign)
	router.With(middleware.RequirePermissions(PermissionAssign)).Delete("/{roleId}", handler.unassign)
}

func (handler *AssignmentHandler) list(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignments, err := handler.service.ListForAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, assignments)
}

func (handler *AssignmentHandler) assign(writer http.ResponseWriter, request *http.Request) {
	accountID, roleID, ok := pair(writer, request)
	if !ok {
		return
	}

	if err := handler.service.Assign(request.Context(), accountID, roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignments, err := handler.service.ListForAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, assignments)
}

func (handler *AssignmentHandler) unassign(writer http.ResponseWriter, request *http.Request) {
	accountID, roleID, ok := pair(writer, request)
	if !ok {
		return
	}

	if err := handler.service.Unassign(request.Context(), accountID, roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// pair reads both path ids, writing the error response itself on failure.
func pair(writer http.ResponseWriter, request *http.Request) (string, string, bool) {
	accountID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return "", "", false
	}

	roleID, err := requestutil.ID(request, "roleId")
	if err != nil {
		respond.Error(writer, request, err)
		return "", "", false
	}

	return accountID, roleID, true
}
