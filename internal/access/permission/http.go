// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/platform/middleware"
	requestutil "github.com/taibuivan/kassa/internal/platform/request"
	"github.com/taibuivan/kassa/internal/platform/respond"
)

// PermissionRead gates every catalog route.
const PermissionRead = "permissions.read"

// Handler serves the read-only permission catalog.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog under the given router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequirePermissions(PermissionRead))

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	catalog, err := handler.service.ListGroupedByCategory(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, catalog)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	permission, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permission)
}
