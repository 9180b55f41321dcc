// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/ctxutil"
)

func newRouter() chi.Router {
	router := chi.NewRouter()
	router.Route("/permissions", NewHandler(NewService(fixture(), nil)).RegisterRoutes)
	return router
}

func serve(router chi.Router, path string, identity *authz.Identity) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if identity != nil {
		request = request.WithContext(ctxutil.WithIdentity(request.Context(), identity))
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Gate requires permissions.read on every catalog route.
*/
func TestHandler_Gate(t *testing.T) {
	router := newRouter()
	reader := &authz.Identity{AccountID: "a1", Permissions: authz.NewPermissionSet(PermissionRead)}
	cashier := &authz.Identity{AccountID: "a2", Permissions: authz.NewPermissionSet("sales.create")}

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/permissions", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "/permissions", cashier).Code)

	recorder := serve(router, "/permissions", reader)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data Catalog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.Total)
}

/*
TestHandler_Get validates the id and returns 404 for unknown permissions.
*/
func TestHandler_Get(t *testing.T) {
	router := newRouter()
	reader := &authz.Identity{AccountID: "a1", Permissions: authz.NewPermissionSet(PermissionRead)}

	assert.Equal(t, http.StatusBadRequest, serve(router, "/permissions/not-a-uuid", reader).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/permissions/0190a6d4-58b8-7c3e-9a51-2f0c9d7e4b11", reader).Code)
}
