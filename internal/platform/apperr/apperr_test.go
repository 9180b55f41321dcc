// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/platform/apperr"
)

/*
TestAppError_Taxonomy pins the HTTP status and code of every constructor.
*/
func TestAppError_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("Role"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", apperr.Unauthorized("x"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.Forbidden("x"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", apperr.Conflict("x"), http.StatusConflict, "CONFLICT"},
		{"invalid_state", apperr.InvalidState("x"), http.StatusConflict, "INVALID_STATE"},
		{"validation", apperr.ValidationError("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rate_limited", apperr.RateLimited(1), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}

	assert.Equal(t, "Role not found", apperr.NotFound("Role").Error())
}

/*
TestAppError_Unwrap verifies that wrapped AppErrors remain discoverable.
*/
func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("pool closed")
	wrapped := fmt.Errorf("role_service_create_failed: %w", apperr.Internal(cause))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperr.HasCode(wrapped, "INTERNAL_ERROR"))
	assert.False(t, apperr.HasCode(errors.New("plain"), "INTERNAL_ERROR"))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
