// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil reads path parameters, bodies and the caller from a request.

Every failure is already an [apperr.AppError], so handlers pass it straight to
respond.Error.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/ctxutil"
	"github.com/taibuivan/kassa/internal/platform/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON decodes a single JSON document from the request body into target.

Returns:
  - error: validate.ErrInvalidJSON for an empty, oversized or malformed body
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}

	// Trailing documents are rejected
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID returns the named chi path parameter, which must be a UUID.
func ID(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if err := (&validate.Validator{}).UUID(name, value).Err(); err != nil {
		return "", err
	}
	return value, nil
}

// Identity returns the resolved caller, or nil when anonymous.
func Identity(request *http.Request) *authz.Identity {
	return ctxutil.GetIdentity(request.Context())
}

// RequiredIdentity is [Identity] that fails with 401 for anonymous callers.
func RequiredIdentity(request *http.Request) (*authz.Identity, error) {
	identity := Identity(request)
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}
