// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/ctxutil"
	"github.com/taibuivan/kassa/internal/platform/respond"
)

// IdentityResolver turns a bearer token into a fully checked caller.
// Implemented by the account lifecycle, which re-checks account state.
type IdentityResolver interface {
	ResolveFromToken(context context.Context, token string) (*authz.Identity, error)
}

// Authenticate extracts the bearer token and resolves the caller.
//
// # Flow
//  1. No 'Authorization' header: request proceeds as anonymous.
//  2. Malformed header: 401.
//  3. Resolution failure (bad token, blocked account): 401.
//  4. Success: [*authz.Identity] is injected into the request context.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], constants.TokenType) {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveFromToken(request.Context(), parts[1])
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			annotateAccount(request.Context(), identity)
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			recordDecision(decisionUnauthenticated)
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermissions is the request gate of a protected route.
//
// # Semantics
//   - An empty list passes unconditionally, authenticated or not.
//   - Otherwise the caller must be resolved (401 if anonymous).
//   - Every listed permission must be held. Permissions are checked in
//     declaration order and the first missing one is reported as
//     "<permission> required" (403). There is no OR form.
//
// # Usage
//
//	router.With(middleware.RequirePermissions("roles.update")).Patch("/{id}", handler.update)
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	required := append([]string(nil), permissions...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if err := Check(ctxutil.GetIdentity(request.Context()), required...); err != nil {
				respond.Error(writer, request, err)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// Check applies the gate semantics of [RequirePermissions] to an identity.
func Check(identity *authz.Identity, permissions ...string) error {
	if len(permissions) == 0 {
		return nil
	}

	if identity == nil {
		recordDecision(decisionUnauthenticated)
		return apperr.Unauthorized("Authentication required")
	}

	for _, permission := range permissions {
		if !authz.HasPermission(identity, permission) {
			recordDecision(decisionDenied)
			return apperr.Forbidden(permission + " required")
		}
	}

	recordDecision(decisionGranted)
	return nil
}
