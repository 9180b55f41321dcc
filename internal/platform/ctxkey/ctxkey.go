// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey declares the context keys shared by middleware, ctxutil and respond.
//
// Keys are of an unexported type, so no other package can forge or collide with them.
package ctxkey

type key string

const (
	// KeyRequestID holds the X-Request-ID value.
	KeyRequestID key = "request_id"

	// KeyIdentity holds the resolved caller ([*authz.Identity]).
	KeyIdentity key = "identity"

	// KeyLogger holds the request-scoped [*log/slog.Logger].
	KeyLogger key = "logger"
)
