// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads per-request values on a [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/ctxkey"
)

// lookup reads a typed value, reporting false when absent or of another type.
func lookup[T any](ctx context.Context, key any) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

// WithRequestID attaches the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation id, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := lookup[string](ctx, ctxkey.KeyRequestID)
	return id
}

// WithLogger attaches a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// LoggerFrom returns the request-scoped logger, or nil.
func LoggerFrom(ctx context.Context) *slog.Logger {
	logger, _ := lookup[*slog.Logger](ctx, ctxkey.KeyLogger)
	return logger
}

// GetLogger is [LoggerFrom] falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger := LoggerFrom(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}

// WithIdentity attaches the resolved caller.
func WithIdentity(ctx context.Context, identity *authz.Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// GetIdentity returns the resolved caller, or nil for anonymous requests.
func GetIdentity(ctx context.Context) *authz.Identity {
	identity, _ := lookup[*authz.Identity](ctx, ctxkey.KeyIdentity)
	return identity
}
