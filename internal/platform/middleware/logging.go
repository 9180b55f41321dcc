// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/ctxutil"
)

// accessLog carries facts learned further down the chain back to the logger.
// [Authenticate] resolves the caller in a child context, so it writes here.
type accessLog struct {
	accountID string
	roles     []string
}

type accessLogKey struct{}

func annotateAccount(ctx context.Context, identity *authz.Identity) {
	if entry, ok := ctx.Value(accessLogKey{}).(*accessLog); ok {
		entry.accountID = identity.AccountID
		entry.roles = identity.RoleNames()
	}
}

// levelFor maps a response status onto a log level.
func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

/*
StructuredLogger emits one "http_request_finished" line per request.

A request-scoped logger tagged with request_id, method, path and ip is placed
in the context for handlers (see [ctxutil.GetLogger]).
*/
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			scoped := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			entry := &accessLog{}
			ctx := context.WithValue(ctxutil.WithLogger(request.Context(), scoped), accessLogKey{}, entry)
			recorder := newStatusRecorder(writer)

			next.ServeHTTP(recorder, request.WithContext(ctx))

			attrs := []any{
				slog.Int("status", recorder.status),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if entry.accountID != "" {
				attrs = append(attrs,
					slog.String(constants.LogAccountID, entry.accountID),
					slog.Any(constants.LogRoles, entry.roles),
				)
			}
			scoped.Log(ctx, levelFor(recorder.status), "http_request_finished", attrs...)
		})
	}
}
