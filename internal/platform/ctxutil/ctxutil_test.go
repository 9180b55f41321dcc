// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/ctxutil"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))
	assert.Equal(t, "rid-1", ctxutil.GetRequestID(ctxutil.WithRequestID(ctx, "rid-1")))
}

/*
TestLogger distinguishes a missing logger from the default fallback.
*/
func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.LoggerFrom(ctx))
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx = ctxutil.WithLogger(ctx, scoped)
	assert.Same(t, scoped, ctxutil.LoggerFrom(ctx))
	assert.Same(t, scoped, ctxutil.GetLogger(ctx))
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetIdentity(ctx))

	ctx = ctxutil.WithIdentity(ctx, &authz.Identity{
		AccountID:   "acc-123",
		Username:    "bob",
		Permissions: authz.NewPermissionSet("sales.create"),
	})
	identity := ctxutil.GetIdentity(ctx)
	require.NotNil(t, identity)
	assert.Equal(t, "acc-123", identity.AccountID)
	assert.True(t, authz.HasPermission(identity, "sales.create"))
}
