// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/access/authz"
)

// # Fakes

type fakeSource struct {
	assignments map[string][]authz.Assignment
	grants      []authz.Grant
	calls       int
	err         error
}

func (source *fakeSource) AssignmentsForAccount(_ context.Context, accountID string) ([]authz.Assignment, error) {
	source.calls++
	if source.err != nil {
		return nil, source.err
	}
	return source.assignments[accountID], nil
}

func (source *fakeSource) GrantsForRoles(_ context.Context, roleIDs []string) ([]authz.Grant, error) {
	wanted := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = true
	}
	var out []authz.Grant
	for _, grant := range source.grants {
		if wanted[grant.RoleID] {
			out = append(out, grant)
		}
	}
	return out, nil
}

type memoryCache struct {
	epoch          int64
	entries        map[int64]map[string]*authz.Snapshot
	failGet        bool
	failInvalidate bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[int64]map[string]*authz.Snapshot{}}
}

func (cache *memoryCache) Get(_ context.Context, accountID string) (*authz.Snapshot, int64, error) {
	if cache.failGet {
		return nil, 0, errors.New("cache down")
	}
	return cache.entries[cache.epoch][accountID], cache.epoch, nil
}

func (cache *memoryCache) Set(_ context.Context, accountID string, stamp int64, snapshot *authz.Snapshot) error {
	if cache.entries[stamp] == nil {
		cache.entries[stamp] = map[string]*authz.Snapshot{}
	}
	cache.entries[stamp][accountID] = snapshot
	return nil
}

func (cache *memoryCache) Invalidate(context.Context) error {
	if cache.failInvalidate {
		return errors.New("cache down")
	}
	cache.epoch++
	return nil
}

func cashierSource() *fakeSource {
	return &fakeSource{
		assignments: map[string][]authz.Assignment{
			"a2": {{AccountID: "a2", RoleID: "r-cashier", RoleName: "Cashier"}},
			"a3": {
				{AccountID: "a3", RoleID: "r-cashier", RoleName: "Cashier"},
				{AccountID: "a3", RoleID: "r-manager", RoleName: "Manager"},
			},
		},
		grants: []authz.Grant{
			{RoleID: "r-cashier", PermissionName: "sales.create"},
			{RoleID: "r-cashier", PermissionName: "sales.view"},
			{RoleID: "r-manager", PermissionName: "sales.view"},
			{RoleID: "r-manager", PermissionName: "products.update"},
			{RoleID: "r-admin", PermissionName: "products.delete"},
		},
	}
}

// # Union

/*
TestUnion_CollapsesDuplicates verifies set semantics regardless of edge order.
*/
func TestUnion_CollapsesDuplicates(t *testing.T) {
	assignments := []authz.Assignment{{RoleID: "r1"}, {RoleID: "r2"}}
	grants := []authz.Grant{
		{RoleID: "r2", PermissionName: "sales.read"},
		{RoleID: "r1", PermissionName: "sales.read"},
		{RoleID: "r1", PermissionName: "users.read"},
		{RoleID: "r3", PermissionName: "system.admin"},
	}

	forward := authz.Union(assignments, grants)
	reversed := authz.Union(
		[]authz.Assignment{assignments[1], assignments[0]},
		[]authz.Grant{grants[3], grants[2], grants[1], grants[0]},
	)

	assert.Equal(t, []string{"sales.read", "users.read"}, forward.Names())
	assert.Equal(t, forward, reversed)
	assert.False(t, forward.Has("system.admin"))
}

/*
TestUnion_Empty returns an empty, usable set.
*/
func TestUnion_Empty(t *testing.T) {
	set := authz.Union(nil, nil)
	require.NotNil(t, set)
	assert.Empty(t, set.Names())
}

// # HasPermission

/*
TestHasPermission_Absence never panics and never grants on missing data.
*/
func TestHasPermission_Absence(t *testing.T) {
	assert.False(t, authz.HasPermission(nil, "sales.create"))
	assert.False(t, authz.HasPermission(&authz.Identity{}, "sales.create"))

	identity := &authz.Identity{Permissions: authz.NewPermissionSet("sales.create")}
	assert.True(t, authz.HasPermission(identity, "sales.create"))
	assert.False(t, authz.HasPermission(identity, "sales.delete"))
}

// # Engine

/*
TestEngine_CashierScenario covers the Cashier role grant and denial.
*/
func TestEngine_CashierScenario(t *testing.T) {
	engine := authz.NewEngine(cashierSource(), nil, nil)

	set, err := engine.EffectivePermissions(context.Background(), "a2")
	require.NoError(t, err)

	identity := &authz.Identity{AccountID: "a2", Permissions: set}
	assert.True(t, authz.HasPermission(identity, "sales.create"))
	assert.False(t, authz.HasPermission(identity, "products.delete"))
}

/*
TestEngine_MultipleRoles unions permissions across roles and sorts roles.
*/
func TestEngine_MultipleRoles(t *testing.T) {
	engine := authz.NewEngine(cashierSource(), nil, nil)

	snapshot, err := engine.Resolve(context.Background(), "a3")
	require.NoError(t, err)

	assert.Equal(t, []string{"products.update", "sales.create", "sales.view"}, snapshot.Permissions.Names())
	require.Len(t, snapshot.Roles, 2)
	assert.Equal(t, "Cashier", snapshot.Roles[0].Name)
	assert.Equal(t, "Manager", snapshot.Roles[1].Name)
}

/*
TestEngine_NoRoles yields an empty set rather than nil.
*/
func TestEngine_NoRoles(t *testing.T) {
	engine := authz.NewEngine(cashierSource(), nil, nil)

	snapshot, err := engine.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, snapshot.Permissions)
	assert.Empty(t, snapshot.Roles)
}

/*
TestEngine_SourceError propagates storage failures.
*/
func TestEngine_SourceError(t *testing.T) {
	source := cashierSource()
	source.err = errors.New("db down")
	engine := authz.NewEngine(source, nil, nil)

	_, err := engine.Resolve(context.Background(), "a2")
	assert.Error(t, err)
}

/*
TestEngine_CacheInvalidation serves cached snapshots until invalidated.
*/
func TestEngine_CacheInvalidation(t *testing.T) {
	source := cashierSource()
	cache := newMemoryCache()
	engine := authz.NewEngine(source, cache, nil)
	ctx := context.Background()

	_, err := engine.Resolve(ctx, "a2")
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// Role change: Cashier loses sales.create
	source.grants = source.grants[1:]
	require.NoError(t, engine.Invalidate(ctx))

	set, err := engine.EffectivePermissions(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
	assert.False(t, set.Has("sales.create"))
}

/*
TestEngine_CacheFailureFallsBack reads the source when the cache errors.
*/
func TestEngine_CacheFailureFallsBack(t *testing.T) {
	source := cashierSource()
	cache := newMemoryCache()
	cache.failGet = true
	engine := authz.NewEngine(source, cache, nil)

	set, err := engine.EffectivePermissions(context.Background(), "a2")
	require.NoError(t, err)
	assert.True(t, set.Has("sales.create"))
	assert.Empty(t, cache.entries)
}

/*
TestEngine_FailedInvalidationBypassesCache stops serving cached snapshots
once a role change could not be published, until a later bump succeeds.
*/
func TestEngine_FailedInvalidationBypassesCache(t *testing.T) {
	source := cashierSource()
	cache := newMemoryCache()
	engine := authz.NewEngine(source, cache, nil)
	ctx := context.Background()

	set, err := engine.EffectivePermissions(ctx, "a2")
	require.NoError(t, err)
	require.True(t, set.Has("sales.create"))

	// Unassign Cashier while the cache refuses the bump
	source.assignments["a2"] = nil
	cache.failInvalidate = true
	assert.Error(t, engine.Invalidate(ctx))

	set, err = engine.EffectivePermissions(ctx, "a2")
	require.NoError(t, err)
	assert.False(t, set.Has("sales.create"))
	assert.Equal(t, 2, source.calls)

	_, err = engine.Resolve(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)

	cache.failInvalidate = false
	require.NoError(t, engine.Invalidate(ctx))

	_, err = engine.Resolve(ctx, "a2")
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 4, source.calls)
}
