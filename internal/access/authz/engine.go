// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
)

// # Relations

// Assignment is one (account, role) edge, carrying the role summary.
type Assignment struct {
	AccountID       string
	RoleID          string
	RoleName        string
	RoleDescription string
}

// Grant is one (role, permission) edge, carrying the permission name.
type Grant struct {
	RoleID         string
	PermissionName string
}

// Snapshot is everything an identity needs from the engine.
type Snapshot struct {
	Roles       []RoleRef     `json:"roles"`
	Permissions PermissionSet `json:"-"`
	// PermissionNames is the serialised form of Permissions used by caches.
	PermissionNames []string `json:"permissions"`
}

// Source loads the relations the engine folds over.
type Source interface {
	// AssignmentsForAccount returns the account's role edges.
	AssignmentsForAccount(context context.Context, accountID string) ([]Assignment, error)

	// GrantsForRoles returns the permission edges of the given roles.
	GrantsForRoles(context context.Context, roleIDs []string) ([]Grant, error)
}

// Cache memoises snapshots. Implementations must never return a snapshot
// computed before the last Invalidate call.
//
// Get returns a stamp identifying the cache generation it observed, even on a
// miss. Set stores under that stamp, so a snapshot loaded concurrently with an
// invalidation lands in a generation nobody reads anymore.
type Cache interface {
	Get(context context.Context, accountID string) (snapshot *Snapshot, stamp int64, err error)
	Set(context context.Context, accountID string, stamp int64, snapshot *Snapshot) error
	Invalidate(context context.Context) error
}

// # Union

/*
Union folds the assignment and grant relations into the effective set.

Only grants whose role appears in assignments contribute, so callers may pass
a superset of grants. Duplicate permissions across roles collapse to one.
*/
func Union(assignments []Assignment, grants []Grant) PermissionSet {
	held := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		held[assignment.RoleID] = struct{}{}
	}

	set := make(PermissionSet)
	for _, grant := range grants {
		if _, ok := held[grant.RoleID]; ok {
			set[grant.PermissionName] = struct{}{}
		}
	}
	return set
}

// # Engine

// Engine computes effective permissions from current data.
type Engine struct {
	source Source
	cache  Cache
	logger *slog.Logger

	// stale is set while the last Invalidate failed. Reads skip the cache
	// until an Invalidate succeeds.
	stale atomic.Bool
}

// NewEngine constructs an [Engine]. cache may be nil.
func NewEngine(source Source, cache Cache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{source: source, cache: cache, logger: logger}
}

/*
Resolve returns the roles and effective permissions of an account.

Cache failures are logged and bypassed; the relations are the source of truth.
After a failed Invalidate the cache is bypassed entirely until a later
Invalidate succeeds.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Snapshot: roles (ordered by name) and permission set
  - error: Source failures
*/
func (engine *Engine) Resolve(context context.Context, accountID string) (*Snapshot, error) {
	cacheUsable := engine.cache != nil && !engine.stale.Load()
	var stamp int64

	if cacheUsable {
		cached, observed, err := engine.cache.Get(context, accountID)
		switch {
		case err != nil:
			engine.logger.WarnContext(context, "authz_cache_get_failed", slog.Any("error", err))
			cacheUsable = false
		case cached != nil:
			return cached, nil
		default:
			stamp = observed
		}
	}

	snapshot, err := engine.load(context, accountID)
	if err != nil {
		return nil, err
	}

	if cacheUsable {
		if err := engine.cache.Set(context, accountID, stamp, snapshot); err != nil {
			engine.logger.WarnContext(context, "authz_cache_set_failed", slog.Any("error", err))
		}
	}

	return snapshot, nil
}

// EffectivePermissions returns the union of permissions over all roles of the account.
func (engine *Engine) EffectivePermissions(context context.Context, accountID string) (PermissionSet, error) {
	snapshot, err := engine.Resolve(context, accountID)
	if err != nil {
		return nil, err
	}
	return snapshot.Permissions, nil
}

/*
Invalidate discards every cached snapshot. Called after any role,
role-permission or assignment change.

On failure the engine stops reading the cache until a later call succeeds.
*/
func (engine *Engine) Invalidate(context context.Context) error {
	if engine.cache == nil {
		return nil
	}
	if err := engine.cache.Invalidate(context); err != nil {
		engine.stale.Store(true)
		return fmt.Errorf("authz_engine_invalidate_failed: %w", err)
	}
	engine.stale.Store(false)
	return nil
}

func (engine *Engine) load(context context.Context, accountID string) (*Snapshot, error) {
	assignments, err := engine.source.AssignmentsForAccount(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("authz_engine_assignments_failed: %w", err)
	}

	snapshot := &Snapshot{Roles: make([]RoleRef, 0, len(assignments))}
	if len(assignments) == 0 {
		snapshot.Permissions = PermissionSet{}
		snapshot.PermissionNames = []string{}
		return snapshot, nil
	}

	roleIDs := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		roleIDs = append(roleIDs, assignment.RoleID)
		snapshot.Roles = append(snapshot.Roles, RoleRef{
			ID:          assignment.RoleID,
			Name:        assignment.RoleName,
			Description: assignment.RoleDescription,
		})
	}
	sort.Slice(snapshot.Roles, func(i, j int) bool { return snapshot.Roles[i].Name < snapshot.Roles[j].Name })

	grants, err := engine.source.GrantsForRoles(context, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("authz_engine_grants_failed: %w", err)
	}

	snapshot.Permissions = Union(assignments, grants)
	snapshot.PermissionNames = snapshot.Permissions.Names()
	return snapshot, nil
}
