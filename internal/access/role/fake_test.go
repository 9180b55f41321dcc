// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"sort"
	"sync"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/platform/apperr"
)

// memoryStore implements Repository and AssignmentRepository in memory.
type memoryStore struct {
	mu         sync.Mutex
	roles      map[string]*Role
	grants     map[string][]string
	holders    map[string]map[string]bool // roleID -> accountID set
	accounts   map[string]bool
	catalog    map[string]*permission.Permission
	countCalls int
	listCalls  int
}

func newMemoryStore(catalog ...*permission.Permission) *memoryStore {
	store := &memoryStore{
		roles:    map[string]*Role{},
		grants:   map[string][]string{},
		holders:  map[string]map[string]bool{},
		accounts: map[string]bool{},
		catalog:  map[string]*permission.Permission{},
	}
	for _, entry := range catalog {
		store.catalog[entry.ID] = entry
	}
	return store
}

func (store *memoryStore) view(role *Role) *Role {
	copied := *role
	copied.Permissions = make([]*permission.Permission, 0)
	for _, id := range store.grants[role.ID] {
		copied.Permissions = append(copied.Permissions, store.catalog[id])
	}
	copied.UsersCount = len(store.holders[role.ID])
	return &copied
}

func (store *memoryStore) List(_ context.Context, limit, offset int) ([]*Role, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.listCalls++

	all := make([]*Role, 0, len(store.roles))
	for _, role := range store.roles {
		all = append(all, store.view(role))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsSystem != all[j].IsSystem {
			return all[i].IsSystem
		}
		return all[i].Name < all[j].Name
	})

	if offset >= len(all) {
		return []*Role{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (store *memoryStore) Count(context.Context) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.countCalls++
	return len(store.roles), nil
}

func (store *memoryStore) FindByID(_ context.Context, id string) (*Role, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	role, ok := store.roles[id]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return store.view(role), nil
}

func (store *memoryStore) FindByName(_ context.Context, name string) (*Role, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, role := range store.roles {
		if role.Name == name {
			return store.view(role), nil
		}
	}
	return nil, apperr.NotFound("Role")
}

func (store *memoryStore) Create(_ context.Context, role *Role, permissionIDs []string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.roles {
		if existing.Name == role.Name {
			return apperr.Conflict("Role already exists")
		}
	}
	stored := *role
	store.roles[role.ID] = &stored
	store.grants[role.ID] = append([]string(nil), permissionIDs...)
	return nil
}

func (store *memoryStore) Update(_ context.Context, role *Role, permissionIDs *[]string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	stored, ok := store.roles[role.ID]
	if !ok {
		return apperr.NotFound("Role")
	}
	stored.Name = role.Name
	stored.Description = role.Description
	if permissionIDs != nil {
		store.grants[role.ID] = append([]string(nil), (*permissionIDs)...)
	}
	return nil
}

func (store *memoryStore) Delete(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	role, ok := store.roles[id]
	if !ok || role.IsSystem || len(store.holders[id]) > 0 {
		return false, nil
	}
	delete(store.roles, id)
	delete(store.grants, id)
	return true, nil
}

func (store *memoryStore) AccountExists(_ context.Context, accountID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.accounts[accountID], nil
}

func (store *memoryStore) Exists(_ context.Context, accountID, roleID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.holders[roleID][accountID], nil
}

func (store *memoryStore) Assign(_ context.Context, accountID, roleID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.holders[roleID] == nil {
		store.holders[roleID] = map[string]bool{}
	}
	if store.holders[roleID][accountID] {
		return apperr.Conflict(msgAlreadyAssigned)
	}
	store.holders[roleID][accountID] = true
	return nil
}

func (store *memoryStore) Unassign(_ context.Context, accountID, roleID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.holders[roleID][accountID] {
		return false, nil
	}
	delete(store.holders[roleID], accountID)
	return true, nil
}

func (store *memoryStore) ListForAccount(_ context.Context, accountID string) ([]*Assignment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]*Assignment, 0)
	for roleID, accounts := range store.holders {
		if accounts[accountID] {
			out = append(out, &Assignment{AccountID: accountID, Role: store.view(store.roles[roleID])})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role.Name < out[j].Role.Name })
	return out, nil
}

// catalogResolver resolves permissions from the store's catalog.
type catalogResolver struct{ store *memoryStore }

func (resolver catalogResolver) ResolveByIDs(_ context.Context, ids []string) ([]*permission.Permission, error) {
	out := make([]*permission.Permission, 0, len(ids))
	for _, id := range ids {
		if entry, ok := resolver.store.catalog[id]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

// countingInvalidator records cache invalidations.
type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (invalidator *countingInvalidator) Invalidate(context.Context) error {
	invalidator.mu.Lock()
	defer invalidator.mu.Unlock()
	invalidator.calls++
	return nil
}
