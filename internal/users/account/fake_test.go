// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/sec"
	"github.com/taibuivan/kassa/internal/users/auth"
	"github.com/taibuivan/kassa/pkg/pointer"
)

// memoryStore backs both the lifecycle and the administrative repository.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
	clock    time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: map[string]*auth.Account{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (store *memoryStore) tick() time.Time {
	store.clock = store.clock.Add(time.Minute)
	return store.clock
}

func (store *memoryStore) taken(id, email, username string) bool {
	for _, account := range store.accounts {
		if account.ID != id && account.DeletedAt == nil && (account.Email == email || account.Username == username) {
			return true
		}
	}
	return false
}

func (store *memoryStore) FindByID(_ context.Context, id string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.accounts[id]
	if !ok || account.DeletedAt != nil {
		return nil, apperr.NotFound("Account")
	}
	copied := *account
	return &copied, nil
}

func (store *memoryStore) FindByIdentifier(_ context.Context, identifier string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, account := range store.accounts {
		if account.DeletedAt == nil && (account.Email == auth.NormalizeEmail(identifier) || account.Username == identifier) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (store *memoryStore) IdentityTaken(_ context.Context, email, username string) (bool, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.taken("", email, ""), store.taken("", "", username), nil
}

func (store *memoryStore) Create(_ context.Context, account *auth.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.taken(account.ID, account.Email, account.Username) {
		return apperr.Conflict("Account already exists")
	}
	account.CreatedAt = store.tick()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	store.accounts[account.ID] = &copied
	return nil
}

func (store *memoryStore) TransitionStatus(_ context.Context, id string, from, to auth.Status, isActive bool) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.accounts[id]
	if !ok || account.DeletedAt != nil || account.Status != from {
		return false, nil
	}
	account.Status, account.IsActive = to, isActive
	return true, nil
}

func (store *memoryStore) TouchLastLogin(context.Context, string) error { return nil }

func (store *memoryStore) List(_ context.Context, filter Filter, limit, offset int) ([]*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := []*auth.Account{}
	for _, account := range store.accounts {
		if matches(account, filter) {
			copied := *account
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if offset >= len(matched) {
		return []*auth.Account{}, nil
	}
	return matched[offset:min(offset+limit, len(matched))], nil
}

func (store *memoryStore) Count(_ context.Context, filter Filter) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	total := 0
	for _, account := range store.accounts {
		if matches(account, filter) {
			total++
		}
	}
	return total, nil
}

func matches(account *auth.Account, filter Filter) bool {
	if (account.DeletedAt != nil) != filter.Deleted {
		return false
	}
	if filter.Status != "" && account.Status != filter.Status {
		return false
	}
	if filter.Search == "" {
		return true
	}
	needle := strings.ToLower(filter.Search)
	for _, field := range []string{account.Email, account.Username, account.FirstName, account.LastName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (store *memoryStore) Update(_ context.Context, account *auth.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	stored, ok := store.accounts[account.ID]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Account")
	}
	if store.taken(account.ID, account.Email, account.Username) {
		return apperr.Conflict("Account already exists")
	}
	stored.Email, stored.Username = account.Email, account.Username
	stored.FirstName, stored.LastName = account.FirstName, account.LastName
	stored.Phone, stored.AvatarURL = account.Phone, account.AvatarURL
	stored.UpdatedAt = store.tick()
	account.UpdatedAt = stored.UpdatedAt
	return nil
}

func (store *memoryStore) SoftDelete(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.accounts[id]
	if !ok || account.DeletedAt != nil {
		return false, nil
	}
	account.DeletedAt = pointer.To(store.tick())
	account.IsActive = false
	return true, nil
}

func (store *memoryStore) Restore(_ context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.accounts[id]
	if !ok || account.DeletedAt == nil {
		return false, nil
	}
	if store.taken(account.ID, account.Email, account.Username) {
		return false, apperr.Conflict("Account already exists")
	}
	account.DeletedAt = nil
	account.IsActive = true
	return true, nil
}

func (store *memoryStore) UpdatePasswordHash(_ context.Context, id, hash string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.accounts[id]
	if !ok || account.DeletedAt != nil {
		return false, nil
	}
	account.PasswordHash = hash
	return true, nil
}

// rolesByAccount resolves a fixed snapshot per account.
type rolesByAccount map[string]*authz.Snapshot

func (roles rolesByAccount) Resolve(_ context.Context, accountID string) (*authz.Snapshot, error) {
	return roles[accountID], nil
}

type fixture struct {
	store     *memoryStore
	roles     rolesByAccount
	lifecycle *auth.Service
	service   *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService("0123456789abcdef0123456789abcdef", "kassa-test", time.Hour)
	require.NoError(t, err)
	hasher := sec.NewHasher(bcrypt.MinCost)

	f := &fixture{store: newMemoryStore(), roles: rolesByAccount{}}
	f.lifecycle = auth.NewService(f.store, tokens, hasher, f.roles, nil)
	f.service = NewService(f.store, f.lifecycle, hasher, f.roles, nil)
	return f
}

// approved creates an account that can sign in.
func (f *fixture) approved(t *testing.T, username string) *auth.Account {
	t.Helper()
	account, err := f.service.Create(context.Background(), auth.RegisterInput{
		Email:     username + "@kassa.shop",
		Username:  username,
		Password:  "P@ssw0rd1",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Clerk",
	})
	require.NoError(t, err)
	return account
}
