// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/users/auth"
	"github.com/taibuivan/kassa/pkg/pagination"
	"github.com/taibuivan/kassa/pkg/pointer"
)

const unknownID = "0190a6d4-58b8-7c3e-9a51-2f0c9d7e4b11"

func usernames(accounts []*auth.Account) []string {
	names := make([]string, 0, len(accounts))
	for _, account := range accounts {
		names = append(names, account.Username)
	}
	return names
}

// # Queries

/*
TestList_Filters covers search, status, deletion and paging.
*/
func TestList_Filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.approved(t, "alice")
	bob := f.approved(t, "bob")
	f.approved(t, "carol")
	_, err := f.lifecycle.Register(ctx, auth.RegisterInput{
		Email: "dave@kassa.shop", Username: "dave", Password: "P@ssw0rd1", FirstName: "Dave", LastName: "Stock",
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, "admin", bob.ID))

	page := pagination.Params{Page: 1, Limit: 10}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"live_newest_first", Filter{}, []string{"dave", "carol", "alice"}},
		{"search_case_insensitive", Filter{Search: "ALI"}, []string{"alice"}},
		{"search_last_name", Filter{Search: "stock"}, []string{"dave"}},
		{"status", Filter{Status: auth.StatusPending}, []string{"dave"}},
		{"deleted", Filter{Deleted: true}, []string{"bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, total, err := f.service.List(ctx, tt.filter, page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, usernames(accounts))
			assert.Equal(t, len(tt.want), total)
		})
	}

	accounts, total, err := f.service.List(ctx, Filter{}, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(accounts))
	assert.Equal(t, 3, total)

	_, _, err = f.service.List(ctx, Filter{Status: "ARCHIVED"}, page)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

/*
TestGet_WithRoles attaches the account's roles and permissions.
*/
func TestGet_WithRoles(t *testing.T) {
	f := setup(t)
	alice := f.approved(t, "alice")
	f.roles[alice.ID] = &authz.Snapshot{
		Roles:       []authz.RoleRef{{ID: "r1", Name: "Manager"}},
		Permissions: authz.NewPermissionSet("products.update", "reports.read"),
	}

	profile, err := f.service.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Manager", profile.Roles[0].Name)
	assert.Equal(t, []string{"products.update", "reports.read"}, profile.Permissions)

	_, err = f.service.Get(context.Background(), unknownID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

// # Commands

/*
TestUpdate edits a partial profile and rejects taken identities.
*/
func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")
	f.approved(t, "bob")

	updated, err := f.service.Update(ctx, alice.ID, UpdateInput{
		Email:     pointer.To(" Alice.New@Kassa.shop "),
		LastName:  pointer.To("Register"),
		Phone:     pointer.To("+4915112345678"),
		AvatarURL: pointer.To(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@kassa.shop", updated.Email)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Register", updated.LastName)
	assert.Equal(t, "+4915112345678", *updated.Phone)
	assert.Nil(t, updated.AvatarURL)

	_, err = f.service.Update(ctx, alice.ID, UpdateInput{Username: pointer.To("bob")})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))

	_, err = f.service.Update(ctx, alice.ID, UpdateInput{FirstName: pointer.To("A")})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = f.service.Update(ctx, unknownID, UpdateInput{})
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

/*
TestSuspendReinstate blocks sign-in while suspended.
*/
func TestSuspendReinstate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")

	suspended, err := f.service.Suspend(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusSuspended, suspended.Status)
	assert.False(t, suspended.IsActive)

	_, err = f.lifecycle.Authenticate(ctx, "alice", "P@ssw0rd1")
	assert.Equal(t, auth.MsgBlocked, apperr.As(err).Message)

	_, err = f.service.Suspend(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, "INVALID_STATE"))

	reinstated, err := f.service.Reinstate(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusApproved, reinstated.Status)
	assert.True(t, reinstated.IsActive)

	_, err = f.lifecycle.Authenticate(ctx, "alice", "P@ssw0rd1")
	assert.NoError(t, err)

	_, err = f.service.Reinstate(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, "INVALID_STATE"))
}

/*
TestDeleteRestore hides the account, frees its identity and brings it back.
*/
func TestDeleteRestore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")

	assert.True(t, apperr.HasCode(f.service.Delete(ctx, alice.ID, alice.ID), "INVALID_STATE"))

	require.NoError(t, f.service.Delete(ctx, "admin", alice.ID))
	assert.True(t, apperr.HasCode(f.service.Delete(ctx, "admin", alice.ID), "NOT_FOUND"))

	_, err := f.lifecycle.Authenticate(ctx, "alice", "P@ssw0rd1")
	assert.Equal(t, auth.MsgInvalidCredentials, apperr.As(err).Message)

	_, err = f.service.Get(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	restored, err := f.service.Restore(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.True(t, restored.IsActive)
	assert.Equal(t, auth.StatusApproved, restored.Status)

	_, err = f.service.Restore(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, "INVALID_STATE"))

	_, err = f.service.Restore(ctx, unknownID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

/*
TestRestore_IdentityRetaken refuses to resurrect a duplicate identity.
*/
func TestRestore_IdentityRetaken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")
	require.NoError(t, f.service.Delete(ctx, "admin", alice.ID))

	// The released email and username can be registered again
	f.approved(t, "alice")

	_, err := f.service.Restore(ctx, alice.ID)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

/*
TestRestore_KeepsStatus reactivates the account but leaves a suspended
account suspended, so it still cannot sign in.
*/
func TestRestore_KeepsStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")

	_, err := f.service.Suspend(ctx, alice.ID)
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, "admin", alice.ID))

	restored, err := f.service.Restore(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusSuspended, restored.Status)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.DeletedAt)

	_, err = f.lifecycle.Authenticate(ctx, "alice", "P@ssw0rd1")
	assert.Error(t, err)
}

/*
TestChangePassword replaces the secret used for sign-in.
*/
func TestChangePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.approved(t, "alice")

	err := f.service.ChangePassword(ctx, alice.ID, "weakpass")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	require.NoError(t, f.service.ChangePassword(ctx, alice.ID, "N3w!Secret"))

	_, err = f.lifecycle.Authenticate(ctx, "alice", "P@ssw0rd1")
	assert.Equal(t, auth.MsgInvalidCredentials, apperr.As(err).Message)

	_, err = f.lifecycle.Authenticate(ctx, "alice", "N3w!Secret")
	assert.NoError(t, err)

	err = f.service.ChangePassword(ctx, unknownID, "N3w!Secret")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}
