// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account implements administrative account management.

Operators list and inspect accounts, correct profile data, suspend and
reinstate approved accounts, soft-delete and restore them and reset their
secrets. Self-service registration, sign-in and the approval workflow live in
package auth; this package reuses its entity and storage projection.

# Permissions
  - users.read   : list and inspect
  - users.create : create pre-approved accounts
  - users.update : edit, suspend, reinstate, restore, reset password
  - users.delete : soft delete
*/
package account

import "github.com/taibuivan/kassa/internal/users/auth"

// # Permission Names

const (
	PermissionRead   = "users.read"
	PermissionCreate = "users.create"
	PermissionUpdate = "users.update"
	PermissionDelete = "users.delete"
)

// # Messages

const (
	msgSelfDelete      = "You cannot delete your own account"
	msgNotDeleted      = "Account is not deleted"
	msgIdentityRetaken = "Email or username was taken while the account was deleted"
)

// # Query Types

// Filter narrows an account listing.
type Filter struct {
	// Search matches email, username, first or last name, case-insensitively.
	Search string
	// Status keeps only accounts in this status when set.
	Status auth.Status
	// Deleted lists soft-deleted accounts instead of live ones.
	Deleted bool
}

// UpdateInput carries a partial profile edit. Nil fields are left unchanged.
type UpdateInput struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}
