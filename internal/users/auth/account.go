// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account lifecycle and caller identity.

It owns self-service registration, credential authentication, the approval
workflow and bearer token resolution. Resolution re-checks the account state on
every request, so a suspended or deleted account loses access immediately even
while its token is still within its lifetime.

# Lifecycle

	register ──► PENDING ──approve──► APPROVED ◄──reinstate── SUSPENDED
	                │                     └────────suspend────────┘
	                └──reject──► REJECTED

Soft deletion is orthogonal to status: it hides the account and deactivates it.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/taibuivan/kassa/internal/access/authz"
)

// # Domain Entities

// Status is the approval state of an account.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusSuspended Status = "SUSPENDED"
)

// Statuses lists every valid [Status].
var Statuses = []string{
	string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusSuspended),
}

// Account is a person who may sign in. PasswordHash never leaves the process.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        *string    `json:"phone"`
	AvatarURL    *string    `json:"avatarUrl"`
	Status       Status     `json:"status"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// CanSignIn reports whether the account may authenticate or resolve a token.
func (account *Account) CanSignIn() bool {
	return account.DeletedAt == nil && account.IsActive && account.Status == StatusApproved
}

// Profile is an account with its roles and effective permissions.
type Profile struct {
	*Account
	Roles       []authz.RoleRef `json:"roles"`
	Permissions []string        `json:"permissions"`
}

// NewProfile attaches an authorization snapshot to an account.
func NewProfile(account *Account, snapshot *authz.Snapshot) *Profile {
	profile := &Profile{Account: account, Roles: []authz.RoleRef{}, Permissions: []string{}}
	if snapshot != nil {
		profile.Roles = snapshot.Roles
		profile.Permissions = snapshot.Permissions.Names()
	}
	return profile
}

// NormalizeEmail trims and case-folds an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
