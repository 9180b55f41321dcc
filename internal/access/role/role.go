// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package role manages named permission bundles and their assignment to accounts.

A role groups permissions from the catalog. System roles (Super Admin, Admin)
are created by the seed command and are immutable at runtime. A role held by
any account cannot be deleted until every holder is unassigned.

Every mutation in this package invalidates the authorization cache so that
effective permissions are never served from before the change.
*/
package role

import (
	"time"

	"github.com/taibuivan/kassa/internal/access/permission"
)

// Role is a named bundle of permissions.
type Role struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description *string                  `json:"description"`
	IsSystem    bool                     `json:"isSystem"`
	Permissions []*permission.Permission `json:"permissions"`
	UsersCount  int                      `json:"usersCount"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// Assignment is a role held by an account.
type Assignment struct {
	AccountID  string    `json:"accountId"`
	Role       *Role     `json:"role"`
	AssignedAt time.Time `json:"assignedAt"`
}

// CreateInput carries the fields of a new role.
type CreateInput struct {
	Name          string
	Description   *string
	PermissionIDs []string

	// IsSystem is honoured only for callers inside the process (seed).
	IsSystem bool
}

// UpdateInput is a partial update. Nil fields are left untouched.
//
// A non-nil PermissionIDs replaces the whole permission set, so a pointer to an
// empty slice strips every permission.
type UpdateInput struct {
	Name          *string
	Description   *string
	PermissionIDs *[]string
}

const (
	nameMinLength        = 2
	nameMaxLength        = 50
	descriptionMaxLength = 255
)
