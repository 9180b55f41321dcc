// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import "context"

// Repository defines persistence for roles and their permission sets.
type Repository interface {
	// List returns one page of roles ordered system first, then by name.
	List(context context.Context, limit, offset int) ([]*Role, error)

	// Count returns the total number of roles.
	Count(context context.Context) (int, error)

	// FindByID returns a role with its permissions and holder count.
	FindByID(context context.Context, id string) (*Role, error)

	// FindByName returns the role row without relations, or NotFound.
	FindByName(context context.Context, name string) (*Role, error)

	// Create inserts the role and its permission rows atomically.
	Create(context context.Context, role *Role, permissionIDs []string) error

	// Update writes the role row and, when permissionIDs is non-nil, replaces
	// the permission set in the same transaction.
	Update(context context.Context, role *Role, permissionIDs *[]string) error

	// Delete removes a non-system role that has no holders. It reports false
	// when the guard prevented the delete.
	Delete(context context.Context, id string) (bool, error)
}

// AssignmentRepository defines persistence for (account, role) pairs.
type AssignmentRepository interface {
	// AccountExists reports whether a non-deleted account has this id.
	AccountExists(context context.Context, accountID string) (bool, error)

	// Exists reports whether the pair is assigned.
	Exists(context context.Context, accountID, roleID string) (bool, error)

	// Assign inserts the pair. A duplicate yields a Conflict.
	Assign(context context.Context, accountID, roleID string) error

	// Unassign removes the pair and reports whether it existed.
	Unassign(context context.Context, accountID, roleID string) (bool, error)

	// ListForAccount returns the roles held by the account, ordered by name.
	ListForAccount(context context.Context, accountID string) ([]*Assignment, error)
}
