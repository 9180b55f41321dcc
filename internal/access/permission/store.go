// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import "context"

// Repository defines the persistence contract for the permission catalog.
type Repository interface {
	// ListAll returns every permission ordered by category, then name.
	ListAll(context context.Context) ([]*Permission, error)

	// FindByID returns a single permission or NotFound.
	FindByID(context context.Context, id string) (*Permission, error)

	// FindByIDs returns the permissions matching ids. Unknown ids are skipped.
	FindByIDs(context context.Context, ids []string) ([]*Permission, error)

	// FindByNames returns the permissions matching names. Unknown names are skipped.
	FindByNames(context context.Context, names []string) ([]*Permission, error)

	// Upsert inserts the permission or refreshes category and description by name.
	// The stored ID is written back to permission.
	Upsert(context context.Context, permission *Permission) error
}
