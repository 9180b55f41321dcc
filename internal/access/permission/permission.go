// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package permission holds the catalog of atomic capabilities.

Permissions are named "<resource>.<action>" (e.g. "sales.create") and grouped
by category for display. The catalog is maintained by the seed command and is
read-only over HTTP.
*/
package permission

import "time"

// Permission is one atomic capability.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Group is a category with its permissions, ordered by name.
type Group struct {
	Category    string        `json:"category"`
	Permissions []*Permission `json:"permissions"`
}

// Catalog is the grouped listing returned to clients.
type Catalog struct {
	Groups []*Group `json:"groups"`
	Total  int      `json:"total"`
}

// group folds an ordered list into category groups, preserving order.
func group(permissions []*Permission) *Catalog {
	catalog := &Catalog{Groups: make([]*Group, 0), Total: len(permissions)}

	var current *Group
	for _, permission := range permissions {
		if current == nil || current.Category != permission.Category {
			current = &Group{Category: permission.Category, Permissions: make([]*Permission, 0)}
			catalog.Groups = append(catalog.Groups, current)
		}
		current.Permissions = append(current.Permissions, permission)
	}

	return catalog
}
