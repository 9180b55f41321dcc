// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/pkg/pointer"
)

// Wildcard in a role's permission list grants the whole catalog.
const Wildcard = "*"

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the declarative content applied by the seeder.
type Catalog struct {
	Permissions []CategoryEntry `yaml:"permissions"`
	Roles       []RoleEntry     `yaml:"roles"`
}

// CategoryEntry groups permission entries under a category.
type CategoryEntry struct {
	Category string            `yaml:"category"`
	Items    []PermissionEntry `yaml:"items"`
}

// PermissionEntry is one catalog permission.
type PermissionEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// RoleEntry is a default role and the names of its permissions.
type RoleEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	System      bool     `yaml:"system"`
	Permissions []string `yaml:"permissions"`
}

// DefaultCatalog parses the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

/*
ParseCatalog decodes and checks a YAML catalog.

Every role permission must name a catalog entry or be the wildcard, and
permission and role names must be unique.
*/
func ParseCatalog(data []byte) (*Catalog, error) {
	catalog := &Catalog{}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("seed_catalog_parse_failed: %w", err)
	}

	known := make(map[string]struct{})
	for _, category := range catalog.Permissions {
		for _, item := range category.Items {
			if _, dup := known[item.Name]; dup {
				return nil, fmt.Errorf("seed_catalog_invalid: duplicate permission %q", item.Name)
			}
			known[item.Name] = struct{}{}
		}
	}

	roles := make(map[string]struct{})
	for _, role := range catalog.Roles {
		if _, dup := roles[role.Name]; dup {
			return nil, fmt.Errorf("seed_catalog_invalid: duplicate role %q", role.Name)
		}
		roles[role.Name] = struct{}{}

		for _, name := range role.Permissions {
			if name == Wildcard {
				continue
			}
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("seed_catalog_invalid: role %q references unknown permission %q", role.Name, name)
			}
		}
	}

	return catalog, nil
}

// PermissionRecords flattens the catalog into records ready for upsert.
func (catalog *Catalog) PermissionRecords() []*permission.Permission {
	records := make([]*permission.Permission, 0)
	for _, category := range catalog.Permissions {
		for _, item := range category.Items {
			var description *string
			if item.Description != "" {
				description = pointer.To(item.Description)
			}
			records = append(records, &permission.Permission{
				Name:        item.Name,
				Category:    category.Category,
				Description: description,
			})
		}
	}
	return records
}

// PermissionNames lists every catalog permission name in declaration order.
func (catalog *Catalog) PermissionNames() []string {
	names := make([]string, 0)
	for _, category := range catalog.Permissions {
		for _, item := range category.Items {
			names = append(names, item.Name)
		}
	}
	return names
}

// Expand resolves the wildcard of a role against the catalog.
func (catalog *Catalog) Expand(role RoleEntry) []string {
	for _, name := range role.Permissions {
		if name == Wildcard {
			return catalog.PermissionNames()
		}
	}
	return role.Permissions
}
