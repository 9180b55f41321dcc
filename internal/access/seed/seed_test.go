// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/access/role"
	"github.com/taibuivan/kassa/internal/platform/apperr"
)

// # Fakes

type memoryCatalog struct {
	byName map[string]*permission.Permission
}

func (catalog *memoryCatalog) Sync(_ context.Context, permissions []*permission.Permission) (int, error) {
	for _, record := range permissions {
		if existing, ok := catalog.byName[record.Name]; ok {
			record.ID = existing.ID
		} else {
			record.ID = "perm-" + record.Name
		}
		catalog.byName[record.Name] = record
	}
	return len(permissions), nil
}

func (catalog *memoryCatalog) ResolveByNames(_ context.Context, names []string) ([]*permission.Permission, error) {
	out := make([]*permission.Permission, 0, len(names))
	for _, name := range names {
		if record, ok := catalog.byName[name]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

type memoryRegistry struct {
	roles    map[string]*role.Role
	grants   map[string][]string
	assigned map[string]map[string]bool
}

func (registry *memoryRegistry) GetByName(_ context.Context, name string) (*role.Role, error) {
	if found, ok := registry.roles[name]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Role")
}

func (registry *memoryRegistry) Create(_ context.Context, input role.CreateInput) (*role.Role, error) {
	created := &role.Role{ID: "role-" + input.Name, Name: input.Name, IsSystem: input.IsSystem}
	registry.roles[input.Name] = created
	registry.grants[input.Name] = input.PermissionIDs
	return created, nil
}

func (registry *memoryRegistry) Assign(_ context.Context, accountID, roleID string) error {
	if registry.assigned[accountID] == nil {
		registry.assigned[accountID] = map[string]bool{}
	}
	if registry.assigned[accountID][roleID] {
		return apperr.Conflict("Role is already assigned to this account")
	}
	registry.assigned[accountID][roleID] = true
	return nil
}

type memoryProvisioner struct {
	accounts map[string]string
}

func (provisioner *memoryProvisioner) EnsureApproved(_ context.Context, email, _, _ string) (string, bool, error) {
	if id, ok := provisioner.accounts[email]; ok {
		return id, false, nil
	}
	provisioner.accounts[email] = "acct-1"
	return "acct-1", true, nil
}

func newFakes() (*memoryCatalog, *memoryRegistry, *memoryProvisioner) {
	return &memoryCatalog{byName: map[string]*permission.Permission{}},
		&memoryRegistry{roles: map[string]*role.Role{}, grants: map[string][]string{}, assigned: map[string]map[string]bool{}},
		&memoryProvisioner{accounts: map[string]string{}}
}

// # Catalog

/*
TestDefaultCatalog checks the embedded catalog content.
*/
func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Len(t, catalog.PermissionNames(), 38)
	require.Len(t, catalog.Roles, 4)

	sizes := map[string]int{}
	system := map[string]bool{}
	for _, entry := range catalog.Roles {
		sizes[entry.Name] = len(catalog.Expand(entry))
		system[entry.Name] = entry.System
	}

	assert.Equal(t, map[string]int{"Super Admin": 38, "Admin": 24, "Manager": 18, "Cashier": 8}, sizes)
	assert.Equal(t, map[string]bool{"Super Admin": true, "Admin": true, "Manager": false, "Cashier": false}, system)
}

/*
TestParseCatalog_Rejects flags unknown references and duplicates.
*/
func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown_permission", `
permissions:
  - category: Sales
    items: [{ name: sales.read }]
roles:
  - { name: Cashier, permissions: [sales.create] }
`},
		{"duplicate_permission", `
permissions:
  - category: Sales
    items: [{ name: sales.read }, { name: sales.read }]
`},
		{"duplicate_role", `
roles:
  - { name: Cashier }
  - { name: Cashier }
`},
		{"malformed", `permissions: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

// # Seeder

/*
TestRun_Idempotent creates roles once and bootstraps the admin once.
*/
func TestRun_Idempotent(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	permissions, roles, accounts := newFakes()
	seeder := NewSeeder(permissions, roles, accounts, nil)
	admin := &Admin{Email: "owner@kassa.shop", Username: "owner", Password: "S3cure!pass"}
	ctx := context.Background()

	report, err := seeder.Run(ctx, catalog, admin)
	require.NoError(t, err)

	assert.Equal(t, 38, report.Permissions)
	assert.Equal(t, []string{"Super Admin", "Admin", "Manager", "Cashier"}, report.RolesCreated)
	assert.Empty(t, report.RolesSkipped)
	assert.True(t, report.AdminCreated)
	assert.True(t, roles.assigned["acct-1"]["role-Super Admin"])
	assert.Len(t, roles.grants["Cashier"], 8)
	assert.True(t, roles.roles["Admin"].IsSystem)

	report, err = seeder.Run(ctx, catalog, admin)
	require.NoError(t, err)

	assert.Empty(t, report.RolesCreated)
	assert.Len(t, report.RolesSkipped, 4)
	assert.False(t, report.AdminCreated)
	assert.Len(t, permissions.byName, 38)
}

/*
TestRun_WithoutAdmin skips the bootstrap account.
*/
func TestRun_WithoutAdmin(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	permissions, roles, accounts := newFakes()
	report, err := NewSeeder(permissions, roles, accounts, nil).Run(context.Background(), catalog, nil)
	require.NoError(t, err)

	assert.False(t, report.AdminCreated)
	assert.Empty(t, accounts.accounts)
	assert.Empty(t, roles.assigned)
}
