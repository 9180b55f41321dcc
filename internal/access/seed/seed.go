// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package seed applies the permission catalog and default roles.

Seeding is idempotent: permissions are upserted by name, roles that already
exist are left untouched, and the bootstrap administrator is created only when
no live account holds the configured email or username.
*/
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/access/role"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/pkg/pointer"
)

// SuperAdminRole is granted to the bootstrap administrator.
const SuperAdminRole = "Super Admin"

// # Contracts

// PermissionCatalog writes and resolves catalog entries.
type PermissionCatalog interface {
	Sync(context context.Context, permissions []*permission.Permission) (int, error)
	ResolveByNames(context context.Context, names []string) ([]*permission.Permission, error)
}

// RoleRegistry creates roles and assigns them.
type RoleRegistry interface {
	GetByName(context context.Context, name string) (*role.Role, error)
	Create(context context.Context, input role.CreateInput) (*role.Role, error)
	Assign(context context.Context, accountID, roleID string) error
}

// AccountProvisioner creates an approved, active account unless one exists.
type AccountProvisioner interface {
	EnsureApproved(context context.Context, email, username, secret string) (accountID string, created bool, err error)
}

// Admin holds the bootstrap administrator credentials.
type Admin struct {
	Email    string
	Username string
	Password string
}

// Report summarises a seeding run.
type Report struct {
	Permissions  int
	RolesCreated []string
	RolesSkipped []string
	AdminCreated bool
}

// Seeder applies a [Catalog].
type Seeder struct {
	permissions PermissionCatalog
	roles       RoleRegistry
	accounts    AccountProvisioner
	logger      *slog.Logger
}

// NewSeeder constructs a [Seeder]. accounts may be nil when no admin is seeded.
func NewSeeder(permissions PermissionCatalog, roles RoleRegistry, accounts AccountProvisioner, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{permissions: permissions, roles: roles, accounts: accounts, logger: logger}
}

/*
Run applies the catalog and optionally bootstraps an administrator.

Parameters:
  - context: context.Context
  - catalog: *Catalog
  - admin: *Admin (nil skips the bootstrap account)

Returns:
  - *Report: What was written and what was skipped
  - error: The first failure; earlier steps stay applied
*/
func (seeder *Seeder) Run(context context.Context, catalog *Catalog, admin *Admin) (*Report, error) {
	report := &Report{RolesCreated: make([]string, 0), RolesSkipped: make([]string, 0)}

	written, err := seeder.permissions.Sync(context, catalog.PermissionRecords())
	if err != nil {
		return report, fmt.Errorf("seed_permissions_failed: %w", err)
	}
	report.Permissions = written

	for _, entry := range catalog.Roles {
		created, err := seeder.ensureRole(context, catalog, entry)
		if err != nil {
			return report, err
		}
		if created {
			report.RolesCreated = append(report.RolesCreated, entry.Name)
		} else {
			report.RolesSkipped = append(report.RolesSkipped, entry.Name)
		}
	}

	if admin != nil && seeder.accounts != nil {
		created, err := seeder.ensureAdmin(context, admin)
		if err != nil {
			return report, err
		}
		report.AdminCreated = created
	}

	seeder.logger.InfoContext(context, "seed_completed",
		slog.Int("permissions", report.Permissions),
		slog.Any("roles_created", report.RolesCreated),
		slog.Any("roles_skipped", report.RolesSkipped),
		slog.Bool("admin_created", report.AdminCreated),
	)
	return report, nil
}

func (seeder *Seeder) ensureRole(context context.Context, catalog *Catalog, entry RoleEntry) (bool, error) {
	_, err := seeder.roles.GetByName(context, entry.Name)
	if err == nil {
		return false, nil
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return false, fmt.Errorf("seed_role_lookup_failed: %w", err)
	}

	names := catalog.Expand(entry)
	resolved, err := seeder.permissions.ResolveByNames(context, names)
	if err != nil {
		return false, fmt.Errorf("seed_role_permissions_failed: %w", err)
	}

	ids := make([]string, 0, len(resolved))
	for _, record := range resolved {
		ids = append(ids, record.ID)
	}

	var description *string
	if entry.Description != "" {
		description = pointer.To(entry.Description)
	}

	if _, err := seeder.roles.Create(context, role.CreateInput{
		Name:          entry.Name,
		Description:   description,
		PermissionIDs: ids,
		IsSystem:      entry.System,
	}); err != nil {
		return false, fmt.Errorf("seed_role_create_failed: %w", err)
	}
	return true, nil
}

func (seeder *Seeder) ensureAdmin(context context.Context, admin *Admin) (bool, error) {
	accountID, created, err := seeder.accounts.EnsureApproved(context, admin.Email, admin.Username, admin.Password)
	if err != nil {
		return false, fmt.Errorf("seed_admin_failed: %w", err)
	}

	superAdmin, err := seeder.roles.GetByName(context, SuperAdminRole)
	if err != nil {
		return false, fmt.Errorf("seed_admin_role_failed: %w", err)
	}

	err = seeder.roles.Assign(context, accountID, superAdmin.ID)
	if err != nil && !apperr.HasCode(err, apperr.CodeConflict) {
		return false, fmt.Errorf("seed_admin_assign_failed: %w", err)
	}
	return created, nil
}
