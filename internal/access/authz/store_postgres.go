// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/platform/database/schema"
)

// PostgresSource implements [Source] against the access schema.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a new PostgreSQL relation source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

/*
AssignmentsForAccount lists the (account, role) edges of one account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []Assignment: edges with role name and description
  - error: Database failures
*/
func (source *PostgresSource) AssignmentsForAccount(context context.Context, accountID string) ([]Assignment, error) {
	query := fmt.Sprintf(`
		SELECT ur.%s, r.%s, r.%s, COALESCE(r.%s, '')
		FROM %s ur
		JOIN %s r ON r.%s = ur.%s
		WHERE ur.%s = $1
	`,
		schema.UserRole.AccountID, schema.Role.ID, schema.Role.Name, schema.Role.Description,
		schema.UserRole.Table,
		schema.Role.Table, schema.Role.ID, schema.UserRole.RoleID,
		schema.UserRole.AccountID,
	)

	rows, err := source.pool.Query(context, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_authz_assignments_failed: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var assignment Assignment
		if err := rows.Scan(&assignment.AccountID, &assignment.RoleID, &assignment.RoleName, &assignment.RoleDescription); err != nil {
			return nil, fmt.Errorf("postgres_authz_assignments_scan_failed: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

/*
GrantsForRoles lists the (role, permission) edges for a batch of roles.

Parameters:
  - context: context.Context
  - roleIDs: []string

Returns:
  - []Grant: edges with permission names
  - error: Database failures
*/
func (source *PostgresSource) GrantsForRoles(context context.Context, roleIDs []string) ([]Grant, error) {
	query := fmt.Sprintf(`
		SELECT rp.%s, p.%s
		FROM %s rp
		JOIN %s p ON p.%s = rp.%s
		WHERE rp.%s = ANY($1::uuid[])
	`,
		schema.RolePermission.RoleID, schema.Permission.Name,
		schema.RolePermission.Table,
		schema.Permission.Table, schema.Permission.ID, schema.RolePermission.PermissionID,
		schema.RolePermission.RoleID,
	)

	rows, err := source.pool.Query(context, query, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres_authz_grants_failed: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var grant Grant
		if err := rows.Scan(&grant.RoleID, &grant.PermissionName); err != nil {
			return nil, fmt.Errorf("postgres_authz_grants_scan_failed: %w", err)
		}
		grants = append(grants, grant)
	}

	return grants, rows.Err()
}
