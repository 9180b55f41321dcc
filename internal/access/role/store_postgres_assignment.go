// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/database/schema"
	"github.com/taibuivan/kassa/internal/platform/dberr"
)

// # Role Assignment

func (repository *PostgresRepository) AccountExists(context context.Context, accountID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL)`,
		schema.Account.Table, schema.Account.ID, schema.Account.DeletedAt)

	var exists bool
	if err := repository.pool.QueryRow(context, query, accountID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Account")
	}
	return exists, nil
}

func (repository *PostgresRepository) Exists(context context.Context, accountID, roleID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.UserRole.Table, schema.UserRole.AccountID, schema.UserRole.RoleID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, accountID, roleID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Role assignment")
	}
	return exists, nil
}

/*
Assign inserts the pair. Two concurrent assigns of the same pair race on the
primary key; the loser gets a Conflict.
*/
func (repository *PostgresRepository) Assign(context context.Context, accountID, roleID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.UserRole.Table, schema.UserRole.AccountID, schema.UserRole.RoleID)

	if _, err := repository.pool.Exec(context, query, accountID, roleID); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(msgAlreadyAssigned)
		}
		return dberr.Wrap(err, "Role assignment")
	}
	return nil
}

func (repository *PostgresRepository) Unassign(context context.Context, accountID, roleID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserRole.Table, schema.UserRole.AccountID, schema.UserRole.RoleID)

	tag, err := repository.pool.Exec(context, query, accountID, roleID)
	if err != nil {
		return false, dberr.Wrap(err, "Role assignment")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) ListForAccount(context context.Context, accountID string) ([]*Assignment, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, ur.%s
		FROM %s ur
		JOIN %s r ON r.%s = ur.%s
		WHERE ur.%s = $1
		ORDER BY r.%s ASC
	`,
		schema.Role.ID, schema.Role.Name, schema.Role.Description, schema.Role.IsSystem,
		schema.Role.CreatedAt, schema.Role.UpdatedAt, schema.UserRole.AssignedAt,
		schema.UserRole.Table,
		schema.Role.Table, schema.Role.ID, schema.UserRole.RoleID,
		schema.UserRole.AccountID,
		schema.Role.Name,
	)

	rows, err := repository.pool.Query(context, query, accountID)
	if err != nil {
		return nil, dberr.Wrap(err, "Role assignment")
	}
	defer rows.Close()

	assignments := make([]*Assignment, 0)
	roles := make([]*Role, 0)
	for rows.Next() {
		held := &Role{Permissions: make([]*permission.Permission, 0)}
		assignment := &Assignment{AccountID: accountID, Role: held}
		if err := rows.Scan(
			&held.ID, &held.Name, &held.Description, &held.IsSystem,
			&held.CreatedAt, &held.UpdatedAt, &assignment.AssignedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Role assignment")
		}
		assignments = append(assignments, assignment)
		roles = append(roles, held)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Role assignment")
	}

	if err := repository.hydratePermissions(context, roles); err != nil {
		return nil, err
	}
	return assignments, nil
}
