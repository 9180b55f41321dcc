// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/platform/database/schema"
	"github.com/taibuivan/kassa/internal/platform/dberr"
)

// PostgresRepository implements [Repository] and [AssignmentRepository].
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// roleSelect projects a role row plus its holder count; callers append WHERE/ORDER.
var roleSelect = fmt.Sprintf(`
	SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s,
	       (SELECT COUNT(*) FROM %s ur WHERE ur.%s = r.%s)
	FROM %s r
`,
	schema.Role.ID, schema.Role.Name, schema.Role.Description, schema.Role.IsSystem,
	schema.Role.CreatedAt, schema.Role.UpdatedAt,
	schema.UserRole.Table, schema.UserRole.RoleID, schema.Role.ID,
	schema.Role.Table,
)

func scanRole(row pgx.Row) (*Role, error) {
	role := &Role{Permissions: make([]*permission.Permission, 0)}
	err := row.Scan(
		&role.ID, &role.Name, &role.Description, &role.IsSystem,
		&role.CreatedAt, &role.UpdatedAt, &role.UsersCount,
	)
	return role, err
}

// # Reads

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Role, error) {
	query := roleSelect + fmt.Sprintf(`ORDER BY r.%s DESC, r.%s ASC LIMIT $1 OFFSET $2`,
		schema.Role.IsSystem, schema.Role.Name)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	defer rows.Close()

	roles := make([]*Role, 0, limit)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Role")
	}

	if err := repository.hydratePermissions(context, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (repository *PostgresRepository) Count(context context.Context) (int, error) {
	var total int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Role.Table)
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "Role")
	}
	return total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Role, error) {
	query := roleSelect + fmt.Sprintf(`WHERE r.%s = $1`, schema.Role.ID)

	role, err := scanRole(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}

	if err := repository.hydratePermissions(context, []*Role{role}); err != nil {
		return nil, err
	}
	return role, nil
}

func (repository *PostgresRepository) FindByName(context context.Context, name string) (*Role, error) {
	query := roleSelect + fmt.Sprintf(`WHERE r.%s = $1`, schema.Role.Name)

	role, err := scanRole(repository.pool.QueryRow(context, query, name))
	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}
	return role, nil
}

/*
hydratePermissions attaches permission records to the given roles.

One query covers every role, ordered by category then name.
*/
func (repository *PostgresRepository) hydratePermissions(context context.Context, roles []*Role) error {
	if len(roles) == 0 {
		return nil
	}

	byID := make(map[string]*Role, len(roles))
	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
		ids = append(ids, role.ID)
	}

	query := fmt.Sprintf(`
		SELECT rp.%s, p.%s, p.%s, p.%s, p.%s, p.%s
		FROM %s rp
		JOIN %s p ON p.%s = rp.%s
		WHERE rp.%s = ANY($1::uuid[])
		ORDER BY p.%s ASC, p.%s ASC
	`,
		schema.RolePermission.RoleID,
		schema.Permission.ID, schema.Permission.Name, schema.Permission.Category,
		schema.Permission.Description, schema.Permission.CreatedAt,
		schema.RolePermission.Table,
		schema.Permission.Table, schema.Permission.ID, schema.RolePermission.PermissionID,
		schema.RolePermission.RoleID,
		schema.Permission.Category, schema.Permission.Name,
	)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "Role permission")
	}
	defer rows.Close()

	for rows.Next() {
		var roleID string
		granted := &permission.Permission{}
		if err := rows.Scan(
			&roleID, &granted.ID, &granted.Name, &granted.Category, &granted.Description, &granted.CreatedAt,
		); err != nil {
			return dberr.Wrap(err, "Role permission")
		}
		if role, ok := byID[roleID]; ok {
			role.Permissions = append(role.Permissions, granted)
		}
	}
	return rows.Err()
}

// # Writes

/*
Create inserts the role row and its permission rows in one transaction.

A taken name surfaces as Conflict through the unique constraint.
*/
func (repository *PostgresRepository) Create(context context.Context, role *Role, permissionIDs []string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("role_create_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`,
		schema.Role.Table,
		schema.Role.ID, schema.Role.Name, schema.Role.Description, schema.Role.IsSystem,
		schema.Role.CreatedAt, schema.Role.UpdatedAt,
	)

	err = transaction.QueryRow(context, query, role.ID, role.Name, role.Description, role.IsSystem).
		Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}

	if err := replacePermissions(context, transaction, role.ID, permissionIDs); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("role_create_commit_failed: %w", err)
	}
	return nil
}

/*
Update writes name and description and optionally swaps the permission set.

The row update and the clear-then-insert of permission rows share a
transaction, so concurrent readers see either the old or the new set.
*/
func (repository *PostgresRepository) Update(context context.Context, role *Role, permissionIDs *[]string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("role_update_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Role.Table,
		schema.Role.Name, schema.Role.Description, schema.Role.UpdatedAt,
		schema.Role.ID,
		schema.Role.UpdatedAt,
	)

	err = transaction.QueryRow(context, query, role.ID, role.Name, role.Description).Scan(&role.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Role")
	}

	if permissionIDs != nil {
		if err := replacePermissions(context, transaction, role.ID, *permissionIDs); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("role_update_commit_failed: %w", err)
	}
	return nil
}

/*
Delete hard-deletes a role guarded in the statement itself.

System roles and roles with holders are left in place and reported as not
deleted. Permission rows go with the role through ON DELETE CASCADE.
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s r
		WHERE r.%s = $1
		  AND r.%s = FALSE
		  AND NOT EXISTS (SELECT 1 FROM %s ur WHERE ur.%s = r.%s)
	`,
		schema.Role.Table,
		schema.Role.ID,
		schema.Role.IsSystem,
		schema.UserRole.Table, schema.UserRole.RoleID, schema.Role.ID,
	)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return false, dberr.Wrap(err, "Role")
	}
	return tag.RowsAffected() == 1, nil
}

// replacePermissions clears the role's permission rows and queues the new ones.
func replacePermissions(context context.Context, transaction pgx.Tx, roleID string, permissionIDs []string) error {
	clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RolePermission.Table, schema.RolePermission.RoleID)
	if _, err := transaction.Exec(context, clearQuery, roleID); err != nil {
		return fmt.Errorf("role_permissions_clear_failed: %w", err)
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.RolePermission.Table, schema.RolePermission.RoleID, schema.RolePermission.PermissionID)

	batch := &pgx.Batch{}
	for _, permissionID := range permissionIDs {
		batch.Queue(insert, roleID, permissionID)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "Permission")
	}
	return nil
}
