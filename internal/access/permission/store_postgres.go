// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/platform/database/schema"
	"github.com/taibuivan/kassa/internal/platform/dberr"
	"github.com/taibuivan/kassa/pkg/uuid"
)

// PostgresRepository implements [Repository] on top of pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var selectColumns = strings.Join([]string{
	schema.Permission.ID, schema.Permission.Name, schema.Permission.Category,
	schema.Permission.Description, schema.Permission.CreatedAt,
}, ", ")

func (repository *PostgresRepository) ListAll(context context.Context) ([]*Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC, %s ASC`,
		selectColumns, schema.Permission.Table, schema.Permission.Category, schema.Permission.Name)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return collect(rows)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.Permission.Table, schema.Permission.ID)

	permission := &Permission{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&permission.ID, &permission.Name, &permission.Category, &permission.Description, &permission.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return permission, nil
}

func (repository *PostgresRepository) FindByIDs(context context.Context, ids []string) ([]*Permission, error) {
	if len(ids) == 0 {
		return []*Permission{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::uuid[]) ORDER BY %s ASC, %s ASC`,
		selectColumns, schema.Permission.Table, schema.Permission.ID,
		schema.Permission.Category, schema.Permission.Name)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return collect(rows)
}

func (repository *PostgresRepository) FindByNames(context context.Context, names []string) ([]*Permission, error) {
	if len(names) == 0 {
		return []*Permission{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::text[]) ORDER BY %s ASC, %s ASC`,
		selectColumns, schema.Permission.Table, schema.Permission.Name,
		schema.Permission.Category, schema.Permission.Name)

	rows, err := repository.pool.Query(context, query, names)
	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return collect(rows)
}

/*
Upsert writes a permission keyed by its unique name.

An existing row keeps its ID; category and description are refreshed.
*/
func (repository *PostgresRepository) Upsert(context context.Context, permission *Permission) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
		RETURNING %s, %s
	`,
		schema.Permission.Table,
		schema.Permission.ID, schema.Permission.Name, schema.Permission.Category, schema.Permission.Description,
		schema.Permission.Name,
		schema.Permission.Category, schema.Permission.Category,
		schema.Permission.Description, schema.Permission.Description,
		schema.Permission.ID, schema.Permission.CreatedAt,
	)

	if permission.ID == "" {
		permission.ID = uuid.New()
	}

	err := repository.pool.QueryRow(context, query,
		permission.ID, permission.Name, permission.Category, permission.Description,
	).Scan(&permission.ID, &permission.CreatedAt)
	if err != nil {
		return fmt.Errorf("permission_upsert_failed: %w", dberr.Wrap(err, "Permission"))
	}
	return nil
}

func collect(rows pgx.Rows) ([]*Permission, error) {
	defer rows.Close()

	permissions := make([]*Permission, 0)
	for rows.Next() {
		permission := &Permission{}
		if err := rows.Scan(
			&permission.ID, &permission.Name, &permission.Category, &permission.Description, &permission.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Permission")
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}
	return permissions, nil
}
