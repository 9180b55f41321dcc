// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/platform/database/schema"
	"github.com/taibuivan/kassa/internal/platform/dberr"
	"github.com/taibuivan/kassa/internal/users/auth"
)

// PostgresRepository implements [Repository] on top of the lifecycle store.
type PostgresRepository struct {
	*auth.PostgresRepository
}

// NewPostgresRepository creates a PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{PostgresRepository: auth.NewPostgresRepository(pool)}
}

// likeEscaper neutralises LIKE wildcards in user-supplied search terms.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where builds the WHERE clause of a listing and its positional arguments.
func where(filter Filter) (string, []any) {
	var clause strings.Builder
	var args []any

	if filter.Deleted {
		clause.WriteString(fmt.Sprintf("WHERE %s IS NOT NULL", schema.Account.DeletedAt))
	} else {
		clause.WriteString(fmt.Sprintf("WHERE %s IS NULL", schema.Account.DeletedAt))
	}

	// Search over identity and name columns
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		clause.WriteString(fmt.Sprintf(" AND (%[1]s ILIKE $%[5]d OR %[2]s ILIKE $%[5]d OR %[3]s ILIKE $%[5]d OR %[4]s ILIKE $%[5]d)",
			schema.Account.Email, schema.Account.Username, schema.Account.FirstName, schema.Account.LastName, len(args)))
	}

	// Status filtering
	if filter.Status != "" {
		args = append(args, filter.Status)
		clause.WriteString(fmt.Sprintf(" AND %s = $%d", schema.Account.Status, len(args)))
	}

	return clause.String(), args
}

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*auth.Account, error) {
	clause, args := where(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d`,
		auth.AccountColumns, schema.Account.Table, clause,
		schema.Account.CreatedAt, schema.Account.ID, len(args)-1, len(args),
	)

	rows, err := repository.Pool().Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("account_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := []*auth.Account{}
	for rows.Next() {
		account, err := auth.ScanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("account_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (repository *PostgresRepository) Count(context context.Context, filter Filter) (int, error) {
	clause, args := where(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, schema.Account.Table, clause)

	var total int
	if err := repository.Pool().QueryRow(context, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("account_count_failed: %w", err)
	}
	return total, nil
}

func (repository *PostgresRepository) Update(context context.Context, account *auth.Account) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		schema.Account.Table,
		schema.Account.Email, schema.Account.Username, schema.Account.FirstName,
		schema.Account.LastName, schema.Account.Phone, schema.Account.AvatarURL,
		schema.Account.UpdatedAt,
		schema.Account.ID, schema.Account.DeletedAt,
		schema.Account.UpdatedAt,
	)

	err := repository.Pool().QueryRow(context, query,
		account.ID, account.Email, account.Username, account.FirstName,
		account.LastName, account.Phone, account.AvatarURL,
	).Scan(&account.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}
	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = FALSE, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.Account.Table,
		schema.Account.DeletedAt, schema.Account.IsActive, schema.Account.UpdatedAt,
		schema.Account.ID, schema.Account.DeletedAt,
	)

	tag, err := repository.Pool().Exec(context, query, id)
	if err != nil {
		return false, dberr.Wrap(err, "Account")
	}
	return tag.RowsAffected() == 1, nil
}

/*
Restore re-enters the partial unique indexes on email and username, so a
live account that took either value meanwhile surfaces as a unique violation.
*/
func (repository *PostgresRepository) Restore(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = NULL, %s = TRUE, %s = NOW()
		WHERE %s = $1 AND %s IS NOT NULL
	`,
		schema.Account.Table,
		schema.Account.DeletedAt, schema.Account.IsActive, schema.Account.UpdatedAt,
		schema.Account.ID, schema.Account.DeletedAt,
	)

	tag, err := repository.Pool().Exec(context, query, id)
	if err != nil {
		return false, dberr.Wrap(err, "Account")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) UpdatePasswordHash(context context.Context, id, hash string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.Account.Table,
		schema.Account.PasswordHash, schema.Account.UpdatedAt,
		schema.Account.ID, schema.Account.DeletedAt,
	)

	tag, err := repository.Pool().Exec(context, query, id, hash)
	if err != nil {
		return false, dberr.Wrap(err, "Account")
	}
	return tag.RowsAffected() == 1, nil
}
