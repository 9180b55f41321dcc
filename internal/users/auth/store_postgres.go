// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/platform/database/schema"
	"github.com/taibuivan/kassa/internal/platform/dberr"
)

// # Account Repository

// PostgresRepository implements [AccountRepository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL implementation of [AccountRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Pool exposes the connection pool to repositories that extend this one.
func (repository *PostgresRepository) Pool() *pgxpool.Pool {
	return repository.pool
}

// AccountColumns is the projection matched by [ScanAccount].
var AccountColumns = strings.Join(schema.Account.Columns(), ", ")

// ScanAccount reads one row projected with [AccountColumns].
func ScanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Username, &account.PasswordHash,
		&account.FirstName, &account.LastName, &account.Phone, &account.AvatarURL,
		&account.Status, &account.IsActive, &account.LastLoginAt,
		&account.CreatedAt, &account.UpdatedAt, &account.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		AccountColumns, schema.Account.Table, schema.Account.ID, schema.Account.DeletedAt)

	account, err := ScanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}
	return account, nil
}

/*
FindByIdentifier resolves a login identifier.

The email column holds folded values, so the identifier is folded for that side
only; usernames stay case-sensitive.
*/
func (repository *PostgresRepository) FindByIdentifier(context context.Context, identifier string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (%s = $1 OR %s = $2) AND %s IS NULL
		ORDER BY (%s = $1) DESC
		LIMIT 1
	`,
		AccountColumns, schema.Account.Table,
		schema.Account.Email, schema.Account.Username, schema.Account.DeletedAt,
		schema.Account.Email,
	)

	account, err := ScanAccount(repository.pool.QueryRow(context, query, NormalizeEmail(identifier), identifier))
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}
	return account, nil
}

func (repository *PostgresRepository) IdentityTaken(context context.Context, email, username string) (bool, bool, error) {
	query := fmt.Sprintf(`
		SELECT
			EXISTS (SELECT 1 FROM %[1]s WHERE %[2]s = $1 AND %[4]s IS NULL),
			EXISTS (SELECT 1 FROM %[1]s WHERE %[3]s = $2 AND %[4]s IS NULL)
	`,
		schema.Account.Table, schema.Account.Email, schema.Account.Username, schema.Account.DeletedAt,
	)

	var emailTaken, usernameTaken bool
	if err := repository.pool.QueryRow(context, query, email, username).Scan(&emailTaken, &usernameTaken); err != nil {
		return false, false, dberr.Wrap(err, "Account")
	}
	return emailTaken, usernameTaken, nil
}

/*
Create inserts a new account row.

The partial unique indexes on email and username back the service's
up-front check, so a concurrent duplicate still surfaces as Conflict.
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s
	`,
		schema.Account.Table,
		schema.Account.ID, schema.Account.Email, schema.Account.Username, schema.Account.PasswordHash,
		schema.Account.FirstName, schema.Account.LastName, schema.Account.Phone, schema.Account.AvatarURL,
		schema.Account.Status, schema.Account.IsActive,
		schema.Account.CreatedAt, schema.Account.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		account.ID, account.Email, account.Username, account.PasswordHash,
		account.FirstName, account.LastName, account.Phone, account.AvatarURL,
		account.Status, account.IsActive,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}
	return nil
}

/*
TransitionStatus is a single-statement compare-and-swap on the status column.

Two concurrent approvals of the same account cannot both match the PENDING
predicate; the second reports false.
*/
func (repository *PostgresRepository) TransitionStatus(context context.Context, id string, from, to Status, isActive bool) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s IS NULL
	`,
		schema.Account.Table,
		schema.Account.Status, schema.Account.IsActive, schema.Account.UpdatedAt,
		schema.Account.ID, schema.Account.Status, schema.Account.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id, from, to, isActive)
	if err != nil {
		return false, dberr.Wrap(err, "Account")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) TouchLastLogin(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.Account.Table, schema.Account.LastLoginAt, schema.Account.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return dberr.Wrap(err, "Account")
	}
	return nil
}
