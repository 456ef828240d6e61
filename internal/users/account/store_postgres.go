// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

// PostgreSQL implementation of the account management repository.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/users/auth"
	"github.com/eduvia/backend/pkg/pagination"
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique-constraint violations.
const uniqueViolationCode = "23505"

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
FindByID retrieves an account record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	const query = `
		SELECT id, name, email, passwordhash, role, isverified, avatarid, avatarurl, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	account := &auth.Account{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.IsVerified,
		&account.AvatarID,
		&account.AvatarURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_failed: %w", err)
	}

	return account, nil
}

/*
Update modifies the mutable profile fields of an existing account.

Description: Covers name, email, and avatar reference. The email unique
constraint is mapped to a client-safe Conflict.

Parameters:
  - context: context.Context
  - account: *auth.Account

Returns:
  - error: apperr.Conflict, apperr.NotFound, or database errors
*/
func (repository *PostgresAccountRepository) Update(context context.Context, account *auth.Account) error {
	const query = `
		UPDATE users.account
		SET name = $2, email = $3, avatarid = $4, avatarurl = $5, updatedat = $6
		WHERE id = $1`

	account.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		account.ID,
		account.Name,
		account.Email,
		account.AvatarID,
		account.AvatarURL,
		account.UpdatedAt,
	)

	if err != nil {
		// Map the unique-constraint violation to a client-safe Conflict
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolationCode {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
UpdatePassword replaces only the account's password hash.

Parameters:
  - context: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, accountID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, accountID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
List returns a page of accounts ordered by creation time (newest first)
together with the total account count.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.Account: Page of accounts
  - int: Total count across all pages
  - error: Database errors
*/
func (repository *PostgresAccountRepository) List(context context.Context, params pagination.Params) ([]auth.Account, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users.account`

	// Resolve the total first so the metadata is consistent with the page
	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	const listQuery = `
		SELECT id, name, email, passwordhash, role, isverified, avatarid, avatarurl, createdat, updatedat
		FROM users.account
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, listQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]auth.Account, 0, params.Limit)
	for rows.Next() {
		var account auth.Account
		err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.Role,
			&account.IsVerified,
			&account.AvatarID,
			&account.AvatarURL,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_rows_failed: %w", err)
	}

	return accounts, total, nil
}

/*
UpdateRole replaces the account's authorization role.

Parameters:
  - context: context.Context
  - accountID: string
  - role: sec.UserRole

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) UpdateRole(context context.Context, accountID string, role sec.UserRole) error {
	const query = `
		UPDATE users.account
		SET role = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, accountID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_role_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
Delete permanently removes the account row.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) Delete(context context.Context, accountID string) error {
	const query = `DELETE FROM users.account WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, accountID)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}
