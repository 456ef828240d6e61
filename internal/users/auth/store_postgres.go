// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

// PostgreSQL implementation of the account repository.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or unique-constraint
// violations) are mapped to domain-friendly [apperr.AppError] types to avoid
// leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduvia/backend/internal/platform/apperr"
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
Create persists a new account record into the users.account table.

Description: The unique index on email is the final arbiter for two
concurrent activation attempts; the loser's constraint violation is
surfaced as a client-safe Conflict.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, name, email, passwordhash, role, isverified, avatarid, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsVerified,
		account.AvatarID,
		account.AvatarURL,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		// Map the unique-constraint violation to a client-safe Conflict
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolationCode {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves an account record by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	const query = `
		SELECT id, name, email, passwordhash, role, isverified, avatarid, avatarurl, createdat, updatedat
		FROM users.account
		WHERE email = $1`

	return repository.queryOne(context, query, email)
}

/*
FindByID retrieves an account record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	const query = `
		SELECT id, name, email, passwordhash, role, isverified, avatarid, avatarurl, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	return repository.queryOne(context, query, id)
}

/*
UpdatePassword replaces only the account's password hash.

Parameters:
  - context: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: apperr.NotFound if the account is gone, or database errors
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

// queryOne runs a single-row account query and maps pgx.ErrNoRows to NotFound.
func (repository *PostgresAccountRepository) queryOne(context context.Context, query string, argument any) (*Account, error) {
	account := &Account{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
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
		return nil, fmt.Errorf("postgres_account_repo_query_failed: %w", err)
	}

	return account, nil
}
