// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
Package account handles profile management, avatars, and admin account operations.

It provides functionalities for members to view and update their private
identity data and profile picture, and for admins to list accounts, change
roles, and remove accounts.

# Architecture

  - Domain: This package depends on the auth package for the Account entity
    and the session cache contract.
  - Storage: Profile data in PostgreSQL, avatars on the S3-compatible asset
    host, session copies in Redis.
  - Consistency: Every profile mutation refreshes the session cache copy so
    an active session reflects the new state immediately.
*/
package account

import (
	"context"

	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/users/auth"
	"github.com/eduvia/backend/pkg/pagination"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for account management.
type AccountRepository interface {
	/*
		FindByID retrieves an account record by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	/*
		Update modifies the mutable profile fields of an existing account.

		Description: The email unique constraint is enforced here; violations
		surface as apperr.Conflict.

		Parameters:
		  - context: context.Context
		  - account: *auth.Account (Hydrated entity with changes)

		Returns:
		  - error: apperr.Conflict, apperr.NotFound, or storage failures
	*/
	Update(context context.Context, account *auth.Account) error

	/*
		UpdatePassword replaces only the account's password hash.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - newHash: string

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdatePassword(context context.Context, accountID, newHash string) error

	/*
		List returns a page of accounts ordered by creation time (newest first)
		together with the total account count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []auth.Account: Page of accounts
		  - int: Total count across all pages
		  - error: Storage failures
	*/
	List(context context.Context, params pagination.Params) ([]auth.Account, int, error)

	/*
		UpdateRole replaces the account's authorization role.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - role: sec.UserRole

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdateRole(context context.Context, accountID string, role sec.UserRole) error

	/*
		Delete permanently removes the account row.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Delete(context context.Context, accountID string) error
}

// # Field Identifiers

// Global field names for validation in the account domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldRole            = "role"
	FieldAvatar          = "avatar"
	FieldContentType     = "content_type"
	FieldMessage         = "message"
	FieldAccountID       = "account_id"
)
