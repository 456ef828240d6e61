// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// AccountRepository defines the data access contract for account identities.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new account to the storage.

		Description: The database unique constraint on email is the final
		arbiter for concurrent activation races; violations surface as
		apperr.Conflict.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdatePassword replaces only the account's password hash.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, accountID, newHash string) error
}

// # Session Cache Access

// SessionRepository defines the cache contract for live sessions.
//
// A session entry is the server-side half of the two-gate session model: the
// signed refresh token proves identity, the cache entry proves the session
// has not been revoked.
type SessionRepository interface {

	/*
		Save writes the serialized account under the session key with a TTL.

		Description: Saving an existing session overwrites its value and
		restarts its TTL, which is what gives refresh its sliding window.

		Parameters:
		  - context: context.Context
		  - account: *Account
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, account *Account, ttl time.Duration) error

	/*
		Get returns the cached account for a live session.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - *Account: Deserialized cache copy
		  - error: apperr.NotFound when absent, or connectivity failures
	*/
	Get(context context.Context, accountID string) (*Account, error)

	/*
		Exists reports whether a live session entry is present.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - bool: Presence flag
		  - error: Connectivity failures
	*/
	Exists(context context.Context, accountID string) (bool, error)

	/*
		Delete removes the session entry, revoking the session immediately.

		Description: Deleting an absent entry is not an error (idempotent logout).

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Connectivity failures
	*/
	Delete(context context.Context, accountID string) error
}

// # Reset Ticket Access

// ResetTicketRepository defines the cache contract for password reset tickets.
//
// The cache stores the exact token string issued last; a reset attempt must
// present a token that is both cryptographically valid and textually equal to
// the stored value. Deleting the entry revokes the ticket before expiry.
type ResetTicketRepository interface {

	/*
		Set stores the reset token string for an account with a TTL.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - token: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, accountID, token string, ttl time.Duration) error

	/*
		Get retrieves the stored reset token string for an account.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - string: Token string as issued
		  - error: apperr.NotFound when absent or expired, or connectivity failures
	*/
	Get(context context.Context, accountID string) (string, error)

	/*
		Delete removes the reset ticket after use or on delivery rollback.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Connectivity failures
	*/
	Delete(context context.Context, accountID string) error
}
