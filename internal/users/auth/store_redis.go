// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/constants"
)

// # Session Repository

// RedisSessionRepository implements SessionRepository using Redis.
//
// Keys follow the "session:<accountID>" taxonomy; the value is the
// JSON-serialized account of the live session.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

/*
Save writes the serialized account under the session key with a TTL.

Description: A SET on an existing key replaces the value and restarts the
TTL, which is exactly the sliding-window semantics refresh relies on.

Parameters:
  - context: context.Context
  - account: *Account
  - ttl: time.Duration

Returns:
  - error: Serialization or execution errors
*/
func (repository *RedisSessionRepository) Save(context context.Context, account *Account, ttl time.Duration) error {

	// Serialize the account. The password hash is excluded by its JSON tag.
	payload, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	// Set the session entry with TTL
	key := constants.RedisPrefixSession + account.ID
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Get returns the cached account for a live session.

Description: Returns apperr.NotFound if the entry is absent or expired.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: Deserialized cache copy (password hash always empty)
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisSessionRepository) Get(context context.Context, accountID string) (*Account, error) {

	// Get the session entry from Redis
	key := constants.RedisPrefixSession + accountID
	payload, err := repository.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Deserialize the cached account
	account := &Account{}
	if err := json.Unmarshal([]byte(payload), account); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	return account, nil
}

/*
Exists reports whether a live session entry is present.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - bool: Presence flag
  - error: Connectivity errors
*/
func (repository *RedisSessionRepository) Exists(context context.Context, accountID string) (bool, error) {

	// EXISTS returns the number of keys found
	key := constants.RedisPrefixSession + accountID
	found, err := repository.client.Exists(context, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis_session_exists_failed: %w", err)
	}

	return found > 0, nil
}

/*
Delete removes the session entry, revoking the session immediately.

Description: DEL on a missing key is a no-op, so logout stays idempotent.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Connectivity errors
*/
func (repository *RedisSessionRepository) Delete(context context.Context, accountID string) error {

	// Delete the session entry from Redis
	key := constants.RedisPrefixSession + accountID
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}

// # Reset Ticket Repository

// RedisResetTicketRepository implements ResetTicketRepository using Redis.
//
// Keys follow the "resetToken:<accountID>" taxonomy; the value is the exact
// token string currently authorized for that account.
type RedisResetTicketRepository struct {
	client *redis.Client
}

// NewResetTicketRepository creates a new Redis-backed ResetTicketRepository.
func NewResetTicketRepository(client *redis.Client) *RedisResetTicketRepository {
	return &RedisResetTicketRepository{client: client}
}

/*
Set stores the reset token string for an account with a TTL.

Description: A newer ticket overwrites the previous one, which is what makes
an older emailed link unusable once a fresh one is requested.

Parameters:
  - context: context.Context
  - accountID: string
  - token: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTicketRepository) Set(context context.Context, accountID, token string, ttl time.Duration) error {

	// Set the token with TTL
	key := constants.RedisPrefixResetToken + accountID
	if err := repository.client.Set(context, key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_ticket_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Get retrieves the stored reset token string for an account.

Description: Returns apperr.NotFound if the ticket is absent or expired.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - string: Token string as issued
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetTicketRepository) Get(context context.Context, accountID string) (string, error) {

	// Get the token from Redis
	key := constants.RedisPrefixResetToken + accountID
	token, err := repository.client.Get(context, key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset ticket")
		}
		return "", fmt.Errorf("redis_reset_ticket_get_failed: %w", err)
	}

	// Return the token string
	return token, nil
}

/*
Delete removes the reset ticket after use or on delivery rollback.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Connectivity errors
*/
func (repository *RedisResetTicketRepository) Delete(context context.Context, accountID string) error {

	// Delete the token from Redis
	key := constants.RedisPrefixResetToken + accountID
	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_ticket_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
