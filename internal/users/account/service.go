// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/platform/storage"
	"github.com/eduvia/backend/internal/users/auth"
	"github.com/eduvia/backend/pkg/pagination"
	"github.com/eduvia/backend/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates business logic for account profiles and administration.
//
// It ensures that profile updates, avatar swaps, and account removal keep the
// session cache and the external asset host consistent with the database.
type Service struct {
	accountRepository AccountRepository
	sessionRepository auth.SessionRepository
	assets            storage.AssetStore
	sessionCacheTTL   time.Duration
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo auth.SessionRepository,
	assets storage.AssetStore,
	sessionCacheTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		assets:            assets,
		sessionCacheTTL:   sessionCacheTTL,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *auth.Account: The hydrated account profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*auth.Account, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

/*
UpdateProfile applies a partial set of changes to an account's identity data.

Description: Fetches the existing state, overrides provided fields, persists
the change, and refreshes the session cache copy so the active session sees
the update immediately.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Account: The updated account profile
  - error: Conflict (email taken), NotFound, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*auth.Account, error) {

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Name != nil {
		account.Name = *input.Name
	}

	// Apply delta updates
	if input.Email != nil {
		account.Email = *input.Email
	}

	// Persist changes. The email unique constraint surfaces as Conflict.
	if err := service.accountRepository.Update(context, account); err != nil {
		return nil, err
	}

	// Keep the live session copy in sync
	service.refreshSessionCopy(context, account)

	service.logger.Info("account_profile_updated", slog.String("account_id", accountID))

	return account, nil
}

/*
ChangePassword rotates an account's password after verifying the current one.

Description: Accounts created through social sign-in carry a random password
nobody knows; their current-password check always fails, which is the
intended behavior — they authenticate only via their provider.

Parameters:
  - context: context.Context
  - accountID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized (wrong current password) or storage failures
*/
func (service *Service) ChangePassword(context context.Context, accountID, currentPassword, newPassword string) error {

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change
	if !sec.CheckPasswordHash(currentPassword, account.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.accountRepository.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return err
	}

	service.logger.Info("account_password_changed", slog.String("account_id", accountID))

	return nil
}

// # Avatar Management

/*
UpdateAvatar replaces the account's profile picture on the asset host.

Description: Uploads the new image first, then removes the previous asset
(best effort) and persists the new reference. The session cache copy is
refreshed so the new avatar URL is visible immediately.

Parameters:
  - context: context.Context
  - accountID: string
  - contentType: string
  - imageData: []byte

Returns:
  - *auth.Account: The updated account profile
  - error: Upload or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, accountID, contentType string, imageData []byte) (*auth.Account, error) {

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	// Upload the replacement under a fresh key
	asset, err := service.assets.Upload(context, "avatars/"+uuidv7.New(), contentType, imageData)
	if err != nil {
		return nil, fmt.Errorf("account_service_avatar_upload_failed: %w", err)
	}

	// Remove the previous asset. Best effort: an orphaned object is
	// preferable to failing the swap after the upload succeeded.
	if account.AvatarID != "" {
		if err := service.assets.Delete(context, account.AvatarID); err != nil {
			service.logger.Warn("account_avatar_cleanup_failed",
				slog.String("account_id", accountID),
				slog.String("asset_id", account.AvatarID),
			)
		}
	}

	account.AvatarID = asset.PublicID
	account.AvatarURL = asset.URL

	if err := service.accountRepository.Update(context, account); err != nil {
		return nil, err
	}

	// Keep the live session copy in sync
	service.refreshSessionCopy(context, account)

	service.logger.Info("account_avatar_updated", slog.String("account_id", accountID))

	return account, nil
}

// # Administration

/*
ListAccounts returns a page of all accounts for the admin dashboard.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.Account: Page of accounts
  - int: Total count across all pages
  - error: Storage failures
*/
func (service *Service) ListAccounts(context context.Context, params pagination.Params) ([]auth.Account, int, error) {
	accounts, total, err := service.accountRepository.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, total, nil
}

/*
UpdateRole replaces an account's authorization role.

Description: The session cache copy is refreshed so the new role applies on
the account's next token refresh without forcing a logout.

Parameters:
  - context: context.Context
  - accountID: string
  - role: sec.UserRole

Returns:
  - error: Unprocessable (unknown role), NotFound, or storage failures
*/
func (service *Service) UpdateRole(context context.Context, accountID string, role sec.UserRole) error {

	if !role.IsValid() {
		return apperr.Unprocessable("Unknown role: " + string(role))
	}

	if err := service.accountRepository.UpdateRole(context, accountID, role); err != nil {
		return err
	}

	// Keep the live session copy in sync
	if account, err := service.accountRepository.FindByID(context, accountID); err == nil {
		service.refreshSessionCopy(context, account)
	}

	service.logger.Info("account_role_updated",
		slog.String("account_id", accountID),
		slog.String("role", string(role)),
	)

	return nil
}

/*
DeleteAccount permanently removes an account.

Description: Removal must leave no live artifacts behind: the session cache
entry is deleted (instant revocation of any active session) and the avatar
asset is removed from the external host.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) DeleteAccount(context context.Context, accountID string) error {

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if err := service.accountRepository.Delete(context, accountID); err != nil {
		return err
	}

	// Revoke any live session: the cache entry, not token expiry, is what
	// keeps a session alive.
	_ = service.sessionRepository.Delete(context, accountID)

	// Clean up the externally stored avatar asset
	if account.AvatarID != "" {
		if err := service.assets.Delete(context, account.AvatarID); err != nil {
			service.logger.Warn("account_avatar_cleanup_failed",
				slog.String("account_id", accountID),
				slog.String("asset_id", account.AvatarID),
			)
		}
	}

	service.logger.Warn("account_deleted", slog.String("account_id", accountID))

	return nil
}

// refreshSessionCopy rewrites the session cache copy of the account if a live
// session exists. Best effort: a stale copy self-corrects on the next login.
func (service *Service) refreshSessionCopy(context context.Context, account *auth.Account) {
	alive, err := service.sessionRepository.Exists(context, account.ID)
	if err != nil || !alive {
		return
	}
	_ = service.sessionRepository.Save(context, account, service.sessionCacheTTL)
}
