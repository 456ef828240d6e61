// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/mail"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/pkg/uuidv7"
)

// # Contracts & Types

// TokenCodec defines the signing contract the service depends on.
//
// # Why an interface?
//
// The concrete codec lives in the sec package and is pure; this interface
// exists so the service depends only on the operations it actually uses.
type TokenCodec interface {
	SignActivation(name, email, password, code string, timeToLive time.Duration) (string, error)
	VerifyActivation(tokenString string) (*sec.ActivationClaims, error)
	SignAccess(accountID, role string, timeToLive time.Duration) (string, error)
	SignRefresh(accountID, role string, timeToLive time.Duration) (string, error)
	VerifyRefresh(tokenString string) (*sec.SessionClaims, error)
	SignReset(accountID string, timeToLive time.Duration) (string, error)
	VerifyReset(tokenString string) (*sec.ResetClaims, error)
}

// Settings holds the immutable lifecycle policy the service is constructed with.
//
// It is built once at startup from environment configuration and never
// mutated afterwards, keeping the service testable without process-level
// environment state.
type Settings struct {
	ActivationTTL   time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	SessionCacheTTL time.Duration
	ResetTTL        time.Duration

	// ResetURLBase is the web client origin the reset link points at.
	ResetURLBase string
}

// Service implements the account authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, activation,
// or session logic must be reviewed by the security team.
type Service struct {
	accountRepository AccountRepository
	sessionRepository SessionRepository
	resetRepository   ResetTicketRepository
	tokenCodec        TokenCodec
	mailer            mail.Mailer
	settings          Settings
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTicketRepository,
	tokenCodec TokenCodec,
	mailer mail.Mailer,
	settings Settings,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		resetRepository:   resetRepo,
		tokenCodec:        tokenCodec,
		mailer:            mailer,
		settings:          settings,
	}
}

// # Registration Flow

// RegisterInput holds the data required to begin enrollment.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register starts enrollment by issuing an activation ticket. Nothing is
persisted: the pending account travels entirely inside the signed ticket, so
an abandoned registration leaves no state behind.

Description: Checks email availability, generates a 4-digit activation code,
signs the ticket, and emails the code to the address being claimed. If the
email cannot be delivered the whole operation fails and the ticket is never
returned.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegistrationTicket: Signed ticket plus the code (code is email-only over HTTP)
  - error: Conflict, DeliveryFailed, or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegistrationTicket, error) {

	// Verify email availability. Return a client-safe Conflict err.
	_, err := service.accountRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Generate the 4-digit activation code from a CSPRNG
	code, err := sec.GenerateActivationCode()
	if err != nil {
		return nil, fmt.Errorf("auth_service_activation_code_failed: %w", err)
	}

	// Sign the activation ticket embedding the pending account and the code.
	// Code collisions across concurrent registrations are irrelevant: each
	// ticket carries its own code and is only valid for 5 minutes.
	ticket, err := service.tokenCodec.SignActivation(input.Name, input.Email, input.Password, code, service.settings.ActivationTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_activation_failed: %w", err)
	}

	// Deliver the code to the claimed address. Delivery failure aborts the
	// registration; since nothing was persisted there is nothing to undo.
	err = service.mailer.Send(context, mail.Message{
		To:       input.Email,
		Subject:  "Activate your Eduvia account",
		Template: mail.TemplateActivation,
		Data: map[string]any{
			"Name":             input.Name,
			"ActivationCode":   code,
			"ExpiresInMinutes": int(service.settings.ActivationTTL.Minutes()),
		},
	})
	if err != nil {
		return nil, apperr.DeliveryFailed(err)
	}

	return &RegistrationTicket{Token: ticket, Code: code}, nil
}

/*
Activate completes enrollment by verifying the ticket and the emailed code.

Description: Both gates must pass: the ticket signature/expiry AND an exact
match of the supplied 4-digit code. Only then is the account created, with
the password hashed. Does not auto-login.

Parameters:
  - context: context.Context
  - ticketToken: string
  - suppliedCode: string

Returns:
  - *Account: Created entity
  - error: Unauthorized (bad ticket or code), Conflict (email race), or storage errors
*/
func (service *Service) Activate(context context.Context, ticketToken, suppliedCode string) (*Account, error) {

	// Gate 1: ticket signature and expiry
	claims, err := service.tokenCodec.VerifyActivation(ticketToken)
	if err != nil {
		return nil, apperr.Unauthorized("Activation ticket is invalid or expired")
	}

	// Gate 2: exact match of the emailed code
	if claims.Code != suppliedCode {
		return nil, apperr.Unauthorized("Activation code is incorrect")
	}

	// Re-check availability at the point of mutation: two concurrent
	// activations for the same email race here, and the database unique
	// constraint in Create is the final arbiter.
	_, err = service.accountRepository.FindByEmail(context, claims.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Hash the password carried inside the ticket
	hashedPassword, err := sec.HashPassword(claims.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Account entity. Time-sortable ID to prevent PG index fragmentation.
	account := &Account{
		ID:           uuidv7.New(),
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		IsVerified:   true,
	}

	// Persist the account to the database
	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, err
	}

	return account, nil
}

// # Login & Session Issuance

/*
Login validates credentials and issues a fresh session.

Description: Performs constant-time password comparison via bcrypt, then
signs the access/refresh token pair and writes the session cache entry. The
failure message never distinguishes "no such email" from "wrong password" to
prevent account enumeration.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready session tokens and the account
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {

	// Look up the account. Generic message to prevent enumeration.
	account, err := service.accountRepository.FindByEmail(context, email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// Verify password hash using constant-time comparison in bcrypt
	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return service.issueSession(context, account)
}

// SocialAuthInput holds the identity asserted by an external provider.
type SocialAuthInput struct {
	Name      string
	Email     string
	AvatarURL string
}

/*
SocialAuth performs an idempotent upsert-then-login for an externally
authenticated identity.

Description: If no account exists for the email, one is created with a
random password that is never communicated; social accounts authenticate
only through their provider. Either way a fresh session is issued.

Parameters:
  - context: context.Context
  - input: SocialAuthInput

Returns:
  - *Session: Transport-ready session tokens and the account
  - error: Storage or signing failures
*/
func (service *Service) SocialAuth(context context.Context, input SocialAuthInput) (*Session, error) {

	// Reuse the existing account when the email is known
	account, err := service.accountRepository.FindByEmail(context, input.Email)
	if err != nil {

		// First sign-in: create the account with an unguessable password
		randomPassword, err := sec.GenerateSecureToken(SocialPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("auth_service_social_password_failed: %w", err)
		}

		hashedPassword, err := sec.HashPassword(randomPassword)
		if err != nil {
			return nil, fmt.Errorf("auth_service_social_hash_failed: %w", err)
		}

		account = &Account{
			ID:           uuidv7.New(),
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hashedPassword,
			Role:         sec.RoleUser,
			IsVerified:   true,
			AvatarURL:    input.AvatarURL,
		}

		if err := service.accountRepository.Create(context, account); err != nil {
			return nil, err
		}
	}

	return service.issueSession(context, account)
}

// # Refresh & Logout

/*
Refresh rotates the session's token pair and extends its liveness.

Description: Two independent gates combined with AND: the refresh token must
verify cryptographically, and the session cache entry must still exist.
Logout-elsewhere and admin revocation delete the entry, so a valid token
alone is never enough. On success both tokens are re-signed and the cache
entry's value and TTL are renewed (sliding-window session).

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: New, different token pair
  - error: Unauthorized when either gate fails
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {

	// Gate 1: token signature and expiry
	claims, err := service.tokenCodec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Gate 2: the session cache entry must still be present
	account, err := service.sessionRepository.Get(context, claims.AccountID)
	if err != nil {
		return nil, apperr.Unauthorized("Please login to access this resource")
	}

	return service.issueSession(context, account)
}

/*
Logout revokes the account's session immediately.

Description: Deletes the session cache entry; the still-valid signed tokens
become useless because every session check requires the entry. Idempotent —
logging out twice is not an error. Cookie expiry is the HTTP layer's job.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Cache connectivity failures only
*/
func (service *Service) Logout(context context.Context, accountID string) error {
	if err := service.sessionRepository.Delete(context, accountID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// issueSession signs a fresh token pair and writes the session cache entry.
func (service *Service) issueSession(context context.Context, account *Account) (*Session, error) {

	// Sign the short-lived access token
	accessToken, err := service.tokenCodec.SignAccess(account.ID, string(account.Role), service.settings.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_access_failed: %w", err)
	}

	// Sign the long-lived refresh token
	refreshToken, err := service.tokenCodec.SignRefresh(account.ID, string(account.Role), service.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_refresh_failed: %w", err)
	}

	// Write (or renew) the session cache entry. This is the revocation
	// anchor: deleting it kills the session regardless of token validity.
	if err := service.sessionRepository.Save(context, account, service.settings.SessionCacheTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_save_failed: %w", err)
	}

	return &Session{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessTokenTTL:  service.settings.AccessTTL,
		RefreshTokenTTL: service.settings.RefreshTTL,
		Account:         account,
	}, nil
}

// # Password Recovery

/*
ForgotPassword initiates the recovery flow for an account.

Description: Signs a reset ticket, mirrors the exact token string in the
cache, and emails a reset link. If delivery fails the cache entry is rolled
back so no dangling ticket survives. The NotFound error is surfaced here;
the HTTP layer masks it to avoid enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The signed reset token (for flows tested without email delivery)
  - error: NotFound, DeliveryFailed, or internal failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) (string, error) {

	// Look up the account
	account, err := service.accountRepository.FindByEmail(context, email)
	if err != nil {
		return "", apperr.NotFound("Account")
	}

	// Sign the reset ticket
	token, err := service.tokenCodec.SignReset(account.ID, service.settings.ResetTTL)
	if err != nil {
		return "", fmt.Errorf("auth_service_sign_reset_failed: %w", err)
	}

	// Mirror the exact token string in the cache with a matching TTL. A
	// newer request overwrites an older one, superseding its emailed link.
	if err := service.resetRepository.Set(context, account.ID, token, service.settings.ResetTTL); err != nil {
		return "", fmt.Errorf("auth_service_reset_ticket_save_failed: %w", err)
	}

	// Email the reset link
	err = service.mailer.Send(context, mail.Message{
		To:       account.Email,
		Subject:  "Reset your Eduvia password",
		Template: mail.TemplateResetPassword,
		Data: map[string]any{
			"Name":             account.Name,
			"ResetURL":         service.settings.ResetURLBase + "/reset-password?token=" + token,
			"ExpiresInMinutes": int(service.settings.ResetTTL.Minutes()),
		},
	})
	if err != nil {
		// Roll back the cache mirror so the undelivered ticket cannot be used
		_ = service.resetRepository.Delete(context, account.ID)
		return "", apperr.DeliveryFailed(err)
	}

	return token, nil
}

/*
ResetPassword completes the recovery flow.

Description: Two independent gates combined with AND: the token must verify
cryptographically, and it must be textually equal to the cache-stored value
for that account. Deleting the cache entry afterwards makes the ticket
single-use. Any live session's cached account copy is refreshed so it
reflects the new state.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Unauthorized when either gate fails, or storage errors
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Gate 1: token signature and expiry
	claims, err := service.tokenCodec.VerifyReset(token)
	if err != nil {
		return apperr.Unauthorized("Reset token is invalid or expired")
	}

	// Gate 2: the cache mirror must hold this exact token. An absent entry
	// means the ticket was used or revoked; a different value means a newer
	// request superseded this one.
	storedToken, err := service.resetRepository.Get(context, claims.AccountID)
	if err != nil || storedToken != token {
		return apperr.Unauthorized("Reset token has been revoked or superseded")
	}

	// Hash and persist the new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, claims.AccountID, hashedPassword); err != nil {
		return err
	}

	// Burn the ticket: a second attempt with the same token now fails Gate 2
	_ = service.resetRepository.Delete(context, claims.AccountID)

	// Best effort: refresh the session cache copy so an active session
	// reflects the updated account state
	if alive, err := service.sessionRepository.Exists(context, claims.AccountID); err == nil && alive {
		if account, err := service.accountRepository.FindByID(context, claims.AccountID); err == nil {
			_ = service.sessionRepository.Save(context, account, service.settings.SessionCacheTTL)
		}
	}

	return nil
}
