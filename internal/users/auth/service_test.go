// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/mail"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/users/auth"
)

// # In-Memory Fakes

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account // keyed by email
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*auth.Account{}}
}

func (repo *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if account, ok := repo.accounts[email]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeAccountRepo) FindByID(_ context.Context, id string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, account := range repo.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeAccountRepo) Create(_ context.Context, account *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.accounts[account.Email]; ok {
		return apperr.Conflict("Email is already registered")
	}
	copied := *account
	repo.accounts[account.Email] = &copied
	return nil
}

func (repo *fakeAccountRepo) UpdatePassword(_ context.Context, accountID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, account := range repo.accounts {
		if account.ID == accountID {
			account.PasswordHash = newHash
			return nil
		}
	}
	return apperr.NotFound("Account")
}

func (repo *fakeAccountRepo) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.accounts)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Account // keyed by account id
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*auth.Account{}}
}

func (repo *fakeSessionRepo) Save(_ context.Context, account *auth.Account, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *account
	repo.sessions[account.ID] = &copied
	return nil
}

func (repo *fakeSessionRepo) Get(_ context.Context, accountID string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if account, ok := repo.sessions[accountID]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, apperr.NotFound("Session")
}

func (repo *fakeSessionRepo) Exists(_ context.Context, accountID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	_, ok := repo.sessions[accountID]
	return ok, nil
}

func (repo *fakeSessionRepo) Delete(_ context.Context, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.sessions, accountID)
	return nil
}

type fakeResetRepo struct {
	mu      sync.Mutex
	tickets map[string]string // account id -> token string
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tickets: map[string]string{}}
}

func (repo *fakeResetRepo) Set(_ context.Context, accountID, token string, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.tickets[accountID] = token
	return nil
}

func (repo *fakeResetRepo) Get(_ context.Context, accountID string) (string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if token, ok := repo.tickets[accountID]; ok {
		return token, nil
	}
	return "", apperr.NotFound("Reset ticket")
}

func (repo *fakeResetRepo) Delete(_ context.Context, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.tickets, accountID)
	return nil
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []mail.Message
	failNext bool
}

func (mailer *fakeMailer) Send(_ context.Context, message mail.Message) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if mailer.failNext {
		mailer.failNext = false
		return errors.New("smtp: connection refused")
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

// # Test Harness

type harness struct {
	service  *auth.Service
	accounts *fakeAccountRepo
	sessions *fakeSessionRepo
	resets   *fakeResetRepo
	mailer   *fakeMailer
	codec    *sec.TokenCodec
}

func newHarness(t *testing.T, settings auth.Settings) *harness {
	t.Helper()

	codec, err := sec.NewTokenCodec("eduvia.app", sec.TokenSecrets{
		Activation: "activation-secret",
		Access:     "access-secret",
		Refresh:    "refresh-secret",
		Reset:      "reset-secret",
	})
	require.NoError(t, err)

	accounts := newFakeAccountRepo()
	sessions := newFakeSessionRepo()
	resets := newFakeResetRepo()
	mailer := &fakeMailer{}

	return &harness{
		service:  auth.NewService(accounts, sessions, resets, codec, mailer, settings),
		accounts: accounts,
		sessions: sessions,
		resets:   resets,
		mailer:   mailer,
		codec:    codec,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got: %v", err)
	return appError.HTTPStatus
}

// # Registration & Activation

/*
TestRegisterThenActivate verifies the happy path: register issues a ticket
and code, activate with the correct code creates exactly one account, and
replaying the same ticket cannot create a second one.
*/
func TestRegisterThenActivate(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()

	ticket, err := h.service.Register(ctx, auth.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ticket.Token)
	assert.Regexp(t, `^[0-9]{4}$`, ticket.Code)

	// Nothing is persisted until activation succeeds
	assert.Equal(t, 0, h.accounts.count())

	// The code travels by email
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "ada@example.com", h.mailer.sent[0].To)
	assert.Equal(t, mail.TemplateActivation, h.mailer.sent[0].Template)

	account, err := h.service.Activate(ctx, ticket.Token, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, sec.RoleUser, account.Role)
	assert.True(t, account.IsVerified)
	assert.NotEqual(t, "secret123", account.PasswordHash)
	assert.Equal(t, 1, h.accounts.count())

	// Replaying the same ticket cannot create a second account
	_, err = h.service.Activate(ctx, ticket.Token, ticket.Code)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Equal(t, 1, h.accounts.count())
}

/*
TestActivateWrongCode verifies a valid ticket with the wrong 4-digit code is
rejected and persists nothing.
*/
func TestActivateWrongCode(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()

	ticket, err := h.service.Register(ctx, auth.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	wrongCode := "0000"
	if ticket.Code == wrongCode {
		wrongCode = "1111"
	}

	_, err = h.service.Activate(ctx, ticket.Token, wrongCode)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Equal(t, 0, h.accounts.count())
}

/*
TestActivateTamperedOrExpiredTicket verifies that neither a tampered nor an
expired ticket ever creates an account.
*/
func TestActivateTamperedOrExpiredTicket(t *testing.T) {
	t.Run("tampered", func(t *testing.T) {
		h := newHarness(t, auth.DefaultSettings())
		ctx := context.Background()

		ticket, err := h.service.Register(ctx, auth.RegisterInput{
			Name: "Ada", Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, err = h.service.Activate(ctx, ticket.Token+"x", ticket.Code)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		assert.Equal(t, 0, h.accounts.count())
	})

	t.Run("expired", func(t *testing.T) {
		settings := auth.DefaultSettings()
		settings.ActivationTTL = -time.Minute // issued already expired
		h := newHarness(t, settings)
		ctx := context.Background()

		ticket, err := h.service.Register(ctx, auth.RegisterInput{
			Name: "Ada", Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, err = h.service.Activate(ctx, ticket.Token, ticket.Code)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		assert.Equal(t, 0, h.accounts.count())
	})
}

/*
TestRegisterDuplicateEmail verifies a taken email is rejected before any
ticket is issued.
*/
func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()

	ticket, err := h.service.Register(ctx, auth.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	_, err = h.service.Activate(ctx, ticket.Token, ticket.Code)
	require.NoError(t, err)

	_, err = h.service.Register(ctx, auth.RegisterInput{
		Name: "Imposter", Email: "ada@example.com", Password: "other-pass",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

/*
TestRegisterDeliveryFailure verifies a mailer outage aborts registration
with a 5xx and leaves no state behind.
*/
func TestRegisterDeliveryFailure(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	h.mailer.failNext = true

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
	assert.Equal(t, 0, h.accounts.count())
}

// # Login, Refresh & Logout

// enroll registers and activates an account in one step.
func enroll(t *testing.T, h *harness, name, email, password string) *auth.Account {
	t.Helper()
	ctx := context.Background()

	ticket, err := h.service.Register(ctx, auth.RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)

	account, err := h.service.Activate(ctx, ticket.Token, ticket.Code)
	require.NoError(t, err)
	return account
}

/*
TestLoginThenRefresh verifies a successful login yields a session whose
refresh token immediately refreshes into a new, different token pair.
*/
func TestLoginThenRefresh(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	account := enroll(t, h, "Ada", "ada@example.com", "secret123")

	session, err := h.service.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.Account.ID)

	// The session cache entry backs the issued tokens
	alive, err := h.sessions.Exists(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, alive)

	// Token timestamps have second resolution; step past the boundary so the
	// rotated pair differs from the original.
	time.Sleep(1100 * time.Millisecond)

	refreshed, err := h.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
}

/*
TestLoginInvalidCredentials verifies unknown emails and wrong passwords fail
with the same uniform message.
*/
func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	enroll(t, h, "Ada", "ada@example.com", "secret123")

	_, unknownErr := h.service.Login(ctx, "nobody@example.com", "secret123")
	_, wrongErr := h.service.Login(ctx, "ada@example.com", "wrong-pass")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, unknownErr))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, wrongErr))

	// Identical messages so the endpoint cannot be used for enumeration
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

/*
TestLogoutRevokesRefresh verifies that deleting the session cache entry, not
token expiry, is what revokes a session: the pre-logout refresh token still
verifies cryptographically but can no longer refresh.
*/
func TestLogoutRevokesRefresh(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	account := enroll(t, h, "Ada", "ada@example.com", "secret123")

	session, err := h.service.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(ctx, account.ID))

	// The token itself is still cryptographically valid
	_, err = h.codec.VerifyRefresh(session.RefreshToken)
	require.NoError(t, err)

	// But the session is gone
	_, err = h.service.Refresh(ctx, session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// Logout is idempotent
	require.NoError(t, h.service.Logout(ctx, account.ID))
}

/*
TestSocialAuthIdempotentUpsert verifies social sign-in creates at most one
account per email and always yields a session.
*/
func TestSocialAuthIdempotentUpsert(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()

	input := auth.SocialAuthInput{
		Name:      "Ada",
		Email:     "ada@example.com",
		AvatarURL: "https://cdn.example.com/ada.png",
	}

	first, err := h.service.SocialAuth(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 1, h.accounts.count())
	assert.True(t, first.Account.IsVerified)

	second, err := h.service.SocialAuth(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 1, h.accounts.count())
	assert.Equal(t, first.Account.ID, second.Account.ID)
}

// # Password Recovery

/*
TestForgotThenResetPassword verifies the full recovery round trip: the reset
ticket works exactly once, and afterwards only the new password logs in.
*/
func TestForgotThenResetPassword(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	enroll(t, h, "Ada", "ada@example.com", "secret123")

	token, err := h.service.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Len(t, h.mailer.sent, 2) // activation + reset

	require.NoError(t, h.service.ResetPassword(ctx, token, "brand-new-pass"))

	// The ticket is single-use
	err = h.service.ResetPassword(ctx, token, "another-pass")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// Only the new password authenticates
	_, err = h.service.Login(ctx, "ada@example.com", "secret123")
	require.Error(t, err)
	_, err = h.service.Login(ctx, "ada@example.com", "brand-new-pass")
	require.NoError(t, err)
}

/*
TestForgotPasswordDeliveryRollback verifies a mailer outage rolls back the
cached reset ticket so no dangling token survives.
*/
func TestForgotPasswordDeliveryRollback(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	account := enroll(t, h, "Ada", "ada@example.com", "secret123")

	h.mailer.failNext = true
	_, err := h.service.ForgotPassword(ctx, "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))

	_, err = h.resets.Get(ctx, account.ID)
	require.Error(t, err, "reset ticket must be rolled back on delivery failure")
}

/*
TestResetPasswordSuperseded verifies a newer forgot-password request
invalidates the previously emailed token even before it expires.
*/
func TestResetPasswordSuperseded(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())
	ctx := context.Background()
	enroll(t, h, "Ada", "ada@example.com", "secret123")

	firstToken, err := h.service.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)

	// Distinct iat makes the second token textually different
	time.Sleep(1100 * time.Millisecond)

	secondToken, err := h.service.ForgotPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, firstToken, secondToken)

	err = h.service.ResetPassword(ctx, firstToken, "brand-new-pass")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	require.NoError(t, h.service.ResetPassword(ctx, secondToken, "brand-new-pass"))
}

/*
TestForgotPasswordUnknownEmail verifies the service surfaces NotFound (the
HTTP layer is responsible for masking it).
*/
func TestForgotPasswordUnknownEmail(t *testing.T) {
	h := newHarness(t, auth.DefaultSettings())

	_, err := h.service.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Empty(t, h.mailer.sent)
}
