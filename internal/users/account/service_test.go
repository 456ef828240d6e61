// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package account_test

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/sec"
	"github.com/eduvia/backend/internal/platform/storage"
	"github.com/eduvia/backend/internal/users/account"
	"github.com/eduvia/backend/internal/users/auth"
	"github.com/eduvia/backend/pkg/pagination"
)

// # In-Memory Fakes

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account // keyed by id
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*auth.Account{}}
}

func (repo *fakeAccountRepo) put(account *auth.Account) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *account
	repo.accounts[account.ID] = &copied
}

func (repo *fakeAccountRepo) FindByID(_ context.Context, id string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if acc, ok := repo.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeAccountRepo) Update(_ context.Context, updated *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	existing, ok := repo.accounts[updated.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	for _, other := range repo.accounts {
		if other.ID != updated.ID && other.Email == updated.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	copied := *updated
	copied.PasswordHash = existing.PasswordHash
	repo.accounts[updated.ID] = &copied
	return nil
}

func (repo *fakeAccountRepo) UpdatePassword(_ context.Context, accountID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	acc, ok := repo.accounts[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.PasswordHash = newHash
	return nil
}

func (repo *fakeAccountRepo) List(_ context.Context, params pagination.Params) ([]auth.Account, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	all := make([]auth.Account, 0, len(repo.accounts))
	for _, acc := range repo.accounts {
		all = append(all, *acc)
	}
	return all, len(all), nil
}

func (repo *fakeAccountRepo) UpdateRole(_ context.Context, accountID string, role sec.UserRole) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	acc, ok := repo.accounts[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.Role = role
	return nil
}

func (repo *fakeAccountRepo) Delete(_ context.Context, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.accounts[accountID]; !ok {
		return apperr.NotFound("Account")
	}
	delete(repo.accounts, accountID)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Account
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*auth.Account{}}
}

func (repo *fakeSessionRepo) Save(_ context.Context, acc *auth.Account, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *acc
	repo.sessions[acc.ID] = &copied
	return nil
}

func (repo *fakeSessionRepo) Get(_ context.Context, accountID string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if acc, ok := repo.sessions[accountID]; ok {
		copied := *acc
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

type fakeAssetStore struct {
	mu      sync.Mutex
	uploads int
	objects map[string]bool
	deleted []string
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{objects: map[string]bool{}}
}

func (store *fakeAssetStore) Upload(_ context.Context, key, _ string, _ []byte) (storage.Asset, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.uploads++
	store.objects[key] = true
	return storage.Asset{PublicID: key, URL: "https://cdn.test/" + key}, nil
}

func (store *fakeAssetStore) Delete(_ context.Context, publicID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.objects, publicID)
	store.deleted = append(store.deleted, publicID)
	return nil
}

// # Test Harness

type harness struct {
	service  *account.Service
	accounts *fakeAccountRepo
	sessions *fakeSessionRepo
	assets   *fakeAssetStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	accounts := newFakeAccountRepo()
	sessions := newFakeSessionRepo()
	assets := newFakeAssetStore()

	service := account.NewService(accounts, sessions, assets, 7*24*time.Hour, slog.Default())
	return &harness{service: service, accounts: accounts, sessions: sessions, assets: assets}
}

func seedAccount(t *testing.T, h *harness, id, email, password string) *auth.Account {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	acc := &auth.Account{
		ID:           id,
		Name:         "Ada",
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
		IsVerified:   true,
	}
	h.accounts.put(acc)
	return acc
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got: %v", err)
	return appError.HTTPStatus
}

// # Profile

/*
TestUpdateProfileRefreshesSessionCopy verifies a profile change is mirrored
into the live session cache entry.
*/
func TestUpdateProfileRefreshesSessionCopy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := seedAccount(t, h, "account-1", "ada@example.com", "secret123")

	// Simulate an active session
	require.NoError(t, h.sessions.Save(ctx, acc, time.Hour))

	newName := "Ada Lovelace"
	updated, err := h.service.UpdateProfile(ctx, acc.ID, account.UpdateProfileInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	cached, err := h.sessions.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cached.Name)
}

/*
TestChangePasswordWrongCurrent verifies the current-password gate.
*/
func TestChangePasswordWrongCurrent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := seedAccount(t, h, "account-1", "ada@example.com", "secret123")

	err := h.service.ChangePassword(ctx, acc.ID, "wrong-pass", "new-password")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	require.NoError(t, h.service.ChangePassword(ctx, acc.ID, "secret123", "new-password"))

	stored, err := h.accounts.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("new-password", stored.PasswordHash))
}

// # Avatar

/*
TestUpdateAvatarReplacesPreviousAsset verifies the old asset is removed from
the external host when a new avatar is uploaded.
*/
func TestUpdateAvatarReplacesPreviousAsset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := seedAccount(t, h, "account-1", "ada@example.com", "secret123")

	first, err := h.service.UpdateAvatar(ctx, acc.ID, "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, first.AvatarID)
	require.NotEmpty(t, first.AvatarURL)

	second, err := h.service.UpdateAvatar(ctx, acc.ID, "image/png", []byte("newer-bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarID, second.AvatarID)

	// The first asset was cleaned up
	assert.Contains(t, h.assets.deleted, first.AvatarID)
	assert.Equal(t, 2, h.assets.uploads)
}

// # Administration

/*
TestUpdateRoleRejectsUnknownRole verifies role values outside the taxonomy
are refused before touching storage.
*/
func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := seedAccount(t, h, "account-1", "ada@example.com", "secret123")

	err := h.service.UpdateRole(ctx, acc.ID, sec.UserRole("superuser"))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	require.NoError(t, h.service.UpdateRole(ctx, acc.ID, sec.RoleAdmin))

	stored, err := h.accounts.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, stored.Role)
}

/*
TestDeleteAccountRemovesAllArtifacts verifies deletion also revokes the live
session and removes the avatar asset.
*/
func TestDeleteAccountRemovesAllArtifacts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	acc := seedAccount(t, h, "account-1", "ada@example.com", "secret123")

	withAvatar, err := h.service.UpdateAvatar(ctx, acc.ID, "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, h.sessions.Save(ctx, withAvatar, time.Hour))

	require.NoError(t, h.service.DeleteAccount(ctx, acc.ID))

	// Account row is gone
	_, err = h.accounts.FindByID(ctx, acc.ID)
	require.Error(t, err)

	// Session revoked
	alive, err := h.sessions.Exists(ctx, acc.ID)
	require.NoError(t, err)
	assert.False(t, alive)

	// Avatar asset cleaned up
	assert.Contains(t, h.assets.deleted, withAvatar.AvatarID)

	// Deleting again reports NotFound
	err = h.service.DeleteAccount(ctx, acc.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
