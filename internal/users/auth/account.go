// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
Package auth implements the account identity and session-token lifecycle.

It covers the full journey of an Eduvia account: registration with emailed
activation codes, login and session issuance, sliding-window refresh, logout,
and the password recovery flow.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to account identity.

# Ticket Model

Three ephemeral ticket types are owned exclusively by this package:

  - Activation Ticket: signed token + 4-digit code jointly authorizing
    first-time account creation. Never persisted.
  - Session: signed access/refresh token pair plus a cache entry keyed by
    account id. Both the token AND the cache entry are required.
  - Reset Ticket: signed token mirrored in the cache; both gates must pass
    for a password change, which makes the ticket single-use.
*/
package auth

import (
	"time"

	"github.com/eduvia/backend/internal/platform/sec"
)

// # Domain Entities

// Account represents a registered member of the Eduvia platform.
type Account struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	AvatarID     string       `json:"avatar_id,omitempty"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RegistrationTicket is the outcome of a successful register call.
//
// The Token travels to the client; the Code travels only by email. Account
// creation requires presenting both within the activation window.
type RegistrationTicket struct {
	Token string `json:"activation_token"`
	Code  string `json:"-"` // Never returned over HTTP. Delivered by email only.
}

// Session represents a freshly issued token pair for an authenticated account.
type Session struct {
	AccessToken     string
	RefreshToken    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Account         *Account
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldNewPassword     = "new_password"
	FieldToken           = "token"
	FieldActivationCode  = "activation_code"
	FieldActivationToken = "activation_token"
	FieldAccessToken     = "access_token"
	FieldAvatar          = "avatar"
	FieldUser            = "user"
	FieldMessage         = "message"
)
