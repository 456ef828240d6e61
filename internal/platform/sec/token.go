// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces.
//
// # Purpose-Bound Tokens
//
// Every signed token belongs to exactly one purpose (activation, access,
// refresh, password reset), and each purpose is signed with its own secret.
// A token issued for one flow therefore never verifies in another: an access
// token presented as a reset token fails with [ErrTokenInvalid].
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Verification Failures

var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// embedded expiry has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for every other verification failure:
	// bad signature, wrong purpose secret, malformed payload.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// # Claim Payloads

// SessionClaims is the payload embedded inside access and refresh tokens.
//
// # Why custom claims?
//
// By embedding the AccountID and Role directly inside the token, the
// authentication middleware can reconstruct the caller's identity without a
// database query; only the session-cache presence check touches Redis.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token payload small.
	AccountID string `json:"uid"`
	Role      string `json:"rol"`
}

// ActivationClaims is the payload of a registration activation ticket.
//
// The pending account travels entirely inside the signed ticket — nothing is
// persisted until activation succeeds. The 4-digit code must be supplied by
// the user alongside the ticket; possession of either alone is insufficient.
type ActivationClaims struct {
	jwt.RegisteredClaims

	Name     string `json:"nam"`
	Email    string `json:"eml"`
	Password string `json:"pwd"`
	Code     string `json:"cod"`
}

// ResetClaims is the payload of a password reset ticket.
type ResetClaims struct {
	jwt.RegisteredClaims

	AccountID string `json:"uid"`
}

// # Codec

// TokenSecrets holds the four distinct signing secrets, one per token purpose.
type TokenSecrets struct {
	Activation string
	Access     string
	Refresh    string
	Reset      string
}

// TokenCodec signs and verifies purpose-bound HMAC (HS256) tokens.
//
// It is a pure component: deterministic given inputs, no I/O, safe for
// concurrent use.
type TokenCodec struct {
	issuer  string
	secrets TokenSecrets
}

// NewTokenCodec constructs a [TokenCodec], rejecting missing or shared secrets.
func NewTokenCodec(issuer string, secrets TokenSecrets) (*TokenCodec, error) {
	all := []string{secrets.Activation, secrets.Access, secrets.Refresh, secrets.Reset}

	seen := make(map[string]bool, len(all))
	for _, secret := range all {
		if secret == "" {
			return nil, fmt.Errorf("sec: every token purpose requires a signing secret")
		}
		if seen[secret] {
			// Shared secrets would let a token from one flow replay in another.
			return nil, fmt.Errorf("sec: token signing secrets must be pairwise distinct")
		}
		seen[secret] = true
	}

	return &TokenCodec{issuer: issuer, secrets: secrets}, nil
}

// # Signing

// SignActivation creates an activation ticket carrying the pending account and
// its 4-digit confirmation code.
func (codec *TokenCodec) SignActivation(name, email, password, code string, timeToLive time.Duration) (string, error) {
	claims := ActivationClaims{
		RegisteredClaims: codec.registeredClaims(timeToLive),
		Name:             name,
		Email:            email,
		Password:         password,
		Code:             code,
	}
	return codec.sign(claims, codec.secrets.Activation)
}

// SignAccess creates a short-lived access token for an account.
func (codec *TokenCodec) SignAccess(accountID, role string, timeToLive time.Duration) (string, error) {
	return codec.signSession(accountID, role, codec.secrets.Access, timeToLive)
}

// SignRefresh creates a long-lived refresh token for an account.
func (codec *TokenCodec) SignRefresh(accountID, role string, timeToLive time.Duration) (string, error) {
	return codec.signSession(accountID, role, codec.secrets.Refresh, timeToLive)
}

// SignReset creates a password reset ticket for an account.
func (codec *TokenCodec) SignReset(accountID string, timeToLive time.Duration) (string, error) {
	claims := ResetClaims{
		RegisteredClaims: codec.registeredClaims(timeToLive),
		AccountID:        accountID,
	}
	return codec.sign(claims, codec.secrets.Reset)
}

// # Verification

// VerifyActivation validates an activation ticket and returns its payload.
func (codec *TokenCodec) VerifyActivation(tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := codec.verify(tokenString, codec.secrets.Activation, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its session payload.
func (codec *TokenCodec) VerifyAccess(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := codec.verify(tokenString, codec.secrets.Access, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns its session payload.
func (codec *TokenCodec) VerifyRefresh(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := codec.verify(tokenString, codec.secrets.Refresh, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyReset validates a password reset ticket and returns its payload.
func (codec *TokenCodec) VerifyReset(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := codec.verify(tokenString, codec.secrets.Reset, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// # Internals

// registeredClaims builds the standard issuer/iat/exp claim set.
func (codec *TokenCodec) registeredClaims(timeToLive time.Duration) jwt.RegisteredClaims {
	currentTime := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    codec.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}
}

// signSession signs a [SessionClaims] payload with the given purpose secret.
func (codec *TokenCodec) signSession(accountID, role, secret string, timeToLive time.Duration) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: codec.registeredClaims(timeToLive),
		AccountID:        accountID,
		Role:             role,
	}
	return codec.sign(claims, secret)
}

// sign produces the compact HS256 serialization of claims.
func (codec *TokenCodec) sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// verify parses tokenString into claims, enforcing the HMAC method, the
// purpose secret, and the embedded expiry.
func (codec *TokenCodec) verify(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		// Expiry is the only failure the caller may want to distinguish.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
