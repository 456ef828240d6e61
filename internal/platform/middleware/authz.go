// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

// Package middleware provides the HTTP middleware chain for the Eduvia API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/eduvia/backend/internal/platform/apperr"
	"github.com/eduvia/backend/internal/platform/constants"
	"github.com/eduvia/backend/internal/platform/ctxkey"
	"github.com/eduvia/backend/internal/platform/respond"
	"github.com/eduvia/backend/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token codec
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.SessionClaims, error)
}

// SessionChecker reports whether an account still has a live session entry in
// the cache.
//
// # Two-Gate Validation
//
// A cryptographically valid access token is NOT enough: the session cache
// entry for the account must also exist. Logout and admin deletion revoke
// sessions by deleting that entry, which must take effect immediately even
// though the signed tokens remain valid until expiry.
type SessionChecker interface {
	Exists(context context.Context, accountID string) (bool, error)
}

// Authenticate extracts and verifies the access token from the request.
//
// # Flow
//  1. Look for 'Authorization: Bearer <token>', falling back to the
//     access_token cookie set at login.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, verify the token via [TokenVerifier].
//  4. Require a live session cache entry via [SessionChecker].
//  5. Inject [*sec.SessionClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			tokenString, err := extractAccessToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Session Presence ───────────────────────────────────────────
			alive, err := sessions.Exists(request.Context(), claims.AccountID)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if !alive {
				respond.Error(writer, request, apperr.Unauthorized("Please login to access this resource"))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// extractAccessToken returns the bearer token from the Authorization header,
// or the access_token cookie value, or "" when the request is anonymous.
func extractAccessToken(request *http.Request) (string, error) {
	authHeader := request.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], nil
	}

	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	return cookie.Value, nil
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.SessionClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Please login to access this resource"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.SessionClaims] exists in context (implies AuthN).
//  2. Check if the user's role meets or exceeds the required target role using [sec.UserRole.AtLeast].
//  3. If insufficient, abort with HTTP 403 Forbidden.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Please login to access this resource"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			userRole := sec.UserRole(claims.Role)
			if !userRole.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Role "+claims.Role+" is not allowed access to the resource"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the [*sec.SessionClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.SessionClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.SessionClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
