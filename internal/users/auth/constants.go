// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package auth

import "time"

// # Authentication Constraints

const (
	// SocialPasswordLength is the byte length of the random password assigned
	// to accounts created through an external identity provider. It is never
	// communicated to anyone; social accounts authenticate via their provider.
	SocialPasswordLength = 32

	// MinPasswordLength is the minimum accepted password length on
	// registration and reset.
	MinPasswordLength = 8

	// MinNameLength is the minimum accepted display name length.
	MinNameLength = 2
)

// DefaultSettings returns the reference lifecycle policy.
//
// Production deployments build [Settings] from environment configuration;
// these values are the documented defaults and what the tests exercise.
func DefaultSettings() Settings {
	return Settings{
		// Short window: the code is typed from a freshly received email.
		ActivationTTL: 5 * time.Minute,

		// Access tokens stay short to minimize the impact of a leak.
		AccessTTL: 5 * time.Minute,

		// Refresh tokens are long-lived; the session cache entry, not token
		// expiry, is what actually bounds a session's life.
		RefreshTTL: 72 * time.Hour,

		// The cache entry outlives the refresh token so an idle-but-valid
		// token still finds its session.
		SessionCacheTTL: 7 * 24 * time.Hour,

		// Reset links are single-use and expire quickly.
		ResetTTL: 15 * time.Minute,
	}
}
