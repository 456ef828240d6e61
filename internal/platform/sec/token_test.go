// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvia/backend/internal/platform/sec"
)

func newTestCodec(t *testing.T) *sec.TokenCodec {
	t.Helper()

	codec, err := sec.NewTokenCodec("eduvia.test", sec.TokenSecrets{
		Activation: "activation-secret",
		Access:     "access-secret",
		Refresh:    "refresh-secret",
		Reset:      "reset-secret",
	})
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_RejectsBadSecrets verifies construction-time secret hygiene.
*/
func TestNewTokenCodec_RejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name    string
		secrets sec.TokenSecrets
	}{
		{"missing_secret", sec.TokenSecrets{Activation: "a", Access: "b", Refresh: "c"}},
		{"shared_secret", sec.TokenSecrets{Activation: "same", Access: "same", Refresh: "c", Reset: "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenCodec("eduvia.test", tt.secrets)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenCodec_ActivationRoundTrip verifies that an activation ticket carries
the pending account and code back out intact.
*/
func TestTokenCodec_ActivationRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.SignActivation("Ada", "ada@example.com", "secret1", "4821", 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.VerifyActivation(token)
	require.NoError(t, err)

	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "secret1", claims.Password)
	assert.Equal(t, "4821", claims.Code)
}

/*
TestTokenCodec_PurposeIsolation verifies that a token signed for one purpose
never verifies under another purpose's secret.
*/
func TestTokenCodec_PurposeIsolation(t *testing.T) {
	codec := newTestCodec(t)

	accessToken, err := codec.SignAccess("account-1", "user", time.Minute)
	require.NoError(t, err)

	// An access token must not be accepted as a refresh or reset token.
	_, err = codec.VerifyRefresh(accessToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = codec.VerifyReset(accessToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenCodec_Expiry verifies that an expired token fails with ErrTokenExpired
rather than the generic invalid error.
*/
func TestTokenCodec_Expiry(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.SignAccess("account-1", "user", -time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenCodec_Tampering verifies that modifying the token body invalidates it.
*/
func TestTokenCodec_Tampering(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.SignReset("account-1", time.Minute)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = codec.VerifyReset(tampered)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestGenerateActivationCode verifies the code is always four digits.
*/
func TestGenerateActivationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := sec.GenerateActivationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
	}
}

/*
TestPasswordHashing verifies the bcrypt hash/compare pair.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	assert.True(t, sec.CheckPasswordHash("secret1", hash))
	assert.False(t, sec.CheckPasswordHash("secret2", hash))
}
