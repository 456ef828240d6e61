// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// # Secure Randomness

// GenerateActivationCode returns a uniformly random 4-digit code in [1000, 9999].
//
// Collisions between concurrent registrations are not checked: the code is only
// meaningful together with the signed ticket that embeds it, and only inside
// the ticket's short validity window.
func GenerateActivationCode() (string, error) {

	// 9000 possible values, offset by 1000 so the code never has a leading zero
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate activation code: %w", err)
	}

	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// GenerateSecureToken returns a hex-encoded random string of byteLength bytes.
//
// It is used for throwaway secrets such as the never-communicated passwords of
// social-auth accounts.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
