package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// ResetTokenBytes is the entropy of account verification / recovery
// tokens. 20 random bytes, hex-encoded to 40 characters.
const ResetTokenBytes = 20

// GenerateResetToken returns a cryptographically random opaque token.
func GenerateResetToken() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
