package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the plain text password using bcrypt with the
// default cost (10 rounds).
func HashPassword(plain string) (string, error) {
	return HashPasswordCost(plain, bcrypt.DefaultCost)
}

// HashPasswordCost hashes with an explicit cost factor. Costs outside
// bcrypt's supported range fall back to the default.
//
// bcrypt keys on at most 72 bytes of input; GenerateFromPassword rejects
// anything longer while CompareHashAndPassword silently ignores the tail.
// Truncating here keeps the two sides consistent for oversized input.
func HashPasswordCost(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	pw := []byte(plain)
	if len(pw) > 72 {
		pw = pw[:72]
	}
	b, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
