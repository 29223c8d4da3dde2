package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never a plaintext value.
// ResetToken/ResetExpires back the single-use verification and
// recovery flows; they are either both set or both cleared.
type User struct {
	ID           string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	IsVerified   bool
	ResetToken   string
	ResetExpires *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasResetToken reports whether a token is currently issued. Expiry is
// checked at lookup time, not here.
func (u *User) HasResetToken() bool {
	return u.ResetToken != "" && u.ResetExpires != nil
}

// ClearResetToken consumes the token so it cannot be replayed.
func (u *User) ClearResetToken() {
	u.ResetToken = ""
	u.ResetExpires = nil
}
