package repository

import (
	"context"
	"errors"
	"time"

	"replier/internal/domain/entity"
)

// Storage-level outcomes the application layer branches on. Concrete
// implementations translate their driver errors into these.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the user-related database operations.
type UserRepository interface {
	// Create persists a new user. Returns ErrDuplicate when the email
	// is already taken (backed by the unique index, not only the
	// application-level pre-check).
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update writes the full entity back, including reset-token fields.
	Update(ctx context.Context, u *entity.User) error

	// GetByResetToken returns the single user holding the token with an
	// expiry strictly after now, ErrNotFound otherwise.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	// GetByEmailAndToken additionally pins the token to an email.
	GetByEmailAndToken(ctx context.Context, email, token string, now time.Time) (*entity.User, error)

	// BotCounts reports how many bots the user owns and moderates.
	BotCounts(ctx context.Context, id string) (owned int, invited int, err error)
}
