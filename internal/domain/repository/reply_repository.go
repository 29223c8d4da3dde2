package repository

import (
	"context"

	"replier/internal/domain/entity"
)

// ReplyRepository defines reply storage operations. All lookups are
// scoped to the owning bot; a reply id paired with the wrong bot id is
// ErrNotFound.
type ReplyRepository interface {
	Create(ctx context.Context, r *entity.Reply) error
	Update(ctx context.Context, r *entity.Reply) error
	SetActive(ctx context.Context, replyID, botID string, active bool) (*entity.Reply, error)
	Delete(ctx context.Context, replyID, botID string) (*entity.Reply, error)

	// ListByBot pages replies ordered by creation descending.
	ListByBot(ctx context.Context, botID string, offset, limit int) ([]entity.Reply, error)

	// HasConflict reports whether another active reply of the bot shares
	// the answer text or overlaps on any keyword. excludeID skips the
	// reply being edited ("" for inserts).
	HasConflict(ctx context.Context, botID string, keywords []string, answer, excludeID string) (bool, error)
}
