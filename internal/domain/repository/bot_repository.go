package repository

import (
	"context"

	"replier/internal/domain/entity"
)

// UserRef is the slim projection used when listing a bot's moderators.
type UserRef struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// BotRepository defines bot storage operations.
//
// Mutations that carry an actorID enforce access inside the query
// filter itself: a bot that exists but is not reachable by the actor
// yields ErrNotFound, exactly like a bot that does not exist. Owner-only
// operations (delete, moderator management) filter on user_created;
// shared operations accept the owner or any current moderator.
type BotRepository interface {
	// Create persists a new bot. Returns ErrDuplicate when the
	// instagram URL is already registered to any bot.
	Create(ctx context.Context, b *entity.Bot) error
	GetByID(ctx context.Context, id string) (*entity.Bot, error)
	// GetForActor loads the bot only when actorID is its owner or a
	// current moderator.
	GetForActor(ctx context.Context, botID, actorID string) (*entity.Bot, error)

	ListOwned(ctx context.Context, userID string) ([]entity.BotSummary, error)
	ListInvited(ctx context.Context, userID string) ([]entity.BotSummary, error)
	Moderators(ctx context.Context, botID string) ([]UserRef, error)

	SetActive(ctx context.Context, botID, actorID string, active bool) (*entity.Bot, error)
	SetCredentials(ctx context.Context, botID, actorID string, creds entity.Credentials, sessionCookies string) (*entity.Bot, error)
	SetDefaultReply(ctx context.Context, botID, actorID, text string) (*entity.Bot, error)

	// DeleteCascade removes the bot, all its replies, and all its
	// moderator relations in one transaction. Owner-only.
	DeleteCascade(ctx context.Context, botID, ownerID string) (*entity.Bot, error)

	// AddModerator links userID as moderator. Fails ErrNotFound when the
	// bot is absent, not owned by ownerID, or userID already moderates it.
	AddModerator(ctx context.Context, botID, ownerID, userID string) (*entity.Bot, error)
	// RemoveModerator unlinks an existing moderator; ErrNotFound when
	// the relation does not currently exist.
	RemoveModerator(ctx context.Context, botID, ownerID, userID string) (*entity.Bot, error)
}
