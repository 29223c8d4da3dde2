package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
)

type BotRepository struct {
	pool *pgxpool.Pool
}

func NewBotRepository(pool *pgxpool.Pool) *BotRepository {
	return &BotRepository{pool: pool}
}

const botColumns = `id, user_created, instagram_url, username, password,
		COALESCE(session_cookies, ''), is_active, COALESCE(default_reply, ''),
		created_at, updated_at`

// actorFilter matches the bot when $2 is the owner or a current
// moderator. Non-existent and inaccessible bots are indistinguishable
// to the caller on purpose.
const actorFilter = `id = $1 AND (user_created = $2
		OR EXISTS (SELECT 1 FROM bot_moderators m WHERE m.bot_id = bots.id AND m.user_id = $2))`

func scanBot(row pgx.Row) (*entity.Bot, error) {
	b := &entity.Bot{}
	if err := row.Scan(&b.ID, &b.UserCreated, &b.InstagramURL,
		&b.Credentials.Username, &b.Credentials.Password, &b.SessionCookies,
		&b.IsActive, &b.DefaultReply, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BotRepository) Create(ctx context.Context, b *entity.Bot) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bots (user_created, instagram_url, username, password, session_cookies)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, COALESCE(default_reply, ''), created_at, updated_at
	`, b.UserCreated, b.InstagramURL, b.Credentials.Username, b.Credentials.Password, b.SessionCookies)

	if err := row.Scan(&b.ID, &b.IsActive, &b.DefaultReply, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *BotRepository) GetByID(ctx context.Context, id string) (*entity.Bot, error) {
	return scanBot(r.pool.QueryRow(ctx, `SELECT `+botColumns+` FROM bots WHERE id = $1`, id))
}

func (r *BotRepository) GetForActor(ctx context.Context, botID, actorID string) (*entity.Bot, error) {
	return scanBot(r.pool.QueryRow(ctx, `SELECT `+botColumns+` FROM bots WHERE `+actorFilter, botID, actorID))
}

func (r *BotRepository) ListOwned(ctx context.Context, userID string) ([]entity.BotSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, instagram_url, is_active, created_at
		FROM bots WHERE user_created = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

func (r *BotRepository) ListInvited(ctx context.Context, userID string) ([]entity.BotSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.instagram_url, b.is_active, b.created_at
		FROM bots b
		JOIN bot_moderators m ON m.bot_id = b.id
		WHERE m.user_id = $1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

func collectSummaries(rows pgx.Rows) ([]entity.BotSummary, error) {
	out := []entity.BotSummary{}
	for rows.Next() {
		var s entity.BotSummary
		if err := rows.Scan(&s.ID, &s.InstagramURL, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *BotRepository) Moderators(ctx context.Context, botID string) ([]repository.UserRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name
		FROM users u
		JOIN bot_moderators m ON m.user_id = u.id
		WHERE m.bot_id = $1
		ORDER BY m.created_at
	`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repository.UserRef{}
	for rows.Next() {
		var ref repository.UserRef
		if err := rows.Scan(&ref.ID, &ref.Email, &ref.FirstName, &ref.LastName); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *BotRepository) SetActive(ctx context.Context, botID, actorID string, active bool) (*entity.Bot, error) {
	return scanBot(r.pool.QueryRow(ctx, `
		UPDATE bots SET is_active = $3, updated_at = $4
		WHERE `+actorFilter+`
		RETURNING `+botColumns,
		botID, actorID, active, time.Now()))
}

func (r *BotRepository) SetCredentials(ctx context.Context, botID, actorID string, creds entity.Credentials, sessionCookies string) (*entity.Bot, error) {
	return scanBot(r.pool.QueryRow(ctx, `
		UPDATE bots SET username = $3, password = $4, session_cookies = $5, updated_at = $6
		WHERE `+actorFilter+`
		RETURNING `+botColumns,
		botID, actorID, creds.Username, creds.Password, sessionCookies, time.Now()))
}

func (r *BotRepository) SetDefaultReply(ctx context.Context, botID, actorID, text string) (*entity.Bot, error) {
	return scanBot(r.pool.QueryRow(ctx, `
		UPDATE bots SET default_reply = $3, updated_at = $4
		WHERE `+actorFilter+`
		RETURNING `+botColumns,
		botID, actorID, text, time.Now()))
}

// DeleteCascade removes the bot and everything hanging off it inside a
// single transaction: one bulk delete per child table, then the bot
// row itself. No per-row loops, no re-entrant cleanup.
func (r *BotRepository) DeleteCascade(ctx context.Context, botID, ownerID string) (*entity.Bot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bot, err := scanBot(tx.QueryRow(ctx, `
		SELECT `+botColumns+` FROM bots
		WHERE id = $1 AND user_created = $2
		FOR UPDATE
	`, botID, ownerID))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM replies WHERE bot_id = $1`, botID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bot_moderators WHERE bot_id = $1`, botID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bots WHERE id = $1`, botID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bot, nil
}

func (r *BotRepository) AddModerator(ctx context.Context, botID, ownerID, userID string) (*entity.Bot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Single combined filter: absent bot, foreign bot and an already
	// invited user all surface as not-found.
	bot, err := scanBot(tx.QueryRow(ctx, `
		SELECT `+botColumns+` FROM bots
		WHERE id = $1 AND user_created = $2
			AND NOT EXISTS (SELECT 1 FROM bot_moderators m WHERE m.bot_id = bots.id AND m.user_id = $3)
		FOR UPDATE
	`, botID, ownerID, userID))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO bot_moderators (bot_id, user_id) VALUES ($1, $2)
	`, botID, userID); err != nil {
		if isDuplicate(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bot, nil
}

func (r *BotRepository) RemoveModerator(ctx context.Context, botID, ownerID, userID string) (*entity.Bot, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM bot_moderators m
		USING bots b
		WHERE m.bot_id = $1 AND m.user_id = $3
			AND b.id = m.bot_id AND b.user_created = $2
	`, botID, ownerID, userID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, botID)
}

var _ repository.BotRepository = (*BotRepository)(nil)
