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

type ReplyRepository struct {
	pool *pgxpool.Pool
}

func NewReplyRepository(pool *pgxpool.Pool) *ReplyRepository {
	return &ReplyRepository{pool: pool}
}

const replyColumns = `id, bot_id, keywords, answer, is_active, created_at, updated_at`

func scanReply(row pgx.Row) (*entity.Reply, error) {
	rep := &entity.Reply{}
	if err := row.Scan(&rep.ID, &rep.BotBelongs, &rep.Keywords, &rep.Answer,
		&rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *ReplyRepository) Create(ctx context.Context, rep *entity.Reply) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO replies (bot_id, keywords, answer)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at
	`, rep.BotBelongs, rep.Keywords, rep.Answer)

	return row.Scan(&rep.ID, &rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt)
}

func (r *ReplyRepository) Update(ctx context.Context, rep *entity.Reply) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE replies SET keywords = $1, answer = $2, updated_at = $3
		WHERE id = $4 AND bot_id = $5
		RETURNING is_active, created_at, updated_at
	`, rep.Keywords, rep.Answer, time.Now(), rep.ID, rep.BotBelongs)
	if err := row.Scan(&rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *ReplyRepository) SetActive(ctx context.Context, replyID, botID string, active bool) (*entity.Reply, error) {
	return scanReply(r.pool.QueryRow(ctx, `
		UPDATE replies SET is_active = $3, updated_at = $4
		WHERE id = $1 AND bot_id = $2
		RETURNING `+replyColumns,
		replyID, botID, active, time.Now()))
}

func (r *ReplyRepository) Delete(ctx context.Context, replyID, botID string) (*entity.Reply, error) {
	return scanReply(r.pool.QueryRow(ctx, `
		DELETE FROM replies
		WHERE id = $1 AND bot_id = $2
		RETURNING `+replyColumns,
		replyID, botID))
}

func (r *ReplyRepository) ListByBot(ctx context.Context, botID string, offset, limit int) ([]entity.Reply, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+replyColumns+` FROM replies
		WHERE bot_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`, botID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Reply{}
	for rows.Next() {
		var rep entity.Reply
		if err := rows.Scan(&rep.ID, &rep.BotBelongs, &rep.Keywords, &rep.Answer,
			&rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReplyRepository) HasConflict(ctx context.Context, botID string, keywords []string, answer, excludeID string) (bool, error) {
	var exists bool
	// && is the array-overlap operator: any shared keyword collides.
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM replies
			WHERE bot_id = $1 AND is_active
				AND id <> COALESCE(NULLIF($4, '')::uuid, '00000000-0000-0000-0000-000000000000'::uuid)
				AND (answer = $2 OR keywords && $3)
		)
	`, botID, answer, keywords, excludeID).Scan(&exists)
	return exists, err
}

var _ repository.ReplyRepository = (*ReplyRepository)(nil)
