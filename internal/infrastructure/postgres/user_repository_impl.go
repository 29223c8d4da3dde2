package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
)

const uniqueViolation = "23505"

// isDuplicate reports whether err is a unique-index violation.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_verified,
		COALESCE(reset_token, ''), reset_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.IsVerified, &u.ResetToken, &u.ResetExpires,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_verified, created_at, updated_at
	`, u.Email, u.Password, u.FirstName, u.LastName)

	if err := row.Scan(&u.ID, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4,
			is_verified = $5, reset_token = NULLIF($6, ''),
			reset_expires = $7, updated_at = $8
		WHERE id = $9
	`, u.Email, u.Password, u.FirstName, u.LastName, u.IsVerified,
		u.ResetToken, u.ResetExpires, u.UpdatedAt, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE reset_token = $1 AND reset_expires > $2
	`, token, now))
}

func (r *UserRepository) GetByEmailAndToken(ctx context.Context, email, token string, now time.Time) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND reset_token = $2 AND reset_expires > $3
	`, email, token, now))
}

func (r *UserRepository) BotCounts(ctx context.Context, id string) (int, int, error) {
	var owned, invited int
	row := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM bots WHERE user_created = $1),
			(SELECT count(*) FROM bot_moderators WHERE user_id = $1)
	`, id)
	if err := row.Scan(&owned, &invited); err != nil {
		return 0, 0, err
	}
	return owned, invited, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
