package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
)

var _ repository.BaristaRepository = (*PostgresBaristaRepo)(nil)

// Baristas are keyed by username; removal only flips is_active so a
// re-added barista keeps their original created_at.
type PostgresBaristaRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresBaristaRepo(pool *pgxpool.Pool) *PostgresBaristaRepo {
	return &PostgresBaristaRepo{pool: pool}
}

func (r *PostgresBaristaRepo) IsActive(ctx context.Context, tx repository.Tx, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	var one int
	err = ex.QueryRow(ctx, `SELECT 1 FROM baristas WHERE username=$1 AND is_active;`, username).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresBaristaRepo) Add(ctx context.Context, tx repository.Tx, b *model.Barista) error {
	const q = `
INSERT INTO baristas (username, first_name, last_name, is_active, created_at)
VALUES ($1,$2,$3,TRUE,$4)
ON CONFLICT (username) DO UPDATE SET
  first_name=$2, last_name=$3, is_active=TRUE;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, b.Username, b.FirstName, b.LastName, b.CreatedAt)
	return err
}

func (r *PostgresBaristaRepo) Remove(ctx context.Context, tx repository.Tx, username string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE baristas SET is_active=FALSE WHERE username=$1 AND is_active;`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresBaristaRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Barista, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT username, first_name, last_name, is_active, created_at FROM baristas WHERE is_active ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("list baristas: %w", err)
	}
	defer rows.Close()

	var out []*model.Barista
	for rows.Next() {
		var b model.Barista
		if err := rows.Scan(&b.Username, &b.FirstName, &b.LastName, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
