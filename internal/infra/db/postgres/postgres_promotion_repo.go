package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
)

var _ repository.PromotionRepository = (*PostgresPromotionRepo)(nil)

type PostgresPromotionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPromotionRepo(pool *pgxpool.Pool) *PostgresPromotionRepo {
	return &PostgresPromotionRepo{pool: pool}
}

func (r *PostgresPromotionRepo) GetActive(ctx context.Context, tx repository.Tx) (*model.Promotion, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Promotion
	err = ex.QueryRow(ctx, `
SELECT id, name, required_purchases, description, is_active
  FROM promotions WHERE is_active LIMIT 1;`).
		Scan(&p.ID, &p.Name, &p.RequiredPurchases, &p.Description, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update writes only the fields present in upd; omitted fields keep their
// stored values (partial update semantics).
func (r *PostgresPromotionRepo) Update(ctx context.Context, tx repository.Tx, upd model.PromotionUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if upd.RequiredPurchases != nil {
		if err := model.ValidateThreshold(*upd.RequiredPurchases); err != nil {
			return err
		}
		args = append(args, *upd.RequiredPurchases)
		sets = append(sets, fmt.Sprintf("required_purchases=$%d", len(args)))
	}

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	q := `UPDATE promotions SET ` + strings.Join(sets, ", ") + ` WHERE is_active;`
	tag, err := ex.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
