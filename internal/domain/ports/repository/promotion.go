package repository

import (
	"context"

	"telegram-loyalty-bot/internal/domain/model"
)

// PromotionRepository reads and partially updates the single active promotion.
type PromotionRepository interface {
	GetActive(ctx context.Context, tx Tx) (*model.Promotion, error)
	// Update applies only the non-nil fields of upd to the active row.
	Update(ctx context.Context, tx Tx, upd model.PromotionUpdate) error
}
