package repository

import (
	"context"

	"telegram-loyalty-bot/internal/domain/model"
)

// BaristaRepository is the allow-list behind barista role resolution.
// Removal is soft: rows flip to inactive and can be re-added later.
type BaristaRepository interface {
	IsActive(ctx context.Context, tx Tx, username string) (bool, error)
	Add(ctx context.Context, tx Tx, b *model.Barista) error
	// Remove deactivates; returns domain.ErrNotFound when no active row matched.
	Remove(ctx context.Context, tx Tx, username string) error
	ListActive(ctx context.Context, tx Tx) ([]*model.Barista, error)
}
