package repository

import (
	"context"

	"telegram-loyalty-bot/internal/domain/model"
)

// UserRepository persists customer profiles and their purchase counters.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.UserProfile) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.UserProfile, error)
	// FindByUsernameExact matches the username without the leading @.
	FindByUsernameExact(ctx context.Context, tx Tx, username string) (*model.UserProfile, error)
	// SetPurchases overwrites the counter; callers are expected to hold the
	// per-customer lock and run inside a transaction.
	SetPurchases(ctx context.Context, tx Tx, tgID int64, count int) error
	List(ctx context.Context, tx Tx) ([]*model.UserProfile, error)
	ListIDs(ctx context.Context, tx Tx) ([]int64, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
