package usecase

import (
	"context"
	"time"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/logging"
	"telegram-loyalty-bot/internal/infra/redis"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ LoyaltyUseCase = (*loyaltyUC)(nil)

// lockTTL bounds how long one counter mutation may hold a customer lock.
const lockTTL = 5 * time.Second

// PurchaseResult describes one counter mutation after wrap handling.
type PurchaseResult struct {
	NewCount int
	Required int
	// Rewarded is true when the increment reached the threshold: the drink
	// is free and the counter wrapped to zero.
	Rewarded bool
}

// LoyaltyUseCase owns the purchase counter. All mutations go through
// ApplyDelta; nothing else writes purchases_count.
type LoyaltyUseCase interface {
	// ApplyDelta changes the counter by delta (clamped at zero). A positive
	// delta that reaches the active promotion's threshold wraps the counter
	// to zero and reports a reward.
	ApplyDelta(ctx context.Context, customerID int64, delta int) (*PurchaseResult, error)
	// Progress returns the current counter and the active promotion for
	// rendering a progress screen.
	Progress(ctx context.Context, tgID int64) (int, *model.Promotion, error)
}

type loyaltyUC struct {
	users  repository.UserRepository
	promos repository.PromotionRepository
	tm     repository.TransactionManager
	locker redis.Locker
	log    *zerolog.Logger
}

func NewLoyaltyUseCase(
	users repository.UserRepository,
	promos repository.PromotionRepository,
	tm repository.TransactionManager,
	locker redis.Locker,
	logger *zerolog.Logger,
) *loyaltyUC {
	return &loyaltyUC{
		users:  users,
		promos: promos,
		tm:     tm,
		locker: locker,
		log:    logger,
	}
}

func (uc *loyaltyUC) ApplyDelta(ctx context.Context, customerID int64, delta int) (*PurchaseResult, error) {
	defer logging.TraceDuration(uc.log, "LoyaltyUC.ApplyDelta")()

	// Serialize per customer: two baristas scanning the same card at once
	// must not double-credit or mis-wrap the counter.
	key := redis.CustomerKey(customerID)
	token, err := uc.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := uc.locker.Unlock(ctx, key, token); err != nil {
			uc.log.Warn().Err(err).Int64("tg_id", customerID).Msg("failed to release customer lock")
		}
	}()

	var res *PurchaseResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		user, err := uc.users.FindByTelegramID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		promo, err := uc.promos.GetActive(ctx, tx)
		if err != nil {
			return err
		}
		if !promo.Usable() {
			return domain.ErrPromotionMisconfigured
		}

		newCount := user.PurchasesCount + delta
		if newCount < 0 {
			newCount = 0
		}
		rewarded := false
		if delta > 0 && newCount >= promo.RequiredPurchases {
			newCount = 0
			rewarded = true
		}
		if err := uc.users.SetPurchases(ctx, tx, customerID, newCount); err != nil {
			return err
		}
		res = &PurchaseResult{NewCount: newCount, Required: promo.RequiredPurchases, Rewarded: rewarded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("tg_id", customerID).
		Int("delta", delta).
		Int("new_count", res.NewCount).
		Bool("rewarded", res.Rewarded).
		Msg("purchase counter updated")
	return res, nil
}

func (uc *loyaltyUC) Progress(ctx context.Context, tgID int64) (int, *model.Promotion, error) {
	defer logging.TraceDuration(uc.log, "LoyaltyUC.Progress")()

	user, err := uc.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return 0, nil, err
	}
	promo, err := uc.promos.GetActive(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, err
	}
	return user.PurchasesCount, promo, nil
}
