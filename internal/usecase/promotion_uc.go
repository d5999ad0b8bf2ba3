package usecase

import (
	"context"
	"strconv"
	"strings"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ PromotionUseCase = (*promotionUC)(nil)

// PromotionUseCase reads and edits the single active promotion. Edits apply
// immediately: the next progress screen anyone opens reflects them.
type PromotionUseCase interface {
	Get(ctx context.Context) (*model.Promotion, error)
	Rename(ctx context.Context, name string) error
	Redescribe(ctx context.Context, description string) error
	// SetThreshold parses raw user input and validates the bounds before
	// storing; returns the accepted value.
	SetThreshold(ctx context.Context, raw string) (int, error)
}

type promotionUC struct {
	promos repository.PromotionRepository
	log    *zerolog.Logger
}

func NewPromotionUseCase(promos repository.PromotionRepository, logger *zerolog.Logger) *promotionUC {
	return &promotionUC{promos: promos, log: logger}
}

func (uc *promotionUC) Get(ctx context.Context) (*model.Promotion, error) {
	defer logging.TraceDuration(uc.log, "PromotionUC.Get")()
	return uc.promos.GetActive(ctx, repository.NoTX)
}

func (uc *promotionUC) Rename(ctx context.Context, name string) error {
	defer logging.TraceDuration(uc.log, "PromotionUC.Rename")()

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.promos.Update(ctx, repository.NoTX, model.PromotionUpdate{Name: &name}); err != nil {
		return err
	}
	uc.log.Info().Str("name", name).Msg("promotion renamed")
	return nil
}

func (uc *promotionUC) Redescribe(ctx context.Context, description string) error {
	defer logging.TraceDuration(uc.log, "PromotionUC.Redescribe")()

	description = strings.TrimSpace(description)
	if description == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.promos.Update(ctx, repository.NoTX, model.PromotionUpdate{Description: &description}); err != nil {
		return err
	}
	uc.log.Info().Msg("promotion description updated")
	return nil
}

func (uc *promotionUC) SetThreshold(ctx context.Context, raw string) (int, error) {
	defer logging.TraceDuration(uc.log, "PromotionUC.SetThreshold")()

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	if err := model.ValidateThreshold(n); err != nil {
		return 0, err
	}
	if err := uc.promos.Update(ctx, repository.NoTX, model.PromotionUpdate{RequiredPurchases: &n}); err != nil {
		return 0, err
	}
	uc.log.Info().Int("required_purchases", n).Msg("promotion threshold updated")
	return n, nil
}
