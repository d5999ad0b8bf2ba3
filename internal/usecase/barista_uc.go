package usecase

import (
	"context"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ BaristaUseCase = (*baristaUC)(nil)

// BaristaUseCase manages the barista allow-list.
type BaristaUseCase interface {
	// Add grants the role to a username, reactivating a previously removed
	// barista if one exists.
	Add(ctx context.Context, username, firstName, lastName string) error
	// Remove deactivates; domain.ErrNotFound when the username was not an
	// active barista.
	Remove(ctx context.Context, username string) error
	ListActive(ctx context.Context) ([]*model.Barista, error)
}

type baristaUC struct {
	baristas repository.BaristaRepository
	log      *zerolog.Logger
}

func NewBaristaUseCase(baristas repository.BaristaRepository, logger *zerolog.Logger) *baristaUC {
	return &baristaUC{baristas: baristas, log: logger}
}

func (uc *baristaUC) Add(ctx context.Context, username, firstName, lastName string) error {
	defer logging.TraceDuration(uc.log, "BaristaUC.Add")()

	username = NormalizeUsername(username)
	if username == "" {
		return domain.ErrInvalidArgument
	}
	b, err := model.NewBarista(username, firstName, lastName)
	if err != nil {
		return err
	}
	if err := uc.baristas.Add(ctx, repository.NoTX, b); err != nil {
		return err
	}
	uc.log.Info().Str("username", username).Msg("barista added")
	return nil
}

func (uc *baristaUC) Remove(ctx context.Context, username string) error {
	defer logging.TraceDuration(uc.log, "BaristaUC.Remove")()

	username = NormalizeUsername(username)
	if username == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.baristas.Remove(ctx, repository.NoTX, username); err != nil {
		return err
	}
	uc.log.Info().Str("username", username).Msg("barista removed")
	return nil
}

func (uc *baristaUC) ListActive(ctx context.Context) ([]*model.Barista, error) {
	defer logging.TraceDuration(uc.log, "BaristaUC.ListActive")()
	return uc.baristas.ListActive(ctx, repository.NoTX)
}
