package usecase

import (
	"context"

	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ RoleUseCase = (*roleUC)(nil)

// RoleUseCase resolves who the caller is on every single interaction.
// Roles are never cached: removing a barista takes effect on their next
// message.
type RoleUseCase interface {
	Resolve(ctx context.Context, tgID int64, username string) (model.Role, error)
}

type roleUC struct {
	admins   model.AdminSet
	baristas repository.BaristaRepository
	log      *zerolog.Logger
}

func NewRoleUseCase(admins model.AdminSet, baristas repository.BaristaRepository, logger *zerolog.Logger) *roleUC {
	return &roleUC{
		admins:   admins,
		baristas: baristas,
		log:      logger,
	}
}

// Resolve precedence: admin allow-list, then active barista row, then client.
// An admin who also works the bar is still an admin.
func (r *roleUC) Resolve(ctx context.Context, tgID int64, username string) (model.Role, error) {
	if r.admins.Contains(tgID) {
		return model.RoleAdmin, nil
	}
	ok, err := r.baristas.IsActive(ctx, repository.NoTX, NormalizeUsername(username))
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("barista lookup failed, defaulting to client")
		return model.RoleClient, err
	}
	if ok {
		return model.RoleBarista, nil
	}
	return model.RoleClient, nil
}
