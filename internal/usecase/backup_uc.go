package usecase

import (
	"context"
	"path/filepath"

	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ BackupUseCase = (*backupUC)(nil)

// BackupUseCase produces a database snapshot, delivers it to the admins and
// prunes old snapshots. It runs on the daily schedule and on demand.
type BackupUseCase interface {
	Run(ctx context.Context) (string, error)
}

type backupUC struct {
	maint  repository.MaintenanceRepository
	bot    adapter.TelegramBotAdapter
	admins []int64
	keep   int
	log    *zerolog.Logger
}

func NewBackupUseCase(
	maint repository.MaintenanceRepository,
	bot adapter.TelegramBotAdapter,
	adminIDs []int64,
	keep int,
	logger *zerolog.Logger,
) *backupUC {
	return &backupUC{
		maint:  maint,
		bot:    bot,
		admins: adminIDs,
		keep:   keep,
		log:    logger,
	}
}

func (uc *backupUC) Run(ctx context.Context) (string, error) {
	defer logging.TraceDuration(uc.log, "BackupUC.Run")()

	path, err := uc.maint.Snapshot(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("database snapshot failed")
		return "", err
	}
	uc.log.Info().Str("file", filepath.Base(path)).Msg("database snapshot created")

	for _, adminID := range uc.admins {
		if _, err := uc.bot.SendDocument(ctx, adminID, path, "Резервная копия базы данных"); err != nil {
			// Delivery failure does not invalidate the snapshot on disk.
			uc.log.Warn().Err(err).Int64("tg_id", adminID).Msg("failed to deliver snapshot")
		}
	}

	if n, err := uc.maint.PruneSnapshots(ctx, uc.keep); err != nil {
		uc.log.Warn().Err(err).Msg("snapshot pruning failed")
	} else if n > 0 {
		uc.log.Info().Int("pruned", n).Msg("old snapshots pruned")
	}
	return path, nil
}
