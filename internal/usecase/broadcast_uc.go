package usecase

import (
	"context"
	"sync"
	"time"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/domain/ports/repository"
	"telegram-loyalty-bot/internal/infra/worker"

	"github.com/rs/zerolog"
)

var _ BroadcastUseCase = (*broadcastUC)(nil)

// BroadcastReport summarizes one delivery run. Refs holds a reference for
// every message that went out, in case the admin retracts the broadcast.
type BroadcastReport struct {
	Sent   int
	Failed int
	Refs   []model.MessageRef
}

// BroadcastUseCase delivers one message to every known user except the
// sender and can bulk-delete the last delivery.
type BroadcastUseCase interface {
	// Send blocks until every delivery attempt has finished. A failed send
	// (blocked bot, deleted account) is counted, not fatal.
	Send(ctx context.Context, senderID int64, text string) (*BroadcastReport, error)
	// Retract deletes previously sent broadcast messages; returns how many
	// deletes succeeded. domain.ErrNoBroadcastPending when refs is empty.
	Retract(ctx context.Context, refs []model.MessageRef) (int, error)
}

type broadcastUC struct {
	users      repository.UserRepository
	bot        adapter.TelegramBotAdapter
	workerPool *worker.Pool
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	users repository.UserRepository,
	bot adapter.TelegramBotAdapter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *broadcastUC {
	return &broadcastUC{
		users:      users,
		bot:        bot,
		workerPool: pool,
		log:        logger,
	}
}

func (uc *broadcastUC) Send(ctx context.Context, senderID int64, text string) (*BroadcastReport, error) {
	ids, err := uc.users.ListIDs(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to list customers for broadcast")
		return nil, err
	}

	// Everyone but the sender: other admins and baristas are guests of the
	// announcement too.
	var targets []int64
	for _, id := range ids {
		if id == senderID {
			continue
		}
		targets = append(targets, id)
	}
	uc.log.Info().Int("targets", len(targets)).Msg("starting broadcast")

	// Throttle to respect Telegram's API limits (approx. 30 messages/sec)
	throttle := time.NewTicker(time.Second / 25)
	defer throttle.Stop()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report BroadcastReport
	)
	for _, id := range targets {
		select {
		case <-ctx.Done():
			wg.Wait()
			return &report, ctx.Err()
		case <-throttle.C:
		}

		id := id
		wg.Add(1)
		task := func(taskCtx context.Context) error {
			defer wg.Done()
			ref, err := uc.bot.SendText(taskCtx, adapter.SendTextParams{ChatID: id, Text: text})
			mu.Lock()
			if err != nil {
				report.Failed++
			} else {
				report.Sent++
				report.Refs = append(report.Refs, ref)
			}
			mu.Unlock()
			if err != nil {
				uc.log.Warn().Err(err).Int64("tg_id", id).Msg("broadcast delivery failed")
			}
			return nil
		}
		if err := uc.workerPool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			report.Failed++
			mu.Unlock()
			uc.log.Warn().Err(err).Int64("tg_id", id).Msg("failed to queue broadcast delivery")
		}
	}
	wg.Wait()

	uc.log.Info().Int("sent", report.Sent).Int("failed", report.Failed).Msg("broadcast finished")
	return &report, nil
}

func (uc *broadcastUC) Retract(ctx context.Context, refs []model.MessageRef) (int, error) {
	if len(refs) == 0 {
		return 0, domain.ErrNoBroadcastPending
	}
	deleted := 0
	for _, ref := range refs {
		if err := uc.bot.DeleteMessage(ctx, ref); err != nil {
			// The user may have deleted the chat; nothing to do.
			uc.log.Warn().Err(err).Int64("chat_id", ref.ChatID).Int("message_id", ref.MessageID).Msg("retract delete failed")
			continue
		}
		deleted++
	}
	uc.log.Info().Int("deleted", deleted).Int("total", len(refs)).Msg("broadcast retracted")
	return deleted, nil
}
