package telegram

import (
	"context"
	"sync/atomic"

	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBot)(nil)

// NoopBot satisfies the adapter port without network access. Used when
// running without a token (local development) and as a base for test doubles.
type NoopBot struct {
	seq int64
}

func NewNoopBot() *NoopBot { return &NoopBot{} }

func (n *NoopBot) nextRef(chatID int64) model.MessageRef {
	return model.MessageRef{ChatID: chatID, MessageID: int(atomic.AddInt64(&n.seq, 1))}
}

func (n *NoopBot) SendText(_ context.Context, p adapter.SendTextParams) (model.MessageRef, error) {
	return n.nextRef(p.ChatID), nil
}

func (n *NoopBot) EditText(context.Context, model.MessageRef, string, [][]adapter.InlineButton) error {
	return nil
}

func (n *NoopBot) SendPhoto(_ context.Context, chatID int64, _ []byte, _ string) (model.MessageRef, error) {
	return n.nextRef(chatID), nil
}

func (n *NoopBot) SendDocument(_ context.Context, chatID int64, _, _ string) (model.MessageRef, error) {
	return n.nextRef(chatID), nil
}

func (n *NoopBot) SendSticker(_ context.Context, chatID int64, _ string) (model.MessageRef, error) {
	return n.nextRef(chatID), nil
}

func (n *NoopBot) DeleteMessage(context.Context, model.MessageRef) error { return nil }
