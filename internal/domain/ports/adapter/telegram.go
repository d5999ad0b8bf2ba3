package adapter

import (
	"context"

	"telegram-loyalty-bot/internal/domain/model"
)

// InlineButton is one inline-keyboard button; Data carries callback payload.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// ReplyKeyboard is a persistent reply keyboard: rows of button labels.
type ReplyKeyboard [][]string

// SendTextParams describes one outbound text message. At most one of
// Keyboard / Inline is set; RemoveKeyboard drops any persistent keyboard.
type SendTextParams struct {
	ChatID         int64
	Text           string
	Keyboard       ReplyKeyboard
	Inline         [][]InlineButton
	RemoveKeyboard bool
}

// TelegramBotAdapter is the transport boundary. Every send returns a
// MessageRef usable for later edit or delete. Any call may fail; callers
// treat failures as non-fatal on cleanup paths and as user-visible errors on
// primary replies.
type TelegramBotAdapter interface {
	SendText(ctx context.Context, p SendTextParams) (model.MessageRef, error)
	EditText(ctx context.Context, ref model.MessageRef, text string, inline [][]InlineButton) error
	SendPhoto(ctx context.Context, chatID int64, image []byte, caption string) (model.MessageRef, error)
	SendDocument(ctx context.Context, chatID int64, filePath, caption string) (model.MessageRef, error)
	SendSticker(ctx context.Context, chatID int64, stickerID string) (model.MessageRef, error)
	DeleteMessage(ctx context.Context, ref model.MessageRef) error
}
