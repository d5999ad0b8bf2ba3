package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-loyalty-bot/internal/application"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*Bot)(nil)

// Bot is the tgbotapi-backed transport: it implements the outbound adapter
// port and polls inbound updates, fanning them out to a bounded worker set
// that hands each update to the conversation engine.
type Bot struct {
	api     *tgbotapi.BotAPI
	engine  *application.Engine
	workers int
	cancel  context.CancelFunc
	log     *zerolog.Logger
}

func NewBot(token string, workers int, logger *zerolog.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	if workers <= 0 {
		workers = 5
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, workers: workers, log: logger}, nil
}

// AttachEngine wires the conversation engine. The engine needs the bot as its
// outbound adapter, so it is constructed after the bot and attached here.
func (b *Bot) AttachEngine(e *application.Engine) {
	b.engine = e
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (b *Bot) StartPolling(ctx context.Context) error {
	if b.engine == nil {
		return errors.New("no engine attached")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := b.handleUpdate(ctx, up); err != nil {
						b.log.Warn().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	b.log.Info().Str("username", b.api.Self.UserName).Int("workers", b.workers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (b *Bot) StopPolling() {
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	if up.CallbackQuery != nil {
		return b.handleCallback(ctx, up.CallbackQuery)
	}

	msg := up.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	from := application.Sender{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand():
		return b.engine.HandleCommand(ctx, from, chatID, msg.Command())
	case len(msg.Photo) > 0:
		image, err := b.downloadLargestPhoto(msg.Photo)
		if err != nil {
			b.log.Warn().Err(err).Int64("tg_id", from.ID).Msg("photo download failed")
			return err
		}
		return b.engine.HandlePhoto(ctx, from, chatID, msg.MessageID, image)
	case msg.Text != "":
		return b.engine.HandleText(ctx, from, chatID, msg.Text)
	default:
		return nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.From == nil {
		return errors.New("callback without sender")
	}
	// Stop the telegram spinner whatever happens next.
	defer func() { _, _ = b.api.Request(tgbotapi.NewCallback(q.ID, "")) }()

	if q.Message == nil {
		return nil
	}
	from := application.Sender{
		ID:        q.From.ID,
		Username:  q.From.UserName,
		FirstName: q.From.FirstName,
		LastName:  q.From.LastName,
	}
	ref := model.MessageRef{ChatID: q.Message.Chat.ID, MessageID: q.Message.MessageID}
	return b.engine.HandleCallback(ctx, from, ref, q.Data)
}

// downloadLargestPhoto fetches the highest-resolution rendition Telegram
// offers for the message.
func (b *Bot) downloadLargestPhoto(sizes []tgbotapi.PhotoSize) ([]byte, error) {
	if len(sizes) == 0 {
		return nil, errors.New("no photo sizes")
	}
	url, err := b.api.GetFileDirectURL(sizes[len(sizes)-1].FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch photo: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ---- outbound adapter port ----

func (b *Bot) SendText(ctx context.Context, p adapter.SendTextParams) (model.MessageRef, error) {
	select {
	case <-ctx.Done():
		return model.MessageRef{}, ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	switch {
	case len(p.Keyboard) > 0:
		msg.ReplyMarkup = replyMarkup(p.Keyboard)
	case len(p.Inline) > 0:
		msg.ReplyMarkup = inlineMarkup(p.Inline)
	case p.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: p.ChatID, MessageID: sent.MessageID}, nil
}

func (b *Bot) EditText(ctx context.Context, ref model.MessageRef, text string, inline [][]adapter.InlineButton) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if len(inline) > 0 {
		markup := inlineMarkup(inline)
		edit.ReplyMarkup = &markup
	}
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) SendPhoto(ctx context.Context, chatID int64, image []byte, caption string) (model.MessageRef, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qr.png", Bytes: image})
	photo.Caption = caption
	sent, err := b.api.Send(photo)
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (b *Bot) SendDocument(ctx context.Context, chatID int64, filePath, caption string) (model.MessageRef, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = caption
	sent, err := b.api.Send(doc)
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (b *Bot) SendSticker(ctx context.Context, chatID int64, stickerID string) (model.MessageRef, error) {
	sticker := tgbotapi.NewSticker(chatID, tgbotapi.FileID(stickerID))
	sent, err := b.api.Send(sticker)
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (b *Bot) DeleteMessage(ctx context.Context, ref model.MessageRef) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	return err
}

func replyMarkup(kb adapter.ReplyKeyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, row := range kb {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			r = append(r, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, r)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

func inlineMarkup(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		kbRows = append(kbRows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}
