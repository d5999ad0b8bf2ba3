package application

import (
	"context"
	"errors"
	"time"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/infra/logging"
	"telegram-loyalty-bot/internal/infra/metrics"
	"telegram-loyalty-bot/internal/infra/redis"
	"telegram-loyalty-bot/internal/infra/worker"
	"telegram-loyalty-bot/internal/session"
	"telegram-loyalty-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Sender identifies the Telegram user behind one inbound update.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// inputLimiter throttles inbound updates per user; nil disables throttling.
type inputLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Engine is the conversation state machine: the single entry point for every
// inbound command, text, photo and callback. It registers the sender, resolves
// their role, locks their session and dispatches through the transition table.
type Engine struct {
	bot       adapter.TelegramBotAdapter
	qr        adapter.QRCodec
	users     usecase.UserUseCase
	roles     usecase.RoleUseCase
	loyalty   usecase.LoyaltyUseCase
	promos    usecase.PromotionUseCase
	baristas  usecase.BaristaUseCase
	broadcast usecase.BroadcastUseCase
	backup    usecase.BackupUseCase
	sessions  *session.Store
	pool      *worker.Pool
	limiter   inputLimiter
	table     map[model.State]stateSpec
	// rewardSticker, when set, is sent to the guest along with the free-drink
	// notification.
	rewardSticker string
	log           *zerolog.Logger
}

type Deps struct {
	Bot       adapter.TelegramBotAdapter
	QR        adapter.QRCodec
	Users     usecase.UserUseCase
	Roles     usecase.RoleUseCase
	Loyalty   usecase.LoyaltyUseCase
	Promos    usecase.PromotionUseCase
	Baristas  usecase.BaristaUseCase
	Broadcast usecase.BroadcastUseCase
	Backup    usecase.BackupUseCase
	Sessions  *session.Store
	Pool      *worker.Pool
	Limiter   *redis.RateLimiter
	// RewardSticker is an optional Telegram sticker file id for the reward
	// celebration message.
	RewardSticker string
	Logger        *zerolog.Logger
}

func NewEngine(d Deps) *Engine {
	e := &Engine{
		bot:           d.Bot,
		qr:            d.QR,
		users:         d.Users,
		roles:         d.Roles,
		loyalty:       d.Loyalty,
		promos:        d.Promos,
		baristas:      d.Baristas,
		broadcast:     d.Broadcast,
		backup:        d.Backup,
		sessions:      d.Sessions,
		pool:          d.Pool,
		rewardSticker: d.RewardSticker,
		log:           d.Logger,
	}
	if d.Limiter != nil {
		e.limiter = d.Limiter
	}
	e.table = newTransitionTable()
	return e
}

// turn is one inbound update being processed under the sender's session lock.
type turn struct {
	ctx     context.Context
	chatID  int64
	sender  Sender
	profile *model.UserProfile
	role    model.Role
	conv    *model.ConversationContext
	text    string
}

// Inbound text throttling. Generous: a human tapping buttons stays far below.
const (
	textLimit   = 30
	photoLimit  = 10
	limitWindow = time.Minute
)

// HandleCommand processes /start and /backup.
func (e *Engine) HandleCommand(ctx context.Context, from Sender, chatID int64, command string) error {
	t, unlock, err := e.begin(ctx, from, chatID, "")
	if err != nil {
		return err
	}
	defer unlock()
	metrics.IncUpdateHandled("command", string(t.role))

	switch command {
	case "start":
		t.conv.State = model.StateMain
		t.conv.ClearCustomer()
		return e.renderMainMenu(t)
	case "backup":
		if t.role != model.RoleAdmin {
			return e.say(t, textAccessDenied)
		}
		if _, err := e.backup.Run(t.ctx); err != nil {
			return e.say(t, textBackupFailed)
		}
		return nil
	default:
		// Unknown commands fall through to the state machine as plain text.
		return nil
	}
}

// HandleText dispatches one text message through the transition table.
func (e *Engine) HandleText(ctx context.Context, from Sender, chatID int64, text string) error {
	if ok := e.allow(ctx, from.ID, "text", textLimit); !ok {
		return nil
	}

	t, unlock, err := e.begin(ctx, from, chatID, text)
	if err != nil {
		return err
	}
	defer unlock()
	metrics.IncUpdateHandled("text", string(t.role))

	spec, ok := e.table[t.conv.State]
	if !ok {
		// Unknown state can only come from a bug; recover to main.
		e.log.Error().Str("state", string(t.conv.State)).Msg("state missing from transition table")
		t.conv.State = model.StateMain
		t.conv.ClearCustomer()
		return e.renderMainMenu(t)
	}
	if !spec.allows(t.role) {
		// Demoted mid-conversation: their privileged state is void.
		t.conv.State = model.StateMain
		t.conv.ClearCustomer()
		return e.renderMainMenu(t)
	}

	if tr, ok := spec.inputs[text]; ok && tr.allows(t.role) {
		return tr.handler(e, t)
	}
	return spec.fallback(e, t)
}

// HandlePhoto accepts QR-card photos from baristas and admins at any time.
// Clients get a pointer to their own QR button instead.
func (e *Engine) HandlePhoto(ctx context.Context, from Sender, chatID int64, messageID int, image []byte) error {
	if ok := e.allow(ctx, from.ID, "photo", photoLimit); !ok {
		return nil
	}

	t, unlock, err := e.begin(ctx, from, chatID, "")
	if err != nil {
		return err
	}
	defer unlock()
	metrics.IncUpdateHandled("photo", string(t.role))

	if t.role == model.RoleClient {
		return e.say(t, textClientPhotoHint)
	}

	payload, err := e.qr.Decode(t.ctx, image)
	if err != nil {
		metrics.IncQRDecodeFailure()
		e.log.Debug().Err(err).Int64("tg_id", from.ID).Msg("qr decode failed")
		return e.say(t, textQRDecodeFailed)
	}
	customerID, err := e.qr.ParsePayload(payload)
	if err != nil {
		metrics.IncQRDecodeFailure()
		return e.say(t, textQRBadPayload)
	}

	// The scanned photo shows someone's personal card; clean it up.
	e.deferDelete(model.MessageRef{ChatID: chatID, MessageID: messageID})

	return e.showCustomerCard(t, customerID)
}

// HandleCallback processes inline-keyboard presses. ref points at the message
// carrying the inline keyboard.
func (e *Engine) HandleCallback(ctx context.Context, from Sender, ref model.MessageRef, data string) error {
	t, unlock, err := e.begin(ctx, from, ref.ChatID, "")
	if err != nil {
		return err
	}
	defer unlock()
	metrics.IncUpdateHandled("callback", string(t.role))

	switch data {
	case cbBroadcastSend:
		return e.broadcastConfirmed(t, ref)
	case cbBroadcastCancel:
		return e.broadcastCanceled(t, ref)
	case cbBroadcastRetract:
		return e.broadcastRetract(t, ref)
	default:
		// Buttons from before a restart; the session behind them is gone.
		if err := e.bot.EditText(t.ctx, ref, textStaleMenu, nil); err != nil {
			e.log.Debug().Err(err).Msg("failed to edit stale menu")
		}
		t.conv.State = model.StateMain
		t.conv.ClearCustomer()
		return e.renderMainMenu(t)
	}
}

// begin registers the sender, resolves their role and locks their session.
func (e *Engine) begin(ctx context.Context, from Sender, chatID int64, text string) (*turn, func(), error) {
	profile, created, err := e.users.RegisterOrFetch(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		e.log.Error().Err(err).Int64("tg_id", from.ID).Msg("failed to register sender")
		return nil, nil, err
	}
	if created {
		metrics.IncUsersRegistered()
	}

	role, err := e.roles.Resolve(ctx, from.ID, from.Username)
	if err != nil {
		// Role resolution already fell back to client; keep going.
		e.log.Warn().Err(err).Int64("tg_id", from.ID).Msg("role resolution degraded")
	}

	conv, unlock := e.sessions.Lock(from.ID)
	ctx = logging.WithTgID(ctx, from.ID)
	ctx = logging.WithState(ctx, string(conv.State))
	return &turn{
		ctx:     ctx,
		chatID:  chatID,
		sender:  from,
		profile: profile,
		role:    role,
		conv:    conv,
		text:    text,
	}, unlock, nil
}

func (e *Engine) allow(ctx context.Context, tgID int64, kind string, limit int) bool {
	if e.limiter == nil {
		return true
	}
	ok, err := e.limiter.Allow(ctx, redis.UserInputKey(tgID, kind), limit, limitWindow)
	if err != nil {
		// Redis trouble must not take the bot down; let the update through.
		e.log.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
		e.log.Debug().Int64("tg_id", tgID).Str("kind", kind).Msg("update dropped by rate limit")
	}
	return ok
}

// say sends a plain text reply without touching the keyboard.
func (e *Engine) say(t *turn, text string) error {
	_, err := e.bot.SendText(t.ctx, adapter.SendTextParams{ChatID: t.chatID, Text: text})
	if err != nil {
		e.log.Warn().Err(err).Int64("chat_id", t.chatID).Msg("reply failed")
	}
	return err
}

func (e *Engine) sayWithKeyboard(t *turn, text string, kb adapter.ReplyKeyboard) error {
	_, err := e.bot.SendText(t.ctx, adapter.SendTextParams{ChatID: t.chatID, Text: text, Keyboard: kb})
	if err != nil {
		e.log.Warn().Err(err).Int64("chat_id", t.chatID).Msg("reply failed")
	}
	return err
}

// oops reports an internal failure to the user and logs the cause with the
// turn's context fields attached.
func (e *Engine) oops(t *turn, err error) error {
	logging.With(t.ctx, e.log).Error().Err(err).Str("user", t.profile.DisplayName()).Msg("handler failed")
	return e.say(t, textInternalError)
}

// deferDelete removes a message on the worker pool; failures are irrelevant.
func (e *Engine) deferDelete(ref model.MessageRef) {
	task := func(ctx context.Context) error {
		if err := e.bot.DeleteMessage(ctx, ref); err != nil {
			e.log.Debug().Err(err).Int64("chat_id", ref.ChatID).Msg("cleanup delete failed")
		}
		return nil
	}
	if err := e.pool.Submit(task); err != nil {
		e.log.Debug().Err(err).Msg("cleanup delete not queued")
	}
}

// notifyCustomer tells the guest about their updated card, off the handling
// path. Delivery failures are swallowed: the purchase is already recorded.
func (e *Engine) notifyCustomer(customerID int64, res *usecase.PurchaseResult) {
	task := func(ctx context.Context) error {
		if res.Rewarded && e.rewardSticker != "" {
			if _, err := e.bot.SendSticker(ctx, customerID, e.rewardSticker); err != nil {
				e.log.Debug().Err(err).Int64("tg_id", customerID).Msg("reward sticker failed")
			}
		}
		_, err := e.bot.SendText(ctx, adapter.SendTextParams{
			ChatID: customerID,
			Text:   customerNotification(res),
		})
		if err != nil {
			e.log.Warn().Err(err).Int64("tg_id", customerID).Msg("customer notification failed")
		}
		return nil
	}
	if err := e.pool.Submit(task); err != nil {
		e.log.Warn().Err(err).Int64("tg_id", customerID).Msg("customer notification not queued")
	}
}

// renderMainMenu shows the sender their role's home screen.
func (e *Engine) renderMainMenu(t *turn) error {
	switch t.role {
	case model.RoleAdmin:
		return e.sayWithKeyboard(t, textAdminMain, adminMainKeyboard())
	case model.RoleBarista:
		return e.sayWithKeyboard(t, textBaristaMain, baristaKeyboard(false))
	default:
		return e.sayWithKeyboard(t, textClientWelcome, clientKeyboard(false))
	}
}

// showCustomerCard renders the scanned guest's card and arms the
// confirm/revert actions.
func (e *Engine) showCustomerCard(t *turn, customerID int64) error {
	customer, err := e.users.GetByTelegramID(t.ctx, customerID)
	if err != nil {
		t.conv.State = model.StateMain
		t.conv.ClearCustomer()
		if errors.Is(err, domain.ErrNotFound) {
			if err := e.say(t, textCustomerNotFound); err != nil {
				return err
			}
			return e.renderMainMenu(t)
		}
		return e.oops(t, err)
	}

	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}

	t.conv.SetCustomer(customerID, customer.DisplayName())
	t.conv.State = model.StateBaristaAction
	return e.sayWithKeyboard(t,
		customerCard(customer.DisplayName(), customer.PurchasesCount, promo.RequiredPurchases),
		baristaActionKeyboard())
}
