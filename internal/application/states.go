package application

import (
	"errors"
	"fmt"
	"strings"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
	"telegram-loyalty-bot/internal/infra/metrics"
	"telegram-loyalty-bot/internal/usecase"
)

type handlerFunc func(e *Engine, t *turn) error

// transition binds one button press to a handler, optionally restricted to
// certain roles. A press by a disallowed role falls through to the state's
// fallback.
type transition struct {
	roles   []model.Role
	handler handlerFunc
}

func (tr transition) allows(role model.Role) bool {
	return allowsRole(tr.roles, role)
}

// stateSpec is one row of the transition table. Every state must have a
// fallback; input-collection states consume unrecognized text as payload,
// menu states re-render themselves.
type stateSpec struct {
	roles    []model.Role
	inputs   map[string]transition
	fallback handlerFunc
}

func (s stateSpec) allows(role model.Role) bool {
	return allowsRole(s.roles, role)
}

func allowsRole(roles []model.Role, role model.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	adminOnly = []model.Role{model.RoleAdmin}
	staffOnly = []model.Role{model.RoleAdmin, model.RoleBarista}
)

func newTransitionTable() map[model.State]stateSpec {
	return map[model.State]stateSpec{
		model.StateMain: {
			inputs: map[string]transition{
				btnMyQR:          {handler: (*Engine).sendOwnQR},
				btnClientPromo:   {handler: (*Engine).showClientPromo},
				btnBaristaPromo:  {roles: staffOnly, handler: (*Engine).showBaristaPromo},
				btnBaristas:      {roles: adminOnly, handler: (*Engine).openBaristas},
				btnCustomers:     {roles: adminOnly, handler: (*Engine).openCustomers},
				btnBroadcast:     {roles: adminOnly, handler: (*Engine).openBroadcast},
				btnSettings:      {roles: adminOnly, handler: (*Engine).openSettings},
			},
			fallback: (*Engine).renderMainMenu,
		},

		model.StateClientMode: {
			inputs: map[string]transition{
				btnMyQR:        {handler: (*Engine).sendOwnQR},
				btnClientPromo: {handler: (*Engine).showClientPromo},
				btnBack:        {roles: adminOnly, handler: (*Engine).backToSettings},
			},
			fallback: (*Engine).renderClientPreview,
		},

		model.StateBaristaMode: {
			roles: staffOnly,
			inputs: map[string]transition{
				btnBaristaPromo: {handler: (*Engine).showBaristaPromo},
				btnBack:         {roles: adminOnly, handler: (*Engine).backToSettings},
			},
			fallback: (*Engine).renderBaristaPreview,
		},

		model.StateBaristaAction: {
			roles: staffOnly,
			inputs: map[string]transition{
				btnConfirmDrink: {handler: (*Engine).confirmPurchase},
				btnRevertDrink:  {handler: (*Engine).revertPurchase},
				btnBack:         {handler: (*Engine).backFromAction},
			},
			fallback: (*Engine).reshowCustomerCard,
		},

		model.StateAdminBarista: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnAddBarista:    {handler: (*Engine).promptAddBarista},
				btnRemoveBarista: {handler: (*Engine).promptRemoveBarista},
				btnListBaristas:  {handler: (*Engine).listBaristas},
				btnBack:          {handler: (*Engine).backToAdminMain},
			},
			fallback: (*Engine).listBaristas,
		},

		model.StateAddingBarista: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToBaristaMenu},
			},
			fallback: (*Engine).addBaristaInput,
		},

		model.StateRemovingBarista: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToBaristaMenu},
			},
			fallback: (*Engine).removeBaristaInput,
		},

		model.StateAdminCustomers: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnFindCustomer: {handler: (*Engine).promptFindCustomer},
				btnBack:         {handler: (*Engine).backToAdminMain},
			},
			fallback: (*Engine).listCustomers,
		},

		model.StateFindingCustomer: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToCustomersMenu},
			},
			fallback: (*Engine).findCustomerInput,
		},

		model.StateAdminCustomerActions: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnAddPurchase: {handler: (*Engine).adjustCustomerUp},
				btnRevertDrink: {handler: (*Engine).adjustCustomerDown},
				btnBack:        {handler: (*Engine).cancelToCustomersMenu},
			},
			fallback: (*Engine).reshowAdjustedCustomer,
		},

		model.StateAdminSettings: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnEditPromo:   {handler: (*Engine).openPromotionManagement},
				btnClientView:  {handler: (*Engine).enterClientPreview},
				btnBaristaView: {handler: (*Engine).enterBaristaPreview},
				btnBack:        {handler: (*Engine).backToAdminMain},
			},
			fallback: (*Engine).renderSettings,
		},

		model.StatePromotionManagement: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnPromoName: {handler: (*Engine).promptPromoName},
				btnPromoCond: {handler: (*Engine).promptPromoCond},
				btnPromoDesc: {handler: (*Engine).promptPromoDesc},
				btnBack:      {handler: (*Engine).backToSettings},
			},
			fallback: (*Engine).renderPromotionManagement,
		},

		model.StateChangingPromoName: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToPromotionMenu},
			},
			fallback: (*Engine).promoNameInput,
		},

		model.StateChangingPromoDesc: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToPromotionMenu},
			},
			fallback: (*Engine).promoDescInput,
		},

		model.StateChangingPromoCond: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelToPromotionMenu},
			},
			fallback: (*Engine).promoCondInput,
		},

		model.StateBroadcastMessage: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelBroadcast},
			},
			fallback: (*Engine).composeBroadcast,
		},

		model.StateBroadcastPreview: {
			roles: adminOnly,
			inputs: map[string]transition{
				btnBack: {handler: (*Engine).cancelBroadcast},
			},
			fallback: (*Engine).reshowBroadcastPreview,
		},
	}
}

// menuButtons guards payload states against swallowing a stray button press
// as input.
var menuButtons = map[string]struct{}{
	btnMyQR: {}, btnClientPromo: {}, btnBaristaPromo: {}, btnBack: {},
	btnConfirmDrink: {}, btnRevertDrink: {}, btnAddPurchase: {},
	btnBaristas: {}, btnCustomers: {}, btnBroadcast: {}, btnSettings: {},
	btnAddBarista: {}, btnRemoveBarista: {}, btnListBaristas: {},
	btnFindCustomer: {}, btnEditPromo: {}, btnClientView: {}, btnBaristaView: {},
	btnPromoName: {}, btnPromoCond: {}, btnPromoDesc: {},
}

func isMenuButton(text string) bool {
	_, ok := menuButtons[text]
	return ok
}

// ---- main menu ----

func (e *Engine) sendOwnQR(t *turn) error {
	png, err := e.qr.Encode(e.qr.Payload(t.sender.ID))
	if err != nil {
		return e.oops(t, err)
	}
	if _, err := e.bot.SendPhoto(t.ctx, t.chatID, png, textQRCaption); err != nil {
		e.log.Warn().Err(err).Int64("chat_id", t.chatID).Msg("qr delivery failed")
		return err
	}
	return nil
}

func (e *Engine) showClientPromo(t *turn) error {
	count, promo, err := e.loyalty.Progress(t.ctx, t.sender.ID)
	if err != nil {
		return e.oops(t, err)
	}
	return e.say(t, clientPromotionText(promo, count))
}

func (e *Engine) showBaristaPromo(t *turn) error {
	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	return e.say(t, baristaPromotionText(promo))
}

func (e *Engine) openBaristas(t *turn) error {
	t.conv.State = model.StateAdminBarista
	return e.listBaristas(t)
}

func (e *Engine) openCustomers(t *turn) error {
	t.conv.State = model.StateAdminCustomers
	return e.listCustomers(t)
}

func (e *Engine) openBroadcast(t *turn) error {
	t.conv.State = model.StateBroadcastMessage
	return e.sayWithKeyboard(t, textPromptBroadcast, backOnlyKeyboard())
}

func (e *Engine) openSettings(t *turn) error {
	t.conv.State = model.StateAdminSettings
	return e.renderSettings(t)
}

func (e *Engine) backToAdminMain(t *turn) error {
	t.conv.State = model.StateMain
	return e.renderMainMenu(t)
}

// ---- admin preview modes ----

func (e *Engine) renderClientPreview(t *turn) error {
	return e.sayWithKeyboard(t, textClientWelcome, clientKeyboard(t.role == model.RoleAdmin))
}

func (e *Engine) renderBaristaPreview(t *turn) error {
	return e.sayWithKeyboard(t, textBaristaMain, baristaKeyboard(t.role == model.RoleAdmin))
}

func (e *Engine) enterClientPreview(t *turn) error {
	t.conv.State = model.StateClientMode
	return e.renderClientPreview(t)
}

func (e *Engine) enterBaristaPreview(t *turn) error {
	t.conv.State = model.StateBaristaMode
	return e.renderBaristaPreview(t)
}

func (e *Engine) backToSettings(t *turn) error {
	t.conv.State = model.StateAdminSettings
	return e.renderSettings(t)
}

// ---- scanned-card actions ----

func (e *Engine) confirmPurchase(t *turn) error {
	return e.applyScanDelta(t, +1)
}

func (e *Engine) revertPurchase(t *turn) error {
	return e.applyScanDelta(t, -1)
}

func (e *Engine) applyScanDelta(t *turn, delta int) error {
	customerID := t.conv.CurrentCustomer
	if customerID == 0 {
		t.conv.State = model.StateMain
		return e.renderMainMenu(t)
	}

	res, err := e.loyalty.ApplyDelta(t.ctx, customerID, delta)
	if err != nil {
		return e.reportCounterError(t, err)
	}
	e.recordCounterMetrics(delta, res)

	var reply string
	if delta > 0 {
		reply = purchaseAppliedText(res)
		e.notifyCustomer(customerID, res)
	} else {
		reply = purchaseRevertedText(res)
	}
	if err := e.say(t, reply); err != nil {
		return err
	}

	t.conv.ClearCustomer()
	t.conv.State = model.StateMain
	return e.renderMainMenu(t)
}

func (e *Engine) backFromAction(t *turn) error {
	t.conv.ClearCustomer()
	t.conv.State = model.StateMain
	if err := e.say(t, textBackToMenu); err != nil {
		return err
	}
	return e.renderMainMenu(t)
}

func (e *Engine) reshowCustomerCard(t *turn) error {
	if t.conv.CurrentCustomer == 0 {
		t.conv.State = model.StateMain
		return e.renderMainMenu(t)
	}
	return e.showCustomerCard(t, t.conv.CurrentCustomer)
}

func (e *Engine) reportCounterError(t *turn, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		t.conv.ClearCustomer()
		t.conv.State = model.StateMain
		if err := e.say(t, textCustomerNotFound); err != nil {
			return err
		}
		return e.renderMainMenu(t)
	case errors.Is(err, domain.ErrLockBusy):
		return e.say(t, textCounterBusy)
	case errors.Is(err, domain.ErrPromotionMisconfigured):
		return e.say(t, textPromoBroken)
	default:
		return e.oops(t, err)
	}
}

func (e *Engine) recordCounterMetrics(delta int, res *usecase.PurchaseResult) {
	if delta > 0 {
		metrics.IncPurchaseApplied("up")
	} else {
		metrics.IncPurchaseApplied("down")
	}
	if res.Rewarded {
		metrics.IncRewardGranted()
	}
}

// ---- barista management ----

func (e *Engine) listBaristas(t *turn) error {
	list, err := e.baristas.ListActive(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	return e.sayWithKeyboard(t, baristaListText(list), adminBaristaKeyboard())
}

func (e *Engine) promptAddBarista(t *turn) error {
	t.conv.State = model.StateAddingBarista
	return e.sayWithKeyboard(t, textPromptAddBarista, backOnlyKeyboard())
}

func (e *Engine) promptRemoveBarista(t *turn) error {
	t.conv.State = model.StateRemovingBarista
	return e.sayWithKeyboard(t, textPromptRmBarista, backOnlyKeyboard())
}

func (e *Engine) cancelToBaristaMenu(t *turn) error {
	t.conv.State = model.StateAdminBarista
	return e.listBaristas(t)
}

func (e *Engine) addBaristaInput(t *turn) error {
	username := usecase.NormalizeUsername(t.text)
	if username == "" || isMenuButton(t.text) {
		return e.say(t, textBadUsername)
	}
	if err := e.baristas.Add(t.ctx, username, "Бариста", ""); err != nil {
		return e.oops(t, err)
	}
	if err := e.say(t, fmt.Sprintf("✅ Бариста @%s успешно добавлен!", username)); err != nil {
		return err
	}
	t.conv.State = model.StateAdminBarista
	return e.listBaristas(t)
}

func (e *Engine) removeBaristaInput(t *turn) error {
	username := usecase.NormalizeUsername(t.text)
	if username == "" || isMenuButton(t.text) {
		return e.say(t, textBadUsername)
	}
	if err := e.baristas.Remove(t.ctx, username); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := e.say(t, textBaristaNotFound); err != nil {
				return err
			}
			t.conv.State = model.StateAdminBarista
			return e.listBaristas(t)
		}
		return e.oops(t, err)
	}
	if err := e.say(t, fmt.Sprintf("✅ Бариста @%s успешно удалён!", username)); err != nil {
		return err
	}
	t.conv.State = model.StateAdminBarista
	return e.listBaristas(t)
}

// ---- customer management ----

func (e *Engine) listCustomers(t *turn) error {
	users, err := e.users.List(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	return e.sayWithKeyboard(t, customersListText(users, promo.RequiredPurchases), adminCustomersKeyboard())
}

func (e *Engine) promptFindCustomer(t *turn) error {
	t.conv.State = model.StateFindingCustomer
	return e.sayWithKeyboard(t, textPromptFindUser, backOnlyKeyboard())
}

func (e *Engine) cancelToCustomersMenu(t *turn) error {
	t.conv.ClearCustomer()
	t.conv.State = model.StateAdminCustomers
	return e.listCustomers(t)
}

func (e *Engine) findCustomerInput(t *turn) error {
	username := usecase.NormalizeUsername(t.text)
	if username == "" || isMenuButton(t.text) {
		return e.say(t, textBadUsername)
	}
	customer, err := e.users.FindByUsername(t.ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return e.say(t, textUserNotFound)
		}
		return e.oops(t, err)
	}
	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}

	t.conv.SetCustomer(customer.TelegramID, customer.DisplayName())
	t.conv.State = model.StateAdminCustomerActions
	return e.sayWithKeyboard(t,
		customerCard(customer.DisplayName(), customer.PurchasesCount, promo.RequiredPurchases),
		adminCustomerActionsKeyboard())
}

func (e *Engine) adjustCustomerUp(t *turn) error {
	return e.adjustCustomer(t, +1)
}

func (e *Engine) adjustCustomerDown(t *turn) error {
	return e.adjustCustomer(t, -1)
}

// adjustCustomer changes the found customer's counter and stays in place so
// the admin can keep adjusting.
func (e *Engine) adjustCustomer(t *turn, delta int) error {
	customerID := t.conv.CurrentCustomer
	if customerID == 0 {
		t.conv.State = model.StateAdminCustomers
		return e.listCustomers(t)
	}
	res, err := e.loyalty.ApplyDelta(t.ctx, customerID, delta)
	if err != nil {
		return e.reportCounterError(t, err)
	}
	e.recordCounterMetrics(delta, res)
	return e.sayWithKeyboard(t, adjustedCard(t.conv.CurrentUsername, res), adminCustomerActionsKeyboard())
}

func (e *Engine) reshowAdjustedCustomer(t *turn) error {
	customerID := t.conv.CurrentCustomer
	if customerID == 0 {
		t.conv.State = model.StateAdminCustomers
		return e.listCustomers(t)
	}
	count, promo, err := e.loyalty.Progress(t.ctx, customerID)
	if err != nil {
		return e.reportCounterError(t, err)
	}
	return e.sayWithKeyboard(t,
		customerCard(t.conv.CurrentUsername, count, promo.RequiredPurchases),
		adminCustomerActionsKeyboard())
}

// ---- settings and promotion editing ----

func (e *Engine) renderSettings(t *turn) error {
	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	guests, err := e.users.Count(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	return e.sayWithKeyboard(t, settingsText(promo, guests), adminSettingsKeyboard())
}

func (e *Engine) renderPromotionManagement(t *turn) error {
	promo, err := e.promos.Get(t.ctx)
	if err != nil {
		return e.oops(t, err)
	}
	return e.sayWithKeyboard(t, promotionManagementText(promo), promotionKeyboard())
}

func (e *Engine) openPromotionManagement(t *turn) error {
	t.conv.State = model.StatePromotionManagement
	return e.renderPromotionManagement(t)
}

func (e *Engine) cancelToPromotionMenu(t *turn) error {
	t.conv.State = model.StatePromotionManagement
	return e.renderPromotionManagement(t)
}

func (e *Engine) promptPromoName(t *turn) error {
	t.conv.State = model.StateChangingPromoName
	return e.sayWithKeyboard(t, textPromptPromoName, backOnlyKeyboard())
}

func (e *Engine) promptPromoDesc(t *turn) error {
	t.conv.State = model.StateChangingPromoDesc
	return e.sayWithKeyboard(t, textPromptPromoDesc, backOnlyKeyboard())
}

func (e *Engine) promptPromoCond(t *turn) error {
	t.conv.State = model.StateChangingPromoCond
	return e.sayWithKeyboard(t, textPromptPromoCond, backOnlyKeyboard())
}

func (e *Engine) promoNameInput(t *turn) error {
	if strings.TrimSpace(t.text) == "" || isMenuButton(t.text) {
		return e.say(t, textPromptPromoName)
	}
	if err := e.promos.Rename(t.ctx, t.text); err != nil {
		return e.oops(t, err)
	}
	if err := e.say(t, "✅ Название акции обновлено!"); err != nil {
		return err
	}
	t.conv.State = model.StatePromotionManagement
	return e.renderPromotionManagement(t)
}

func (e *Engine) promoDescInput(t *turn) error {
	if strings.TrimSpace(t.text) == "" || isMenuButton(t.text) {
		return e.say(t, textPromptPromoDesc)
	}
	if err := e.promos.Redescribe(t.ctx, t.text); err != nil {
		return e.oops(t, err)
	}
	if err := e.say(t, "✅ Описание акции успешно обновлено!"); err != nil {
		return err
	}
	t.conv.State = model.StatePromotionManagement
	return e.renderPromotionManagement(t)
}

// promoCondInput keeps the state and the stored value untouched on invalid
// input; only an accepted value advances back to the promotion menu.
func (e *Engine) promoCondInput(t *turn) error {
	n, err := e.promos.SetThreshold(t.ctx, t.text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			return e.say(t, textBadThresholdParse)
		case errors.Is(err, domain.ErrInvalidThreshold):
			return e.say(t, textBadThresholdRange)
		default:
			return e.oops(t, err)
		}
	}
	if err := e.say(t, fmt.Sprintf("✅ Условие акции изменено на %d покупок!", n)); err != nil {
		return err
	}
	t.conv.State = model.StatePromotionManagement
	return e.renderPromotionManagement(t)
}

// ---- broadcast ----

func (e *Engine) composeBroadcast(t *turn) error {
	if strings.TrimSpace(t.text) == "" || isMenuButton(t.text) {
		return e.sayWithKeyboard(t, textPromptBroadcast, backOnlyKeyboard())
	}
	t.conv.BroadcastText = t.text
	t.conv.State = model.StateBroadcastPreview
	_, err := e.bot.SendText(t.ctx, adapter.SendTextParams{
		ChatID: t.chatID,
		Text:   broadcastPreviewText(t.text),
		Inline: broadcastPreviewInline(),
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("failed to send broadcast preview")
	}
	return err
}

func (e *Engine) reshowBroadcastPreview(t *turn) error {
	if t.conv.BroadcastText == "" {
		t.conv.State = model.StateMain
		return e.renderMainMenu(t)
	}
	_, err := e.bot.SendText(t.ctx, adapter.SendTextParams{
		ChatID: t.chatID,
		Text:   broadcastPreviewText(t.conv.BroadcastText),
		Inline: broadcastPreviewInline(),
	})
	return err
}

func (e *Engine) cancelBroadcast(t *turn) error {
	t.conv.BroadcastText = ""
	t.conv.State = model.StateMain
	if err := e.say(t, textBroadcastCanceled); err != nil {
		return err
	}
	return e.renderMainMenu(t)
}

// broadcastConfirmed runs the delivery inline: only the admin's own session
// is blocked while it runs.
func (e *Engine) broadcastConfirmed(t *turn, ref model.MessageRef) error {
	if t.conv.State != model.StateBroadcastPreview || t.conv.BroadcastText == "" {
		if err := e.bot.EditText(t.ctx, ref, textStaleMenu, nil); err != nil {
			e.log.Debug().Err(err).Msg("failed to edit stale preview")
		}
		t.conv.State = model.StateMain
		return e.renderMainMenu(t)
	}

	if err := e.bot.EditText(t.ctx, ref, textBroadcastSending, nil); err != nil {
		e.log.Debug().Err(err).Msg("failed to edit preview")
	}

	report, err := e.broadcast.Send(t.ctx, t.sender.ID, t.conv.BroadcastText)
	if err != nil {
		return e.oops(t, err)
	}
	metrics.AddBroadcastSent(report.Sent)
	metrics.AddBroadcastFailed(report.Failed)

	t.conv.BroadcastText = ""
	t.conv.LastBroadcast = report.Refs
	t.conv.State = model.StateMain

	var inline [][]adapter.InlineButton
	if report.Sent > 0 {
		inline = broadcastReportInline()
	}
	if _, err := e.bot.SendText(t.ctx, adapter.SendTextParams{
		ChatID: t.chatID,
		Text:   broadcastReportText(report.Sent, report.Failed),
		Inline: inline,
	}); err != nil {
		e.log.Warn().Err(err).Msg("failed to send broadcast report")
	}
	return e.renderMainMenu(t)
}

func (e *Engine) broadcastCanceled(t *turn, ref model.MessageRef) error {
	if err := e.bot.EditText(t.ctx, ref, textBroadcastCanceled, nil); err != nil {
		e.log.Debug().Err(err).Msg("failed to edit canceled preview")
	}
	t.conv.BroadcastText = ""
	if t.conv.State == model.StateBroadcastPreview || t.conv.State == model.StateBroadcastMessage {
		t.conv.State = model.StateMain
	}
	return e.renderMainMenu(t)
}

func (e *Engine) broadcastRetract(t *turn, ref model.MessageRef) error {
	refs := t.conv.LastBroadcast
	deleted, err := e.broadcast.Retract(t.ctx, refs)
	if err != nil {
		if errors.Is(err, domain.ErrNoBroadcastPending) {
			return e.bot.EditText(t.ctx, ref, textNothingToRetract, nil)
		}
		return e.oops(t, err)
	}
	metrics.AddBroadcastRetracted(deleted)
	t.conv.LastBroadcast = nil
	return e.bot.EditText(t.ctx, ref, broadcastRetractedText(deleted, len(refs)), nil)
}
