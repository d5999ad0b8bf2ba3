package application

import "telegram-loyalty-bot/internal/domain/ports/adapter"

// Button labels double as transition-table inputs: the machine matches
// inbound text against these literals.
const (
	btnMyQR          = "📱 Мой QR"
	btnClientPromo   = "🎁 Акции"
	btnBaristaPromo  = "ℹ️ Акции"
	btnBack          = "🔙 Назад"
	btnConfirmDrink  = "✅ Засчитать покупку"
	btnRevertDrink   = "➖ Отменить покупку"
	btnAddPurchase   = "➕ Начислить покупку"
	btnBaristas      = "👥 Баристы"
	btnCustomers     = "👤 Посетители"
	btnBroadcast     = "📣 Рассылка"
	btnSettings      = "⚙️ Опции"
	btnAddBarista    = "➕ Добавить"
	btnRemoveBarista = "➖ Удалить"
	btnListBaristas  = "📋 Список"
	btnFindCustomer  = "🔍 Найти пользователя"
	btnEditPromo     = "📝 Изменить акции"
	btnClientView    = "👤 Режим клиента"
	btnBaristaView   = "👨‍💼 Режим баристы"
	btnPromoName     = "📝 Название"
	btnPromoCond     = "7️⃣ Условие"
	btnPromoDesc     = "📖 Описание"
)

// Inline callback payloads for the broadcast preview and report screens.
const (
	cbBroadcastSend    = "bc:send"
	cbBroadcastCancel  = "bc:cancel"
	cbBroadcastRetract = "bc:retract"
)

func clientKeyboard(withBack bool) adapter.ReplyKeyboard {
	kb := adapter.ReplyKeyboard{
		{btnMyQR},
		{btnClientPromo},
	}
	if withBack {
		kb = append(kb, []string{btnBack})
	}
	return kb
}

func baristaKeyboard(withBack bool) adapter.ReplyKeyboard {
	kb := adapter.ReplyKeyboard{
		{btnBaristaPromo},
	}
	if withBack {
		kb = append(kb, []string{btnBack})
	}
	return kb
}

func baristaActionKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnConfirmDrink},
		{btnRevertDrink},
		{btnBack},
	}
}

func adminMainKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnBaristas, btnCustomers},
		{btnBroadcast, btnSettings},
	}
}

func adminBaristaKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnAddBarista, btnRemoveBarista},
		{btnListBaristas, btnBack},
	}
}

func adminCustomersKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnFindCustomer},
		{btnBack},
	}
}

func adminCustomerActionsKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnAddPurchase},
		{btnRevertDrink},
		{btnBack},
	}
}

func adminSettingsKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnEditPromo},
		{btnClientView, btnBaristaView},
		{btnBack},
	}
}

func promotionKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{
		{btnPromoName, btnPromoCond},
		{btnPromoDesc},
		{btnBack},
	}
}

func backOnlyKeyboard() adapter.ReplyKeyboard {
	return adapter.ReplyKeyboard{{btnBack}}
}

func broadcastPreviewInline() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{{
		{Text: "✅ Отправить", Data: cbBroadcastSend},
		{Text: "❌ Отмена", Data: cbBroadcastCancel},
	}}
}

func broadcastReportInline() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{{
		{Text: "🗑 Отозвать рассылку", Data: cbBroadcastRetract},
	}}
}
