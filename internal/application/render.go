package application

import (
	"fmt"
	"strings"

	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/usecase"
)

// All user-facing copy lives here so handlers stay about control flow.
// The audience is Russian-speaking coffee-shop staff and guests.

const (
	textClientWelcome = "👤 Добро пожаловать в CoffeeRina!\n\nУчаствуйте в акции и получайте бесплатные напитки!"
	textBaristaMain   = "👨‍💼 Режим баристы CoffeeRina\n\nГотов к работе!"
	textAdminMain     = "👑 Панель администратора CoffeeRina\n\nВыберите раздел для управления:"

	textQRCaption         = "📱 Ваш персональный QR-код\n\nПокажите его баристе при заказе напитка"
	textClientPhotoHint   = "📱 Чтобы получить покупку, покажите баристе ваш QR-код (кнопка «Мой QR»)."
	textQRDecodeFailed    = "❌ Не удалось распознать QR-код. Попробуйте сделать фото чётче."
	textQRBadPayload      = "❌ Неверный формат QR-кода."
	textCustomerNotFound  = "❌ Клиент не найден в базе данных."
	textUserNotFound      = "❌ Пользователь не найден. Попробуйте ещё раз:"
	textPromptAddBarista  = "Введите @username баристы для добавления (без @):"
	textPromptRmBarista   = "Введите @username баристы для удаления (без @):"
	textPromptFindUser    = "Введите @username гостя (без @):"
	textPromptPromoName   = "Введите новое название акции:"
	textPromptPromoDesc   = "Введите новое описание акции:"
	textPromptPromoCond   = "Введите новое количество покупок для акции (например: 7):"
	textPromptBroadcast   = "📣 Введите текст рассылки. Он будет отправлен всем гостям:"
	textBadUsername       = "❌ Введите корректный @username"
	textBaristaNotFound   = "❌ Бариста не найден"
	textBadThresholdParse = "❌ Введите корректное число"
	textPromoNotSet       = "Акция ещё не настроена"
	textBackToMenu        = "🔙 Возвращаюсь в меню..."
	textBroadcastCanceled = "❌ Рассылка отменена."
	textStaleMenu         = "🔄 Это меню устарело. Используйте новые кнопки ниже."
	textAccessDenied      = "❌ Доступ запрещён."
	textBackupFailed      = "❌ Ошибка при создании резервной копии."
	textInternalError     = "⚠️ Что-то пошло не так. Попробуйте ещё раз."
	textCounterBusy       = "⏳ Карта клиента сейчас обновляется. Попробуйте ещё раз."
	textPromoBroken       = "❌ Акция настроена неверно. Обратитесь к администратору."
	textBroadcastSending  = "📣 Отправляю рассылку..."
	textNothingToRetract  = "ℹ️ Нет рассылки для отзыва."
)

var textBadThresholdRange = fmt.Sprintf("❌ Число должно быть от %d до %d", model.MinRequiredPurchases, model.MaxRequiredPurchases)

// progressBar renders the loyalty card as filled and empty slots. Filled is
// clamped so a legacy count above the threshold cannot overflow the bar.
func progressBar(current, required int) string {
	if required <= 0 {
		return ""
	}
	filled := current
	if filled > required {
		filled = required
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("●", filled) + strings.Repeat("○", required-filled)
}

func remaining(current, required int) int {
	if r := required - current; r > 0 {
		return r
	}
	return 0
}

func clientPromotionText(p *model.Promotion, purchases int) string {
	if !p.Usable() {
		return textPromoNotSet
	}
	desc := p.Description
	if desc == "" {
		desc = "Покажите QR-код при каждой покупке"
	}
	text := fmt.Sprintf(
		"🎁 %s\n\n%s\n\n📊 Ваш прогресс: %d/%d\n%s\n🎯 До напитка в подарок: %d",
		p.Name, desc, purchases, p.RequiredPurchases,
		progressBar(purchases, p.RequiredPurchases),
		remaining(purchases, p.RequiredPurchases),
	)
	return text
}

func baristaPromotionText(p *model.Promotion) string {
	if !p.Usable() {
		return textPromoNotSet
	}
	desc := p.Description
	if desc == "" {
		desc = "Клиент показывает QR-код при каждой покупке"
	}
	return fmt.Sprintf(
		"🎁 Информация об акции:\n\n%s\n%s\n\nУсловие: %d покупок → бесплатный напиток\n\n"+
			"📋 Инструкция:\n1. Клиент показывает QR-код\n2. Вы фотографируете его\n3. Нажимаете «%s»\n4. Система автоматически обновляет счётчик",
		p.Name, desc, p.RequiredPurchases, btnConfirmDrink,
	)
}

func customerCard(displayName string, purchases, required int) string {
	return fmt.Sprintf(
		"📋 Данные клиента:\n\n👤 Пользователь: %s\n📊 Покупок: %d/%d\n%s\n🎯 До бесплатного напитка: %d",
		displayName, purchases, required,
		progressBar(purchases, required),
		remaining(purchases, required),
	)
}

func purchaseAppliedText(res *usecase.PurchaseResult) string {
	if res.Rewarded {
		return fmt.Sprintf("✅ Покупка засчитана!\n\nНовый счётчик: %d/%d\n🎉 Клиент получил бесплатный напиток!",
			res.NewCount, res.Required)
	}
	return fmt.Sprintf("✅ Покупка засчитана!\n\nНовый счётчик: %d/%d\nДо бесплатного напитка: %d",
		res.NewCount, res.Required, remaining(res.NewCount, res.Required))
}

func purchaseRevertedText(res *usecase.PurchaseResult) string {
	return fmt.Sprintf("➖ Покупка отменена!\n\nНовый счётчик: %d/%d\nДо бесплатного напитка: %d",
		res.NewCount, res.Required, remaining(res.NewCount, res.Required))
}

// customerNotification is the out-of-band message the guest receives after a
// barista registers their purchase.
func customerNotification(res *usecase.PurchaseResult) string {
	if res.Rewarded {
		return "🎉 Поздравляем, напиток в подарок ваш! Покажите это сообщение бариста."
	}
	return fmt.Sprintf("☕ +1 к вашей карте. До бесплатного напитка осталось: %d",
		remaining(res.NewCount, res.Required))
}

func adjustedCard(displayName string, res *usecase.PurchaseResult) string {
	msg := fmt.Sprintf("✅ Обновлено!\n\n👤 %s\n📊 Новый счётчик: %d/%d\n%s\n🎯 До подарка: %d",
		displayName, res.NewCount, res.Required,
		progressBar(res.NewCount, res.Required),
		remaining(res.NewCount, res.Required))
	if res.Rewarded {
		msg += "\n\n🎉 Пользователь получил бесплатный напиток!"
	}
	return msg
}

func baristaListText(baristas []*model.Barista) string {
	var b strings.Builder
	b.WriteString("👥 Управление баристами:\n\n")
	if len(baristas) == 0 {
		b.WriteString("Баристы не добавлены")
	} else {
		for _, barista := range baristas {
			fmt.Fprintf(&b, "@%s\n", barista.Username)
		}
	}
	b.WriteString("\nВыберите действие:")
	return b.String()
}

func customersListText(users []*model.UserProfile, required int) string {
	if len(users) == 0 {
		return "📂 Клиентов пока нет."
	}
	var b strings.Builder
	b.WriteString("📋 Список пользователей:\n\n")
	for _, u := range users {
		fmt.Fprintf(&b, "%s, %d/%d\n", u.DisplayName(), u.PurchasesCount, required)
	}
	return b.String()
}

func settingsText(p *model.Promotion, guests int) string {
	name := "Не настроена"
	required := 0
	if p.Usable() {
		name = p.Name
		required = p.RequiredPurchases
	}
	return fmt.Sprintf(
		"⚙️ Настройки системы\n\nТекущая акция: %s\nУсловие: %d покупок → бесплатный напиток\n👥 Гостей в базе: %d\n\nВыберите раздел для настройки:",
		name, required, guests,
	)
}

func promotionManagementText(p *model.Promotion) string {
	if !p.Usable() {
		return textPromoNotSet
	}
	desc := p.Description
	if desc == "" {
		desc = "Нет описания"
	}
	return fmt.Sprintf(
		"📝 Управление акциями\n\nТекущая акция: %s\nУсловие: каждые %d покупок\nОписание: %s\n\nВыберите что изменить:",
		p.Name, p.RequiredPurchases, desc,
	)
}

func broadcastPreviewText(text string) string {
	return fmt.Sprintf("📣 Предпросмотр рассылки:\n\n%s\n\nОтправить всем гостям?", text)
}

func broadcastReportText(sent, failed int) string {
	return fmt.Sprintf("📣 Рассылка завершена.\n\n✅ Отправлено: %d\n❌ Не доставлено: %d", sent, failed)
}

func broadcastRetractedText(deleted, total int) string {
	return fmt.Sprintf("🗑 Рассылка отозвана: удалено %d из %d сообщений.", deleted, total)
}
