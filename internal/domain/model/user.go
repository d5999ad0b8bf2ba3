package model

import (
	"strings"
	"time"

	"telegram-loyalty-bot/internal/domain"
)

// UserProfile is a coffee-shop customer identified by their Telegram ID.
// Profiles are created on first contact and never deleted; the purchase
// counter is only ever changed through the loyalty use case.
type UserProfile struct {
	TelegramID     int64
	Username       string
	FirstName      string
	LastName       string
	PurchasesCount int
	CreatedAt      time.Time
}

func NewUserProfile(tgID int64, username, firstName, lastName string) (*UserProfile, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &UserProfile{
		TelegramID: tgID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  time.Now(),
	}, nil
}

func (u *UserProfile) IsZero() bool { return u == nil || u.TelegramID == 0 }

// DisplayName prefers @username, falls back to the real name, then "Гость".
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return "Гость"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return "Гость"
}
