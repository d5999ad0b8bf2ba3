package model

import (
	"time"

	"telegram-loyalty-bot/internal/domain"
)

// Barista is keyed by Telegram username, not by stable ID. A barista who
// renames their account loses the role; this is a confirmed product decision,
// kept as-is (see DESIGN.md).
type Barista struct {
	Username  string
	FirstName string
	LastName  string
	Active    bool
	CreatedAt time.Time
}

func NewBarista(username, firstName, lastName string) (*Barista, error) {
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Barista{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Active:    true,
		CreatedAt: time.Now(),
	}, nil
}
