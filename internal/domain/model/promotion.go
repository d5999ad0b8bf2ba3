package model

import "telegram-loyalty-bot/internal/domain"

const (
	// Bounds enforced on threshold updates.
	MinRequiredPurchases = 1
	MaxRequiredPurchases = 20
)

// Promotion is the single active loyalty rule. Exactly one row is active at
// any time; nearly every user-facing screen reads it to compute progress.
type Promotion struct {
	ID                int64
	Name              string
	RequiredPurchases int
	Description       string
	Active            bool
}

// ValidateThreshold checks a candidate required_purchases value.
func ValidateThreshold(n int) error {
	if n < MinRequiredPurchases || n > MaxRequiredPurchases {
		return domain.ErrInvalidThreshold
	}
	return nil
}

// Usable reports whether progress can be rendered against this promotion
// without dividing or looping incorrectly.
func (p *Promotion) Usable() bool {
	return p != nil && p.RequiredPurchases > 0
}

// PromotionUpdate carries a partial update; nil fields keep stored values.
type PromotionUpdate struct {
	Name              *string
	Description       *string
	RequiredPurchases *int
}

func (u PromotionUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.RequiredPurchases == nil
}
