package model

// State is the current conversation mode for one user; it controls how the
// next inbound text or photo is interpreted. States are plain labels, not a
// class hierarchy, and the machine has no terminal state.
type State string

const (
	StateMain                  State = "main"
	StateClientMode            State = "client_mode"
	StateBaristaMode           State = "barista_mode"
	StateBaristaAction         State = "barista_action"
	StateAdminBarista          State = "admin_barista"
	StateAddingBarista         State = "adding_barista"
	StateRemovingBarista       State = "removing_barista"
	StateAdminCustomers        State = "admin_customers"
	StateFindingCustomer       State = "finding_customer_by_username"
	StateAdminCustomerActions  State = "admin_customer_actions"
	StateAdminSettings         State = "admin_settings"
	StatePromotionManagement   State = "promotion_management"
	StateChangingPromoName     State = "changing_promotion_name"
	StateChangingPromoDesc     State = "changing_promotion_description"
	StateChangingPromoCond     State = "changing_promotion_condition"
	StateBroadcastMessage      State = "broadcast_message"
	StateBroadcastPreview      State = "broadcast_preview"
)

// MessageRef identifies a delivered message for later edit or delete.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// ConversationContext is the per-user scratch state of the machine. It lives
// in memory only and is lost on restart.
//
// Invariant: CurrentCustomer is set if and only if State is one of the
// "acting on a specific customer" states (barista_action,
// admin_customer_actions). ClearCustomer must run when leaving them.
type ConversationContext struct {
	State           State
	CurrentCustomer int64
	CurrentUsername string
	BroadcastText   string
	LastBroadcast   []MessageRef
}

func NewConversationContext() *ConversationContext {
	return &ConversationContext{State: StateMain}
}

// SetCustomer binds the context to one target customer.
func (c *ConversationContext) SetCustomer(tgID int64, displayName string) {
	c.CurrentCustomer = tgID
	c.CurrentUsername = displayName
}

// ClearCustomer drops the scan/lookup target so a stale customer can never
// receive an action from a later state.
func (c *ConversationContext) ClearCustomer() {
	c.CurrentCustomer = 0
	c.CurrentUsername = ""
}

// ActingOnCustomer reports whether the current state targets one customer.
func (s State) ActingOnCustomer() bool {
	return s == StateBaristaAction || s == StateAdminCustomerActions
}
