//go:build !integration

package application

import (
	"testing"

	"telegram-loyalty-bot/internal/domain/model"
)

var allStates = []model.State{
	model.StateMain,
	model.StateClientMode,
	model.StateBaristaMode,
	model.StateBaristaAction,
	model.StateAdminBarista,
	model.StateAddingBarista,
	model.StateRemovingBarista,
	model.StateAdminCustomers,
	model.StateFindingCustomer,
	model.StateAdminCustomerActions,
	model.StateAdminSettings,
	model.StatePromotionManagement,
	model.StateChangingPromoName,
	model.StateChangingPromoDesc,
	model.StateChangingPromoCond,
	model.StateBroadcastMessage,
	model.StateBroadcastPreview,
}

// Every state must be reachable by the dispatcher and must offer a way out:
// a fallback for unrecognized text plus, everywhere except home, a Back
// transition. A user can therefore never be stranded.
func TestTransitionTableComplete(t *testing.T) {
	t.Parallel()
	table := newTransitionTable()

	if len(table) != len(allStates) {
		t.Fatalf("table covers %d states, want %d", len(table), len(allStates))
	}
	for _, st := range allStates {
		spec, ok := table[st]
		if !ok {
			t.Errorf("state %s missing from table", st)
			continue
		}
		if spec.fallback == nil {
			t.Errorf("state %s has no fallback", st)
		}
		if st == model.StateMain {
			continue
		}
		if _, ok := spec.inputs[btnBack]; !ok {
			t.Errorf("state %s has no Back exit", st)
		}
	}
}

// Privileged states must be role-restricted so a demoted user is bounced on
// the next message.
func TestTransitionTableRoleGates(t *testing.T) {
	t.Parallel()
	table := newTransitionTable()

	adminStates := []model.State{
		model.StateAdminBarista,
		model.StateAddingBarista,
		model.StateRemovingBarista,
		model.StateAdminCustomers,
		model.StateFindingCustomer,
		model.StateAdminCustomerActions,
		model.StateAdminSettings,
		model.StatePromotionManagement,
		model.StateChangingPromoName,
		model.StateChangingPromoDesc,
		model.StateChangingPromoCond,
		model.StateBroadcastMessage,
		model.StateBroadcastPreview,
	}
	for _, st := range adminStates {
		spec := table[st]
		if spec.allows(model.RoleClient) || spec.allows(model.RoleBarista) {
			t.Errorf("state %s is open to non-admins", st)
		}
		if !spec.allows(model.RoleAdmin) {
			t.Errorf("state %s locks out admins", st)
		}
	}

	for _, st := range []model.State{model.StateBaristaMode, model.StateBaristaAction} {
		spec := table[st]
		if spec.allows(model.RoleClient) {
			t.Errorf("state %s is open to clients", st)
		}
		if !spec.allows(model.RoleBarista) || !spec.allows(model.RoleAdmin) {
			t.Errorf("state %s locks out staff", st)
		}
	}
}

// Payload prompts must not swallow a menu button as input.
func TestMenuButtonsAreGuarded(t *testing.T) {
	t.Parallel()
	buttons := []string{
		btnMyQR, btnClientPromo, btnBaristaPromo, btnBack,
		btnConfirmDrink, btnRevertDrink, btnAddPurchase,
		btnBaristas, btnCustomers, btnBroadcast, btnSettings,
		btnAddBarista, btnRemoveBarista, btnListBaristas,
		btnFindCustomer, btnEditPromo, btnClientView, btnBaristaView,
		btnPromoName, btnPromoCond, btnPromoDesc,
	}
	for _, b := range buttons {
		if !isMenuButton(b) {
			t.Errorf("button %q not recognized as menu button", b)
		}
	}
	if isMenuButton("anna") {
		t.Error("plain username treated as menu button")
	}
}
