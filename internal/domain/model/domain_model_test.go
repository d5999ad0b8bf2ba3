//go:build !integration

package model

import (
	"errors"
	"testing"

	"telegram-loyalty-bot/internal/domain"
)

func TestNewUserProfile(t *testing.T) {
	t.Parallel()

	u, err := NewUserProfile(10, "guest", "Иван", "Петров")
	if err != nil {
		t.Fatalf("NewUserProfile: %v", err)
	}
	if u.PurchasesCount != 0 {
		t.Fatalf("fresh profile counter = %d", u.PurchasesCount)
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}

	if _, err := NewUserProfile(0, "guest", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("zero id: got %v", err)
	}
	if _, err := NewUserProfile(-5, "guest", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("negative id: got %v", err)
	}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		user *UserProfile
		want string
	}{
		{name: "username wins", user: &UserProfile{Username: "anna", FirstName: "Анна"}, want: "@anna"},
		{name: "full name fallback", user: &UserProfile{FirstName: "Анна", LastName: "Иванова"}, want: "Анна Иванова"},
		{name: "first name only", user: &UserProfile{FirstName: "Анна"}, want: "Анна"},
		{name: "anonymous", user: &UserProfile{}, want: "Гость"},
		{name: "nil profile", user: nil, want: "Гость"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.DisplayName(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateThreshold(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 7, 20} {
		if err := ValidateThreshold(n); err != nil {
			t.Fatalf("ValidateThreshold(%d): %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 21, 100} {
		if err := ValidateThreshold(n); !errors.Is(err, domain.ErrInvalidThreshold) {
			t.Fatalf("ValidateThreshold(%d): got %v", n, err)
		}
	}
}

func TestPromotionUsable(t *testing.T) {
	t.Parallel()

	if (&Promotion{RequiredPurchases: 7}).Usable() != true {
		t.Fatal("valid promotion reported unusable")
	}
	if (&Promotion{RequiredPurchases: 0}).Usable() {
		t.Fatal("zero threshold reported usable")
	}
	var p *Promotion
	if p.Usable() {
		t.Fatal("nil promotion reported usable")
	}
}

func TestNewBarista(t *testing.T) {
	t.Parallel()

	b, err := NewBarista("anna", "Анна", "")
	if err != nil {
		t.Fatalf("NewBarista: %v", err)
	}
	if !b.Active {
		t.Fatal("new barista not active")
	}
	if _, err := NewBarista("", "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank username: got %v", err)
	}
}

func TestConversationContext(t *testing.T) {
	t.Parallel()

	c := NewConversationContext()
	if c.State != StateMain {
		t.Fatalf("fresh context state = %s", c.State)
	}

	c.SetCustomer(10, "@guest")
	if c.CurrentCustomer != 10 || c.CurrentUsername != "@guest" {
		t.Fatalf("customer not bound: %+v", c)
	}
	c.ClearCustomer()
	if c.CurrentCustomer != 0 || c.CurrentUsername != "" {
		t.Fatalf("customer not cleared: %+v", c)
	}
}

func TestStateActingOnCustomer(t *testing.T) {
	t.Parallel()

	acting := map[State]bool{
		StateBaristaAction:        true,
		StateAdminCustomerActions: true,
		StateMain:                 false,
		StateFindingCustomer:      false,
		StateBroadcastPreview:     false,
	}
	for st, want := range acting {
		if got := st.ActingOnCustomer(); got != want {
			t.Fatalf("%s.ActingOnCustomer() = %v, want %v", st, got, want)
		}
	}
}

func TestAdminSet(t *testing.T) {
	t.Parallel()

	s := NewAdminSet([]int64{1, 2})
	if !s.Contains(1) || !s.Contains(2) {
		t.Fatal("admin missing from set")
	}
	if s.Contains(3) {
		t.Fatal("stranger in the set")
	}
	if NewAdminSet(nil).Contains(1) {
		t.Fatal("empty set contains someone")
	}
}
