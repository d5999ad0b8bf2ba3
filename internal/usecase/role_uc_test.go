//go:build !integration

package usecase

import (
	"context"
	"testing"

	"telegram-loyalty-bot/internal/domain/model"
	"telegram-loyalty-bot/internal/domain/ports/repository"
)

func TestRoleResolve_Precedence(t *testing.T) {
	t.Parallel()
	baristas := newMemBaristaRepo()
	b, _ := model.NewBarista("anna", "Anna", "")
	if err := baristas.Add(context.Background(), repository.NoTX, b); err != nil {
		t.Fatalf("seed barista: %v", err)
	}
	uc := NewRoleUseCase(model.NewAdminSet([]int64{1}), baristas, newTestLogger())

	cases := []struct {
		name     string
		tgID     int64
		username string
		want     model.Role
	}{
		{name: "admin by id", tgID: 1, username: "", want: model.RoleAdmin},
		{name: "admin wins over barista row", tgID: 1, username: "anna", want: model.RoleAdmin},
		{name: "active barista", tgID: 2, username: "anna", want: model.RoleBarista},
		{name: "barista with at prefix", tgID: 2, username: "@anna", want: model.RoleBarista},
		{name: "unknown username", tgID: 3, username: "someone", want: model.RoleClient},
		{name: "no username", tgID: 4, username: "", want: model.RoleClient},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := uc.Resolve(context.Background(), tc.tgID, tc.username)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// Removing a barista must demote them on the very next interaction.
func TestRoleResolve_DemotionIsImmediate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	baristas := newMemBaristaRepo()
	b, _ := model.NewBarista("anna", "Anna", "")
	if err := baristas.Add(ctx, repository.NoTX, b); err != nil {
		t.Fatalf("seed barista: %v", err)
	}
	uc := NewRoleUseCase(model.NewAdminSet(nil), baristas, newTestLogger())

	if role, _ := uc.Resolve(ctx, 2, "anna"); role != model.RoleBarista {
		t.Fatalf("before removal: got %s", role)
	}
	if err := baristas.Remove(ctx, repository.NoTX, "anna"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if role, _ := uc.Resolve(ctx, 2, "anna"); role != model.RoleClient {
		t.Fatalf("after removal: got %s, want client", role)
	}
}
