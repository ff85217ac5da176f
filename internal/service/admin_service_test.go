package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"petconnect/internal/model"
	"petconnect/internal/policy"
)

func TestDashboardRequiresAdminRole(t *testing.T) {
	svc := NewAdminService(newMockUserRepo(), newMockPetRepo(), zerolog.Nop())

	_, err := svc.Dashboard(context.Background(), model.RoleUser)
	if !errors.Is(err, policy.ErrRoleForbidden) {
		t.Errorf("err = %v, want ErrRoleForbidden", err)
	}
}

func TestDashboardListsEverything(t *testing.T) {
	users := newMockUserRepo()
	pets := newMockPetRepo()
	svc := NewAdminService(users, pets, zerolog.Nop())

	a := seedUser(users, model.PlanFree)
	b := seedUser(users, model.PlanPremium)
	seedPet(pets, a.ID, 0, time.Now())
	seedPet(pets, b.ID, 3, time.Now())
	seedPet(pets, b.ID, 7, time.Now())

	dash, err := svc.Dashboard(context.Background(), model.RoleAdmin)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(dash.Users) != 2 {
		t.Errorf("users = %d, want 2", len(dash.Users))
	}
	if len(dash.Pets) != 3 {
		t.Errorf("pets = %d, want 3", len(dash.Pets))
	}
}
