package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"petconnect/internal/model"
	"petconnect/internal/token"
)

const testSecret = "test-secret"

func newTestAuthService(users *mockUserRepo) *authService {
	return &authService{
		users:     users,
		jwtSecret: testSecret,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Plan != model.PlanFree {
		t.Errorf("new user plan = %s, want free", u.Plan)
	}
	if u.Role != model.RoleUser {
		t.Errorf("new user role = %s, want user", u.Role)
	}
	if u.PasswordHash == "p1" || u.PasswordHash == "" {
		t.Error("password stored unhashed")
	}
	if u.VerificationToken == nil || *u.VerificationToken == "" {
		t.Error("verification token not generated")
	}

	raw, logged, err := svc.Login(ctx, "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != u.ID {
		t.Errorf("login returned user %s, want %s", logged.ID, u.ID)
	}
	claims, err := token.Verify(raw, testSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Plan != model.PlanFree {
		t.Errorf("token plan = %s, want free", claims.Plan)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "A", "a@x.com", "123", "p1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "B", "a@x.com", "", "p2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v, want ErrEmailTaken", err)
	}
	if _, err := svc.Register(ctx, "C", "c@x.com", "123", "p3"); !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("duplicate phone: err = %v, want ErrPhoneTaken", err)
	}
	if _, err := svc.Register(ctx, "D", "", "", "p4"); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("no identity: err = %v, want ErrMissingIdentity", err)
	}
}

func TestLoginByPhone(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "P", "", "555-0101", "p1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "", "555-0101", "p1"); err != nil {
		t.Fatalf("Login by phone: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "A", "a@x.com", "", "p1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ghost@x.com", "", "p1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown identity: err = %v, want ErrUserNotFound", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "", "wrong"); !errors.Is(err, ErrBadCredential) {
		t.Errorf("wrong password: err = %v, want ErrBadCredential", err)
	}
}

func TestLoginUnverifiedEmail(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	users.users[u.ID].IsVerified = false

	if _, _, err := svc.Login(ctx, "a@x.com", "", "p1"); !errors.Is(err, ErrUnverified) {
		t.Errorf("unverified email login: err = %v, want ErrUnverified", err)
	}
}

func TestLoginDemotesExpiredPlan(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	yesterday := time.Now().Add(-24 * time.Hour)
	stored := users.users[u.ID]
	stored.Plan = model.PlanBasic
	stored.PlanEnd = &yesterday

	raw, logged, err := svc.Login(ctx, "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Stored record is demoted with the plan window cleared.
	after, _ := users.GetUserByID(ctx, u.ID)
	if after.Plan != model.PlanFree {
		t.Errorf("stored plan after login = %s, want free", after.Plan)
	}
	if after.PlanEnd != nil {
		t.Error("stored plan end not cleared")
	}

	// The issued token must never embed the expired paid plan.
	if logged.Plan != model.PlanFree {
		t.Errorf("returned snapshot plan = %s, want free", logged.Plan)
	}
	claims, err := token.Verify(raw, testSecret)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Plan != model.PlanFree {
		t.Errorf("token plan = %s, want free", claims.Plan)
	}
	if claims.PlanEnd != nil {
		t.Error("token still carries a plan end")
	}
}

func TestLoginKeepsUnexpiredPaidPlan(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	tomorrow := time.Now().Add(24 * time.Hour)
	stored := users.users[u.ID]
	stored.Plan = model.PlanPremium
	stored.PlanEnd = &tomorrow

	raw, _, err := svc.Login(ctx, "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := token.Verify(raw, testSecret)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Plan != model.PlanPremium {
		t.Errorf("token plan = %s, want premium", claims.Plan)
	}
}

func TestChangePassword(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "old")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "new"); !errors.Is(err, ErrBadCredential) {
		t.Errorf("change with wrong old password: err = %v, want ErrBadCredential", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old", "new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "", "new"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "", "old"); !errors.Is(err, ErrBadCredential) {
		t.Errorf("login with old password: err = %v, want ErrBadCredential", err)
	}
}

func TestRequestResetNeverLeaksExistence(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "A", "a@x.com", "", "p1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.RequestReset(ctx, "a@x.com", ""); err != nil {
		t.Errorf("reset for existing user: %v", err)
	}
	if err := svc.RequestReset(ctx, "ghost@x.com", ""); err != nil {
		t.Errorf("reset for unknown user must also report success, got: %v", err)
	}
}

func TestCompleteResetConsumesToken(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.RequestReset(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	reset := *users.users[u.ID].ResetToken

	if err := svc.CompleteReset(ctx, reset, "new"); err != nil {
		t.Fatalf("CompleteReset: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "", "new"); err != nil {
		t.Errorf("login after reset: %v", err)
	}

	// Single use: the same token must not work twice.
	if err := svc.CompleteReset(ctx, reset, "newer"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("reused reset token: err = %v, want ErrInvalidResetToken", err)
	}
}

func TestCompleteResetExpiredToken(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.RequestReset(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	reset := *users.users[u.ID].ResetToken

	// Advance the clock past the token lifetime.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if err := svc.CompleteReset(ctx, reset, "new"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expired reset token: err = %v, want ErrInvalidResetToken", err)
	}
}
