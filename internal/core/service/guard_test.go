package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

func TestSessionVerifier_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "a@example.com", "pass123", domain.RoleManager)
	token := env.login(t, "a@example.com", "pass123")

	got, err := env.verify.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.ID != u.ID || got.Role != domain.RoleManager {
		t.Fatalf("verified wrong user: %+v", got)
	}
}

func TestSessionVerifier_UnknownSubject(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "a@example.com", "pass123", domain.RoleManager)
	token := env.login(t, "a@example.com", "pass123")

	if err := env.users.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.verify.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestSessionVerifier_SeesRoleChanges(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "a@example.com", "pass123", domain.RoleManager)
	token := env.login(t, "a@example.com", "pass123")

	role := domain.RoleTechnician
	if _, err := env.users.UpdateFields(context.Background(), u.ID, domain.UserFields{Role: &role}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := env.verify.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Role != domain.RoleTechnician {
		t.Fatalf("expected current role, got %s", got.Role)
	}
}

func TestSessionVerifier_StoreFault(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "a@example.com", "pass123", domain.RoleManager)
	token := env.login(t, "a@example.com", "pass123")

	v := NewSessionVerifier(env.tokens, brokenStore{env.users})
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrAuthenticationUnavailable) {
		t.Fatalf("expected ErrAuthenticationUnavailable, got %v", err)
	}
}

func TestGuard_Check(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@example.com", "admin123", domain.RoleAdmin)
	env.seedUser(t, "manager@example.com", "manager123", domain.RoleManager)
	env.seedUser(t, "tech@example.com", "tech123", domain.RoleTechnician)

	admin := env.login(t, "admin@example.com", "admin123")
	manager := env.login(t, "manager@example.com", "manager123")
	tech := env.login(t, "tech@example.com", "tech123")

	cases := []struct {
		name       string
		token      string
		capability domain.Capability
		wantErr    error
	}{
		{"admin deletes users", admin, domain.CanDeleteUsers, nil},
		{"manager exports", manager, domain.CanExportReports, nil},
		{"manager cannot create users", manager, domain.CanCreateUsers, domain.ErrForbidden},
		{"technician views issues", tech, domain.CanViewAllIssues, nil},
		{"technician cannot create issues", tech, domain.CanCreateIssues, domain.ErrForbidden},
		{"garbage token", "garbage", domain.CanViewAllIssues, domain.ErrUnauthenticated},
		{"empty token", "", domain.CanViewAllIssues, domain.ErrUnauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := env.guard.Check(context.Background(), tc.token, tc.capability)
			if tc.wantErr == nil {
				if err != nil || user == nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGuard_Identify_KeepsCause(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "a@example.com", "pass123", domain.RoleAdmin)
	token := env.login(t, "a@example.com", "pass123")

	env.clock = env.clock.Add(2 * time.Hour)
	_, err := env.guard.Identify(context.Background(), token)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected unauthenticated wrapping expired token, got %v", err)
	}
}

func TestRun_OperationRunsOnlyWhenAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "tech@example.com", "tech123", domain.RoleTechnician)
	env.seedUser(t, "manager@example.com", "manager123", domain.RoleManager)
	tech := env.login(t, "tech@example.com", "tech123")
	manager := env.login(t, "manager@example.com", "manager123")

	calls := 0
	op := func(_ context.Context, actor *domain.User) (string, error) {
		calls++
		return actor.ID, nil
	}

	if _, err := Run(context.Background(), env.guard, tech, domain.CanCreateIssues, op); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := Run(context.Background(), env.guard, "forged", domain.CanCreateIssues, op); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("operation ran %d times on rejected calls", calls)
	}

	id, err := Run(context.Background(), env.guard, manager, domain.CanCreateIssues, op)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 || id != "manager-manager@example.com" {
		t.Fatalf("calls=%d id=%q", calls, id)
	}
}

func TestRun_PassesOperationErrorThrough(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@example.com", "admin123", domain.RoleAdmin)
	token := env.login(t, "admin@example.com", "admin123")

	boom := errors.New("boom")
	_, err := Run(context.Background(), env.guard, token, domain.CanDeleteIssues, func(context.Context, *domain.User) (struct{}, error) {
		return struct{}{}, boom
	})
	if err != boom {
		t.Fatalf("expected op error unchanged, got %v", err)
	}
}
