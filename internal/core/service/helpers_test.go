package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
	"github.com/mrt-platform/maintenance-tracker/internal/infrastructure/db/memory"
)

var discardLogger = zerolog.Nop()

const testSecret = "test-signing-secret"

// testEnv wires the services over in-memory collections with a settable clock.
type testEnv struct {
	users   ports.CredentialStore
	issues  *memory.Collection[domain.Issue]
	reports *memory.Collection[domain.Report]
	tokens  *JWTCodec
	auth    *AuthService
	verify  *SessionVerifier
	guard   *Guard
	clock   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:   NewCollectionCredentialStore(memory.NewCollection[domain.User]()),
		issues:  memory.NewCollection[domain.Issue](),
		reports: memory.NewCollection[domain.Report](),
		clock:   time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }

	env.tokens = NewJWTCodec(testSecret, time.Hour)
	env.tokens.now = now
	env.auth = NewAuthService(env.users, env.tokens, bcrypt.MinCost, discardLogger)
	env.auth.now = now
	env.verify = NewSessionVerifier(env.tokens, env.users)
	env.guard = NewGuard(env.verify, discardLogger)
	return env
}

func (e *testEnv) userService() *UserService {
	s := NewUserService(e.users, bcrypt.MinCost, discardLogger)
	s.now = func() time.Time { return e.clock }
	return s
}

func (e *testEnv) issueService() *IssueService {
	s := NewIssueService(e.issues, e.users, discardLogger)
	s.now = func() time.Time { return e.clock }
	return s
}

func (e *testEnv) reportService() *ReportService {
	s := NewReportService(e.reports, e.issues, discardLogger)
	s.now = func() time.Time { return e.clock }
	return s
}

// seedUser stores a user with a hashed secret and returns it.
func (e *testEnv) seedUser(t *testing.T, email, secret string, role domain.Role) *domain.User {
	t.Helper()
	credential, err := hashSecret(secret, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return e.seedWithCredential(t, email, credential, role)
}

func (e *testEnv) seedWithCredential(t *testing.T, email string, credential domain.Credential, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:         string(role) + "-" + email,
		Email:      email,
		Name:       "Test " + string(role),
		Role:       role,
		Credential: credential,
		CreatedAt:  e.clock,
		UpdatedAt:  e.clock,
	}
	if err := e.users.Insert(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return u
}

// login returns a session token for a seeded user.
func (e *testEnv) login(t *testing.T, email, secret string) string {
	t.Helper()
	res, err := e.auth.Login(context.Background(), email, secret)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return res.Token
}

var errStoreDown = errors.New("connection refused")

// brokenStore fails every lookup with a storage fault.
type brokenStore struct {
	ports.CredentialStore
}

func (brokenStore) FindByEmailAndRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, errStoreDown
}

func (brokenStore) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errStoreDown
}

func (brokenStore) FindByID(context.Context, string) (*domain.User, error) {
	return nil, errStoreDown
}
