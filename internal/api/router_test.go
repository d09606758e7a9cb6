package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrt-platform/maintenance-tracker/internal/api/handler"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/service"
	"github.com/mrt-platform/maintenance-tracker/internal/infrastructure/db/memory"
)

const routerSecret = "router-test-secret"

type testServer struct {
	e     *echo.Echo
	users *service.UserService
}

func newTestServer(t *testing.T, health map[string]handler.Pinger) *testServer {
	t.Helper()
	log := zerolog.Nop()

	users := service.NewCollectionCredentialStore(memory.NewCollection[domain.User]())
	issues := memory.NewCollection[domain.Issue]()
	reports := memory.NewCollection[domain.Report]()

	tokens := service.NewJWTCodec(routerSecret, time.Hour)
	userService := service.NewUserService(users, bcrypt.MinCost, log)
	require.NoError(t, service.SeedDemoUsers(context.Background(), userService))

	e := NewRouter(Dependencies{
		Auth:     service.NewAuthService(users, tokens, bcrypt.MinCost, log),
		Users:    userService,
		Issues:   service.NewIssueService(issues, users, log),
		Reports:  service.NewReportService(reports, issues, log),
		Guard:    service.NewGuard(service.NewSessionVerifier(tokens, users), log),
		Health:   health,
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{e: e, users: userService}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password, role string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`","role":"`+role+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string          `json:"token"`
		User  domain.UserView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("with role", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "",
			`{"email":"ADMIN@example.com","password":"admin123","role":"admin"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "admin123")
		assert.NotContains(t, rec.Body.String(), "credential")
	})

	t.Run("without role", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "",
			`{"email":"technician@example.com","password":"tech123"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		bodies := []string{
			`{"email":"admin@example.com","password":"wrong","role":"admin"}`,
			`{"email":"admin@example.com","password":"admin123","role":"technician"}`,
			`{"email":"nobody@example.com","password":"admin123","role":"admin"}`,
		}
		for _, b := range bodies {
			rec := s.do(t, http.MethodPost, "/api/auth/login", "", b)
			require.Equal(t, http.StatusUnauthorized, rec.Code, b)
			assert.Equal(t, "invalid credentials", errorBody(t, rec))
		}
	})

	t.Run("unknown role claim", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "",
			`{"email":"admin@example.com","password":"admin123","role":"janitor"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", errorBody(t, rec))
	})

	t.Run("padded email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "",
			`{"email":"  Admin@Example.com ","password":"admin123","role":"admin"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed payload", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_RegisterAndMe(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"new@example.com","password":"secret1","name":"New Tech"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg struct {
		Token string          `json:"token"`
		User  domain.UserView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, domain.RoleTechnician, reg.User.Role)

	rec = s.do(t, http.MethodGet, "/api/auth/me", reg.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User        domain.UserView            `json:"user"`
		Permissions map[domain.Capability]bool `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "new@example.com", me.User.Email)
	assert.Len(t, me.Permissions, len(domain.Capabilities))
	assert.True(t, me.Permissions[domain.CanViewAllIssues])
	assert.False(t, me.Permissions[domain.CanEditIssues])

	rec = s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":" NEW@example.com ","password":"secret1","name":"Again"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrIdentityExists.Error(), errorBody(t, rec))
}

func TestRouter_RegisterPaddedEmail(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"  Fresh@Example.com ","password":"secret1","name":"Fresh"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.login(t, "fresh@example.com", "secret1", "technician")

	rec = s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"  Admin@Example.com ","password":"secret1","name":"Impostor"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrIdentityExists.Error(), errorBody(t, rec))
}

func TestRouter_SessionErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", errorBody(t, rec))

	rec = s.do(t, http.MethodGet, "/api/auth/me", "not-a-jwt", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", errorBody(t, rec))

	admin, err := s.users.List(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, admin)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "expired",
		Subject:   admin[0].ID,
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}).SignedString([]byte(routerSecret))
	require.NoError(t, err)

	rec = s.do(t, http.MethodGet, "/api/auth/me", expired, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired", errorBody(t, rec))
}

func TestRouter_IssueCapabilities(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.login(t, "admin@example.com", "admin123", "admin")
	tech := s.login(t, "technician@example.com", "tech123", "technician")

	rec := s.do(t, http.MethodPost, "/api/issues", tech, `{"title":"Leak","description":"Sink leaks"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access forbidden", errorBody(t, rec))

	rec = s.do(t, http.MethodPost, "/api/issues", admin, `{"title":"Leak","description":"Sink leaks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Issue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, domain.IssuePending, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)

	rec = s.do(t, http.MethodPut, "/api/issues/"+created.ID, tech, `{"status":"solved"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/issues/"+created.ID, admin, `{"status":"solved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/issues/"+created.ID, tech, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/issues?status=solved", tech, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.Issue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = s.do(t, http.MethodGet, "/api/issues/missing", admin, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "issue not found", errorBody(t, rec))

	rec = s.do(t, http.MethodDelete, "/api/issues/"+created.ID, admin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_ReportExport(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.login(t, "admin@example.com", "admin123", "admin")
	tech := s.login(t, "technician@example.com", "tech123", "technician")

	rec := s.do(t, http.MethodPost, "/api/issues", admin, `{"title":"Fuse","description":"Breaker trips"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/reports/export", tech, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/reports/export?status=pending", admin, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "issues-pending-")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2)

	rec = s.do(t, http.MethodGet, "/api/reports/export?status=archived", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/reports/monthly", admin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UserManagement(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.login(t, "admin@example.com", "admin123", "admin")
	manager := s.login(t, "manager@example.com", "manager123", "manager")

	rec := s.do(t, http.MethodPost, "/api/users", manager,
		`{"email":"x@example.com","password":"secret1","name":"X","role":"technician"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", admin,
		`{"email":"Manager@Example.com","password":"secret1","name":"Dup","role":"manager"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", admin,
		`{"email":" Manager@Example.com ","password":"secret1","name":"Dup","role":"manager"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", admin,
		`{"email":"  crew@example.com ","password":"secret1","name":"Crew","role":"technician"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var crew domain.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crew))
	assert.Equal(t, "crew@example.com", crew.Email)

	rec = s.do(t, http.MethodPut, "/api/users/"+crew.ID, admin, `{"email":" Manager@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users?role=technician", manager, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var techs []domain.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &techs))
	require.Len(t, techs, 2)

	rec = s.do(t, http.MethodGet, "/api/users?role=janitor", manager, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/missing", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Profile(t *testing.T) {
	s := newTestServer(t, nil)
	tech := s.login(t, "technician@example.com", "tech123", "technician")

	rec := s.do(t, http.MethodPut, "/api/profile", tech, `{"phoneNumber":"555-0100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "555-0100")

	rec = s.do(t, http.MethodPut, "/api/profile/password", tech,
		`{"newPassword":"newsecret","confirmPassword":"mismatch"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/profile/password", tech,
		`{"newPassword":"newsecret","confirmPassword":"newsecret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.login(t, "technician@example.com", "newsecret", "technician")
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, map[string]handler.Pinger{
		"store": handler.PingFunc(func(context.Context) error { return errors.New("down") }),
	})

	rec := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
