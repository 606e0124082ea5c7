package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/service"
	"github.com/userhub/identity-api/internal/infrastructure/db/memory"
)

const (
	testSecret    = "integration-test-secret"
	adminEmail    = "admin@example.com"
	adminPassword = "AdminSecret1"
)

type testServer struct {
	e      *echo.Echo
	tokens *service.TokenService
}

// newTestServer builds the full HTTP surface once per test binary: the
// prometheus middleware registers collectors globally and would panic on a
// second registration.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := memory.NewUserRepository()
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenService(testSecret, time.Hour)

	authSvc := service.NewAuthService(repo, hasher, tokens, nil)
	userSvc := service.NewUserService(repo, hasher, nil, nil)

	if err := authSvc.EnsureAdmin(context.Background(), "admin", adminEmail, adminPassword); err != nil {
		t.Fatalf("admin seed failed: %v", err)
	}

	e := NewRouter(RouterDeps{
		Auth:   authSvc,
		Users:  userSvc,
		Tokens: tokens,
		Log:    zerolog.Nop(),
		Env:    "test",
	})
	return &testServer{e: e, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertEnvelope(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d (body %s)", code, rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != message {
		t.Fatalf("expected message %q, got %v", message, body["message"])
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("error envelope missing machine code: %s", rec.Body.String())
	}
}

func login(t *testing.T, s *testServer, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s failed: %d %s", email, rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("login %s returned no token", email)
	}
	return token
}

func TestServer_EndToEnd(t *testing.T) {
	s := newTestServer(t)

	var (
		aliceToken string
		aliceID    int64
		adminToken string
		bobToken   string
		bobID      int64
	)

	t.Run("register", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"Wonder123"}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
		}
		if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
			t.Fatalf("registration response leaks password material: %s", rec.Body.String())
		}

		body := decodeBody(t, rec)
		aliceToken, _ = body["token"].(string)
		if aliceToken == "" {
			t.Fatalf("no token in registration response")
		}
		user, _ := body["user"].(map[string]any)
		id, _ := user["id"].(float64)
		aliceID = int64(id)
		if aliceID == 0 || user["role"] != domain.RoleUser {
			t.Fatalf("unexpected user payload: %+v", user)
		}
	})

	t.Run("register duplicate email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"alice2","email":"alice@example.com","password":"Wonder123"}`, "")
		assertEnvelope(t, rec, http.StatusBadRequest, "email exists")
	})

	t.Run("register duplicate username", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice2@example.com","password":"Wonder123"}`, "")
		assertEnvelope(t, rec, http.StatusBadRequest, "username exists")
	})

	t.Run("register invalid payload", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"al","email":"bad","password":"x"}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("login does not reveal account existence", func(t *testing.T) {
		wrongPassword := s.do(t, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"WrongPass1"}`, "")
		unknownEmail := s.do(t, http.MethodPost, "/auth/login",
			`{"email":"ghost@example.com","password":"WrongPass1"}`, "")

		assertEnvelope(t, wrongPassword, http.StatusUnauthorized, "invalid credentials")
		assertEnvelope(t, unknownEmail, http.StatusUnauthorized, "invalid credentials")
		if wrongPassword.Body.String() != unknownEmail.Body.String() {
			t.Fatalf("failure bodies differ:\n%s\n%s", wrongPassword.Body.String(), unknownEmail.Body.String())
		}
	})

	t.Run("login", func(t *testing.T) {
		aliceToken = login(t, s, "alice@example.com", "Wonder123")
		adminToken = login(t, s, adminEmail, adminPassword)
	})

	t.Run("me", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/auth/me", "", aliceToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["username"] != "alice" {
			t.Fatalf("unexpected profile: %+v", body)
		}
		if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
			t.Fatalf("profile leaks password material: %s", rec.Body.String())
		}
	})

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/auth/me", "", "")
		assertEnvelope(t, rec, http.StatusUnauthorized, "Authentication required")
	})

	t.Run("tampered token", func(t *testing.T) {
		tampered := aliceToken[:len(aliceToken)-1] + "A"
		if strings.HasSuffix(aliceToken, "A") {
			tampered = aliceToken[:len(aliceToken)-1] + "B"
		}
		rec := s.do(t, http.MethodGet, "/auth/me", "", tampered)
		assertEnvelope(t, rec, http.StatusUnauthorized, "Invalid token")
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := service.NewTokenService(testSecret, -time.Minute).
			Issue(&domain.User{ID: aliceID, Username: "alice", Role: domain.RoleUser})
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		rec := s.do(t, http.MethodGet, "/auth/me", "", expired)
		assertEnvelope(t, rec, http.StatusUnauthorized, "Token expired")
	})

	t.Run("get own profile by id", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", aliceID), "", aliceToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("get other profile forbidden", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/users/1", "", aliceToken)
		assertEnvelope(t, rec, http.StatusForbidden, "access forbidden")
	})

	t.Run("admin reads any profile", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", aliceID), "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("list forbidden for regular user", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/users", "", aliceToken)
		assertEnvelope(t, rec, http.StatusForbidden, "access forbidden")
	})

	t.Run("list as admin", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/users?page=1&limit=10", "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		users, _ := body["users"].([]any)
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		pagination, _ := body["pagination"].(map[string]any)
		if pagination["total"] != float64(2) || pagination["total_pages"] != float64(1) {
			t.Fatalf("unexpected pagination: %+v", pagination)
		}
	})

	t.Run("stats forbidden for regular user", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/users/stats", "", aliceToken)
		assertEnvelope(t, rec, http.StatusForbidden, "access forbidden")
	})

	t.Run("stats as admin", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/users/stats", "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["totalUsers"] != float64(2) || body["adminUsers"] != float64(1) || body["regularUsers"] != float64(1) {
			t.Fatalf("unexpected stats: %+v", body)
		}
	})

	t.Run("update own profile", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, fmt.Sprintf("/users/%d", aliceID),
			`{"email":"alice.new@example.com"}`, aliceToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		user, _ := body["user"].(map[string]any)
		if user["email"] != "alice.new@example.com" {
			t.Fatalf("email not updated: %+v", body)
		}
	})

	t.Run("update conflict", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, fmt.Sprintf("/users/%d", aliceID),
			fmt.Sprintf(`{"email":%q}`, adminEmail), aliceToken)
		assertEnvelope(t, rec, http.StatusBadRequest, "email exists")
	})

	t.Run("update other profile forbidden", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/auth/register",
			`{"username":"bob","email":"bob@example.com","password":"Builder123"}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("bob registration failed: %d %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		bobToken, _ = body["token"].(string)
		user, _ := body["user"].(map[string]any)
		id, _ := user["id"].(float64)
		bobID = int64(id)

		put := s.do(t, http.MethodPut, fmt.Sprintf("/users/%d", aliceID),
			`{"username":"hijack"}`, bobToken)
		assertEnvelope(t, put, http.StatusForbidden, "access forbidden")
	})

	t.Run("delete forbidden for regular user", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", bobID), "", aliceToken)
		assertEnvelope(t, rec, http.StatusForbidden, "access forbidden")
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/users/1", "", adminToken)
		assertEnvelope(t, rec, http.StatusBadRequest, "cannot delete own account")
	})

	t.Run("admin deletes user", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", bobID), "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}

		gone := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", bobID), "", adminToken)
		assertEnvelope(t, gone, http.StatusNotFound, "user not found")
	})

	t.Run("health", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/health", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("metrics exposed", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/metrics", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "identity_") {
			t.Fatalf("metrics output missing identity namespace")
		}
	})
}
