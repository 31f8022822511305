package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tracknourish/tracknourish/internal/api/middleware"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/security"
)

func newTestTokens() *security.TokenManager {
	return security.NewTokenManager(
		"test-secret-key-with-32-chars!!",
		time.Hour,
		360*time.Hour,
		10*time.Minute,
		10*time.Minute,
	)
}

func TestAuthenticate_ValidAccessCookie(t *testing.T) {
	tokens := newTestTokens()
	cfg := config.AuthConfig{SignInPath: "/auth/sign-in"}
	m := middleware.NewAuthMiddleware(tokens, nil, cfg)

	userID := uuid.New()
	access, err := tokens.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	var gotID uuid.UUID
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = middleware.GetUserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()

	m.Authenticate(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !gotOK {
		t.Fatal("user ID missing from request context")
	}
	if gotID != userID {
		t.Errorf("context user ID = %s, want %s", gotID, userID)
	}
}

func TestAuthenticate_NoCookies(t *testing.T) {
	cfg := config.AuthConfig{SignInPath: "/auth/sign-in"}
	m := middleware.NewAuthMiddleware(newTestTokens(), nil, cfg)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for an unauthenticated request")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	m.Authenticate(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	tokens := newTestTokens()
	cfg := config.AuthConfig{LandingPath: "/dashboard"}
	m := middleware.NewAuthMiddleware(tokens, nil, cfg)

	access, err := tokens.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("signed-in user must be redirected away")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()

	m.RedirectIfAuthenticated(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status %d, got %d", http.StatusTemporaryRedirect, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect location = %q, want /dashboard", loc)
	}
}

func TestRedirectIfAuthenticated_NoSession(t *testing.T) {
	cfg := config.AuthConfig{LandingPath: "/dashboard"}
	m := middleware.NewAuthMiddleware(newTestTokens(), nil, cfg)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
	rec := httptest.NewRecorder()

	m.RedirectIfAuthenticated(next).ServeHTTP(rec, req)

	if !called {
		t.Error("anonymous request must pass through")
	}
}
