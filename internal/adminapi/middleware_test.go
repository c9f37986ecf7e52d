package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/edge-mapper/internal/rpcserver/authtoken"
)

func TestRequestIDMiddleware_GeneratesIDWhenMissing(t *testing.T) {
	s := newTestAdminServer(t)
	var seen string
	h := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(ctxKeyRequestID).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen == "" {
		t.Error("expected a generated request id in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("expected response header to echo the request id")
	}
}

func TestRequestIDMiddleware_ReusesIncomingHeader(t *testing.T) {
	s := newTestAdminServer(t)
	h := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want caller-supplied", rec.Header().Get("X-Request-ID"))
	}
}

func TestRecoveryMiddleware_ConvertsPanicTo500(t *testing.T) {
	s := newTestAdminServer(t)
	h := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestAuthMiddleware_NoopWhenDisabled(t *testing.T) {
	s := newTestAdminServer(t)
	called := false
	h := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Error("expected downstream handler to run when auth is disabled")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMissingBearerWhenEnabled(t *testing.T) {
	s := newTestAdminServer(t)
	s.auth = authtoken.NewVerifier("secret", "edge-mapper")

	h := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_AcceptsValidBearer(t *testing.T) {
	s := newTestAdminServer(t)
	verifier := authtoken.NewVerifier("secret", "edge-mapper")
	s.auth = verifier

	token, err := verifier.Issue("admin", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	called := false
	h := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Error("expected downstream handler to run with a valid bearer token")
	}
}
