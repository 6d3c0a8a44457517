package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/praneelbora/expensease/internal/auth"
	"github.com/praneelbora/expensease/internal/models"
)

// captureLogs routes the default slog output into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLoggerRecordsAuthenticatedUser(t *testing.T) {
	buf := captureLogs(t)

	tokens := auth.NewTokenIssuer("test-secret-key-for-tests", time.Hour)
	token, err := tokens.Issue(&models.User{ID: "user-42", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	handler := RequestLogger(RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetUserID(r.Context()); got != "user-42" {
			t.Errorf("handler user ID = %s, want user-42", got)
		}
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/expenses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if !strings.Contains(buf.String(), "user_id=user-42") {
		t.Errorf("log line missing authenticated user: %q", buf.String())
	}
}

func TestRequestLoggerUnauthenticated(t *testing.T) {
	buf := captureLogs(t)

	tokens := auth.NewTokenIssuer("test-secret-key-for-tests", time.Hour)
	handler := RequestLogger(RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(buf.String(), `user_id=""`) {
		t.Errorf("expected empty user_id in log line: %q", buf.String())
	}
}
