package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/compoundhub/internal/app/system/ratelimit"
)

func TestLimiter_AllowAndExpire(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := ratelimit.New(2, time.Minute).WithClock(func() time.Time { return now })

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("keys are independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("remaining: got %d", got)
	}

	now = now.Add(61 * time.Second)
	if got := l.Remaining("a"); got != 2 {
		t.Errorf("remaining after expiry: got %d", got)
	}
	if !l.Allow("a") {
		t.Error("new window should allow")
	}
}

func TestPerActor(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	h := l.PerActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(id string) int {
		req := httptest.NewRequest("POST", "/bulk/notify", nil)
		if id != "" {
			req = req.WithContext(auth.WithUser(req.Context(), &auth.SessionUser{ID: id, Role: auth.RoleStaff}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"first", "u1", http.StatusOK},
		{"second is limited", "u1", http.StatusTooManyRequests},
		{"other actor", "u2", http.StatusOK},
		{"signed out passes through", "", http.StatusOK},
	}
	for _, tt := range tests {
		if got := call(tt.id); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPerActor_RetryAfterIsTimeLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := ratelimit.New(1, time.Minute).WithClock(func() time.Time { return now })
	h := l.PerActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	user := &auth.SessionUser{ID: "u1", Role: auth.RoleAdmin}

	tests := []struct {
		name      string
		advance   time.Duration
		wantCode  int
		wantRetry string
	}{
		{"opens window", 0, http.StatusOK, ""},
		{"45s in", 45 * time.Second, http.StatusTooManyRequests, "15"},
		{"rounds up", 14*time.Second + 500*time.Millisecond, http.StatusTooManyRequests, "1"},
		{"last instant is at least one", 500 * time.Millisecond, http.StatusTooManyRequests, "1"},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		req := httptest.NewRequest("POST", "/bulk/notify", nil)
		req = req.WithContext(auth.WithUser(req.Context(), user))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.wantCode {
			t.Errorf("%s: status got %d, want %d", tt.name, rec.Code, tt.wantCode)
		}
		if got := rec.Header().Get("Retry-After"); got != tt.wantRetry {
			t.Errorf("%s: Retry-After got %q, want %q", tt.name, got, tt.wantRetry)
		}
	}

	if got := l.RetryAfter("nobody"); got != 0 {
		t.Errorf("RetryAfter unknown key: got %v", got)
	}
}
