package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"go.uber.org/zap"
)

const testKey = "test-session-key-must-be-32-chars-long"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withTestUser(r *http.Request, role string) *http.Request {
	u := &auth.SessionUser{ID: "65f000000000000000000001", Name: "Test Staff", Role: role}
	return r.WithContext(auth.WithUser(r.Context(), u))
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	rec := httptest.NewRecorder()
	auth.RequireSignedIn(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/projects/x/users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string // "" means signed out
		allowed []string
		want    int
	}{
		{"signed out", "", []string{auth.RoleAdmin}, http.StatusUnauthorized},
		{"wrong role", auth.RoleStaff, []string{auth.RoleAdmin, auth.RoleSuperAdmin}, http.StatusForbidden},
		{"allowed role", auth.RoleAdmin, []string{auth.RoleAdmin, auth.RoleSuperAdmin}, http.StatusOK},
		{"case insensitive", "SuperAdmin", []string{" superadmin "}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/bulk/suspend", nil)
			if tt.role != "" {
				req = withTestUser(req, tt.role)
			}
			rec := httptest.NewRecorder()
			auth.RequireRole(tt.allowed...)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	if err := auth.InitSessionStore(testKey, "test-session", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}

	rec := httptest.NewRecorder()
	signIn := httptest.NewRequest("POST", "/login", nil)
	if err := auth.SignIn(rec, signIn, auth.SessionUser{ID: "65f000000000000000000001", Name: "Rana", Role: "Admin"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var got *auth.SessionUser
	h := auth.LoadSessionUser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.Name != "Rana" || got.Role != auth.RoleAdmin || got.ObjectID().IsZero() {
		t.Errorf("user: %+v", got)
	}
}

func TestLoadSessionUser_TamperedCookieIsSignedOut(t *testing.T) {
	if err := auth.InitSessionStore(testKey, "test-session", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}

	var found bool
	h := auth.LoadSessionUser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if found {
		t.Error("tampered cookie must not sign anyone in")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("request should continue, got %d", rec.Code)
	}
}

func TestSessionUser_Helpers(t *testing.T) {
	u := &auth.SessionUser{ID: "bad", Role: auth.RoleSuperAdmin}
	if !u.ObjectID().IsZero() {
		t.Error("malformed id should give the zero ObjectID")
	}
	if !u.IsSuperAdmin() {
		t.Error("expected super admin")
	}
	var none *auth.SessionUser
	if none.IsSuperAdmin() {
		t.Error("nil user is not a super admin")
	}
}
