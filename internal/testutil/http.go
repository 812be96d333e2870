package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/compoundhub/internal/app/system/project"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents staff data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// SuperAdminUser returns a TestUser with the superadmin role.
func SuperAdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Super", Email: "super@test.com", Role: auth.RoleSuperAdmin}
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Admin", Email: "admin@test.com", Role: auth.RoleAdmin}
}

// StaffUser returns a TestUser with the staff role.
func StaffUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Staff", Email: "staff@test.com", Role: auth.RoleStaff}
}

// WithUser injects user into the request context.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}))
}

// WithProject makes p the active project of the request.
func WithProject(r *http.Request, id primitive.ObjectID, name string) *http.Request {
	ctx := project.WithContext(r.Context(), &project.Info{ID: id, Name: name, Status: project.StatusActive})
	return r.WithContext(ctx)
}

// NewJSONRequest builds a request with a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewProjectRequest builds an authenticated request in project p.
func NewProjectRequest(ctx context.Context, method, target, body string, user TestUser, projectID primitive.ObjectID) *http.Request {
	r := NewJSONRequest(method, target, body).WithContext(ctx)
	return WithProject(WithUser(r, user), projectID, "Test Project")
}
