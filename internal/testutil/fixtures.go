package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc interface{}) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateProject creates an active project.
func (f *Fixtures) CreateProject(ctx context.Context, name string) models.Project {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "projects", p)
	return p
}

// CreateResident creates an approved user with the given memberships.
func (f *Fixtures) CreateResident(ctx context.Context, first, last, email string, ms ...models.Membership) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Memberships:    ms,
		ApprovalStatus: models.StatusApproved,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if u.Memberships == nil {
		u.Memberships = []models.Membership{}
	}
	u.FullNameCI = text.Fold(u.FullName())
	f.insert(ctx, "users", u)
	return u
}

// Member builds a membership value for CreateResident.
func Member(projectID primitive.ObjectID, unit, role string) models.Membership {
	return models.Membership{ProjectID: projectID, Unit: unit, Role: role, ApprovalStatus: models.StatusApproved}
}

// CreateUnit creates a unit in projectID.
func (f *Fixtures) CreateUnit(ctx context.Context, projectID primitive.ObjectID, building, unit string) models.Unit {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.Unit{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		BuildingNum: building,
		UnitNum:     unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	u.UnitKey = u.Identifier()
	f.insert(ctx, "units", u)
	return u
}

// CreateUnitRequest creates a pending unit request.
func (f *Fixtures) CreateUnitRequest(ctx context.Context, p models.Project, u models.User, unit, role string) models.UnitRequest {
	f.t.Helper()
	r := models.UnitRequest{
		ID:          primitive.NewObjectID(),
		UserID:      u.ID,
		UserName:    u.FullName(),
		UserEmail:   u.Email,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Unit:        unit,
		Role:        role,
		Status:      models.StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	f.insert(ctx, "unit_requests", r)
	return r
}

// CreateWorkItem inserts a status-bearing document into coll.
func (f *Fixtures) CreateWorkItem(ctx context.Context, coll string, projectID primitive.ObjectID, status string) models.WorkItem {
	f.t.Helper()
	w := models.WorkItem{ID: primitive.NewObjectID(), ProjectID: projectID, Status: status}
	f.insert(ctx, coll, w)
	return w
}
