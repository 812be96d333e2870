package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/compoundhub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/compoundhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type badgesBody struct {
	ProjectID string         `json:"project_id"`
	ByDomain  map[string]int `json:"by_domain"`
	Dashboard int            `json:"dashboard"`
}

func TestServeBadges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")

	fx.CreateWorkItem(ctx, badges.SourceBookings, p.ID, "pending")
	fx.CreateWorkItem(ctx, badges.SourceBookings, p.ID, "confirmed")
	fx.CreateWorkItem(ctx, badges.SourceComplaints, p.ID, "In Progress")
	fx.CreateWorkItem(ctx, badges.SourceComplaints, other.ID, "Open")
	fx.CreateWorkItem(ctx, badges.SourceNews, p.ID, "published")
	fx.CreateWorkItem(ctx, badges.SourceAdminRequests, other.ID, "pending")

	pending := models.Membership{ProjectID: p.ID, Unit: "7-1", Role: models.RoleOwner}
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com", pending)
	if _, err := db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"approval_status": models.StatusPending}}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	h := dashboard.NewHandler(db, 0, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	tests := []struct {
		name          string
		user          testutil.TestUser
		wantAdmin     int
		wantDashboard int
	}{
		// users 1 + bookings 1 + complaints 1
		{"staff", testutil.StaffUser(), 0, 3},
		// plus the global admin request
		{"super admin", testutil.SuperAdminUser(), 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewProjectRequest(ctx, "GET", "/dashboard/badges", "", tt.user, p.ID)
			rec := httptest.NewRecorder()
			h.ServeBadges(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			var body badgesBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.ByDomain[badges.DomainUsers] != 1 || body.ByDomain[badges.DomainBookings] != 1 || body.ByDomain[badges.DomainComplaints] != 1 {
				t.Errorf("by_domain: %v", body.ByDomain)
			}
			if body.ByDomain[badges.DomainPublishedNews] != 1 {
				t.Errorf("published news should be reported: %v", body.ByDomain)
			}
			if body.ByDomain[badges.DomainAdminRequests] != tt.wantAdmin {
				t.Errorf("admin requests: got %d, want %d", body.ByDomain[badges.DomainAdminRequests], tt.wantAdmin)
			}
			if body.Dashboard != tt.wantDashboard {
				t.Errorf("dashboard: got %d, want %d", body.Dashboard, tt.wantDashboard)
			}
		})
	}
}

type fakeCounter struct {
	counts map[primitive.ObjectID]int
	ready  bool
}

func (f fakeCounter) PendingFor(id primitive.ObjectID) (int, bool) {
	return f.counts[id], f.ready
}

func TestServeBadges_LiveDeviceResets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	fx.CreateWorkItem(ctx, badges.SourceDeviceResets, p.ID, "pending")

	tests := []struct {
		name    string
		counter dashboard.PendingCounter
		want    int
	}{
		{"no watcher reads the collection", nil, 1},
		{"watcher not ready reads the collection", fakeCounter{ready: false}, 1},
		{"ready watcher is used", fakeCounter{counts: map[primitive.ObjectID]int{p.ID: 5}, ready: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := dashboard.NewHandler(db, 0, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
			h.DeviceResets = tt.counter

			req := testutil.NewProjectRequest(ctx, "GET", "/dashboard/badges", "", testutil.SuperAdminUser(), p.ID)
			rec := httptest.NewRecorder()
			h.ServeBadges(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			var body badgesBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := body.ByDomain[badges.DomainDeviceResets]; got != tt.want {
				t.Errorf("device resets: got %d, want %d", got, tt.want)
			}
			if body.Dashboard != tt.want {
				t.Errorf("dashboard: got %d, want %d", body.Dashboard, tt.want)
			}
		})
	}
}
