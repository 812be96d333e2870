package residents_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/compoundhub/internal/app/features/errors"
	"github.com/dalemusser/compoundhub/internal/app/features/residents"
	"github.com/dalemusser/compoundhub/internal/app/store/audit"
	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/app/system/auditlog"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/compoundhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type listBody struct {
	Items []struct {
		ID          string              `json:"id"`
		FullName    string              `json:"full_name"`
		IsDeleted   bool                `json:"is_deleted"`
		Memberships []models.Membership `json:"memberships"`
	} `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	Capped     bool `json:"capped"`
}

func newHandler(db *mongo.Database, dirCap int) *residents.Handler {
	audits := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Admin: auditlog.DestDB})
	return residents.NewHandler(db, dirCap, uierrors.NewErrorLogger(zap.NewNop()), audits, zap.NewNop())
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listBody {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var body listBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestServeList_FiltersAndPages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")

	fx.CreateResident(ctx, "Amal", "Nasser", "amal@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(other.ID, "2-9", models.RoleTenant))
	fx.CreateResident(ctx, "Bassem", "Karam", "bassem@example.com", testutil.Member(p.ID, "8-3", models.RoleTenant))
	fx.CreateResident(ctx, "Carla", "Issa", "carla@example.com", testutil.Member(p.ID, "7-4", models.RoleFamily))
	fx.CreateResident(ctx, "Dina", "Saad", "dina@example.com", testutil.Member(other.ID, "1-1", models.RoleOwner))
	gone := fx.CreateResident(ctx, "Elie", "Khoury", "elie@example.com", testutil.Member(p.ID, "9-9", models.RoleOwner))
	if err := userstore.New(db).SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	h := newHandler(db, 0)

	tests := []struct {
		name      string
		target    string
		wantTotal int
		wantNames []string
	}{
		{"default excludes deleted", "/users", 3, []string{"Amal Nasser", "Bassem Karam", "Carla Issa"}},
		{"deleted only", "/users?deleted=deleted", 1, []string{"Elie Khoury"}},
		{"all", "/users?deleted=all", 4, nil},
		{"search is case and accent insensitive", "/users?q=%C3%81MAL", 1, []string{"Amal Nasser"}},
		{"building scoped to project", "/users?building=7", 2, []string{"Amal Nasser", "Carla Issa"}},
		{"other project's building ignored", "/users?building=2", 0, []string{}},
		{"role", "/users?role=tenant", 1, []string{"Bassem Karam"}},
		{"page size and page", "/users?page_size=20&page=2", 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewProjectRequest(ctx, "GET", tt.target, "", testutil.StaffUser(), p.ID)
			rec := httptest.NewRecorder()
			h.ServeList(rec, req)

			body := decodeList(t, rec)
			if body.Total != tt.wantTotal {
				t.Fatalf("total: got %d, want %d", body.Total, tt.wantTotal)
			}
			if tt.wantNames == nil {
				return
			}
			if len(body.Items) != len(tt.wantNames) {
				t.Fatalf("items: got %d, want %d", len(body.Items), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if body.Items[i].FullName != want {
					t.Errorf("item %d: got %q, want %q", i, body.Items[i].FullName, want)
				}
			}
		})
	}
}

func TestServeList_OnlyActiveProjectMemberships(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	fx.CreateResident(ctx, "Amal", "Nasser", "amal@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(other.ID, "2-9", models.RoleTenant))

	req := testutil.NewProjectRequest(ctx, "GET", "/users", "", testutil.StaffUser(), p.ID)
	rec := httptest.NewRecorder()
	newHandler(db, 0).ServeList(rec, req)

	body := decodeList(t, rec)
	if len(body.Items) != 1 {
		t.Fatalf("items: got %d", len(body.Items))
	}
	ms := body.Items[0].Memberships
	if len(ms) != 1 || ms[0].Unit != "7-1" {
		t.Errorf("memberships: %+v", ms)
	}
}

func TestServeList_Capped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	fx.CreateResident(ctx, "Amal", "Nasser", "amal@example.com", testutil.Member(p.ID, "7-1", models.RoleOwner))
	fx.CreateResident(ctx, "Bassem", "Karam", "bassem@example.com", testutil.Member(p.ID, "8-3", models.RoleTenant))
	fx.CreateResident(ctx, "Carla", "Issa", "carla@example.com", testutil.Member(p.ID, "7-4", models.RoleFamily))

	req := testutil.NewProjectRequest(ctx, "GET", "/users", "", testutil.StaffUser(), p.ID)
	rec := httptest.NewRecorder()
	newHandler(db, 2).ServeList(rec, req)

	body := decodeList(t, rec)
	if !body.Capped || body.Total != 2 {
		t.Errorf("capped=%v total=%d", body.Capped, body.Total)
	}
}

func TestHandleDeleteAndRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	amal := fx.CreateResident(ctx, "Amal", "Nasser", "amal@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(other.ID, "2-9", models.RoleTenant))
	bassem := fx.CreateResident(ctx, "Bassem", "Karam", "bassem@example.com", testutil.Member(p.ID, "8-3", models.RoleTenant))
	outsider := fx.CreateResident(ctx, "Dina", "Saad", "dina@example.com", testutil.Member(other.ID, "1-1", models.RoleOwner))

	h := newHandler(db, 0)
	users := userstore.New(db)

	call := func(fn http.HandlerFunc, id string) *httptest.ResponseRecorder {
		req := testutil.NewProjectRequest(ctx, "POST", "/users/"+id, "", testutil.AdminUser(), p.ID)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		fn(rec, req)
		return rec
	}

	t.Run("remove keeps other projects", func(t *testing.T) {
		rec := call(h.HandleRemove, amal.ID.Hex())
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
		}
		got, err := users.GetByID(ctx, amal.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.Memberships) != 1 || got.Memberships[0].ProjectID != other.ID {
			t.Errorf("memberships: %+v", got.Memberships)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := call(h.HandleDelete, bassem.ID.Hex())
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
		}
		got, err := users.GetByID(ctx, bassem.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.IsDeleted || len(got.Memberships) != 0 {
			t.Errorf("user after delete: deleted=%v memberships=%d", got.IsDeleted, len(got.Memberships))
		}
	})

	t.Run("not a member", func(t *testing.T) {
		if rec := call(h.HandleDelete, outsider.ID.Hex()); rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if rec := call(h.HandleRemove, primitive.NewObjectID().Hex()); rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		if rec := call(h.HandleRemove, "nope"); rec.Code != http.StatusBadRequest {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("audited", func(t *testing.T) {
		n, err := audit.New(db).CountByFilter(ctx, audit.QueryFilter{ProjectID: &p.ID, Category: audit.CategoryAdmin})
		if err != nil {
			t.Fatalf("CountByFilter: %v", err)
		}
		if n != 2 {
			t.Errorf("audit events: got %d, want 2", n)
		}
	})
}
