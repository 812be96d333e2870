package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/compoundhub/internal/app/store/users"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/compoundhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{FirstName: "  Rana ", LastName: "Haddad", Email: " Rana@Example.COM "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "rana@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.FullNameCI != "rana haddad" {
		t.Errorf("FullNameCI: got %q", created.FullNameCI)
	}
	if created.ApprovalStatus != models.StatusPending {
		t.Errorf("default approval: got %q", created.ApprovalStatus)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("round trip email: got %q", got.Email)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListByProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	fx.CreateResident(ctx, "Zeina", "Khoury", "z@example.com", testutil.Member(p.ID, "7-1", models.RoleOwner))
	fx.CreateResident(ctx, "Adam", "Saleh", "a@example.com", testutil.Member(p.ID, "7-2", models.RoleTenant))
	fx.CreateResident(ctx, "Omar", "Nassar", "o@example.com", testutil.Member(other.ID, "1-1", models.RoleOwner))

	users, err := store.ListByProject(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].FirstName != "Adam" || users[1].FirstName != "Zeina" {
		t.Errorf("expected name order, got %s, %s", users[0].FirstName, users[1].FirstName)
	}

	capped, err := store.ListByProject(ctx, p.ID, 1)
	if err != nil {
		t.Fatalf("ListByProject with limit failed: %v", err)
	}
	if len(capped) != 1 || capped[0].FirstName != "Adam" {
		t.Errorf("limit 1: got %d users", len(capped))
	}
}

func TestStore_SuspendMemberships_OnlyMatchingUnits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(p.ID, "8-1", models.RoleOwner),
		testutil.Member(other.ID, "7-1", models.RoleOwner),
	)

	end := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Millisecond)
	actor := primitive.NewObjectID()
	err := store.SuspendMemberships(ctx, u.ID, p.ID, []string{"7-1"}, models.Suspension{
		Reason:      "unpaid fees",
		Type:        models.SuspensionTemporary,
		EndDate:     &end,
		SuspendedAt: time.Now().UTC(),
		SuspendedBy: actor,
	})
	if err != nil {
		t.Fatalf("SuspendMemberships failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	m := got.Memberships[0]
	if !m.IsSuspended || m.SuspensionReason != "unpaid fees" || m.SuspensionType != models.SuspensionTemporary {
		t.Errorf("membership 7-1 not suspended: %+v", m)
	}
	if m.SuspensionEndDate == nil || !m.SuspensionEndDate.Equal(end) {
		t.Errorf("end date: got %v, want %v", m.SuspensionEndDate, end)
	}
	if m.SuspendedBy == nil || *m.SuspendedBy != actor {
		t.Errorf("suspended_by: got %v", m.SuspendedBy)
	}
	if got.Memberships[1].IsSuspended {
		t.Error("membership in another building must be untouched")
	}
	if got.Memberships[2].IsSuspended {
		t.Error("membership in another project must be untouched")
	}
}

func TestStore_SuspendMemberships_NoMatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com", testutil.Member(p.ID, "7-1", models.RoleOwner))

	err := store.SuspendMemberships(ctx, u.ID, p.ID, []string{"9-9"}, models.Suspension{Type: models.SuspensionPermanent})
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ApproveAndAddMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	pending := models.Membership{ProjectID: p.ID, Unit: "7-1", Role: models.RoleOwner, ApprovalStatus: models.StatusPending}
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com", pending)

	matched, err := store.ApproveMembership(ctx, u.ID, p.ID, "7-1")
	if err != nil || !matched {
		t.Fatalf("ApproveMembership: matched=%v err=%v", matched, err)
	}
	matched, err = store.ApproveMembership(ctx, u.ID, p.ID, "8-1")
	if err != nil || matched {
		t.Fatalf("ApproveMembership on missing unit: matched=%v err=%v", matched, err)
	}

	if err := store.AddMembership(ctx, u.ID, testutil.Member(p.ID, "8-1", models.RoleFamily)); err != nil {
		t.Fatalf("AddMembership failed: %v", err)
	}

	got, _ := store.GetByID(ctx, u.ID)
	if len(got.Memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(got.Memberships))
	}
	if got.Memberships[0].ApprovalStatus != models.StatusApproved {
		t.Errorf("7-1 approval: got %q", got.Memberships[0].ApprovalStatus)
	}
	if got.Memberships[1].Unit != "8-1" || got.Memberships[1].Role != models.RoleFamily {
		t.Errorf("appended membership: %+v", got.Memberships[1])
	}

	if err := store.AddMembership(ctx, primitive.NewObjectID(), pending); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("AddMembership on unknown user: got %v", err)
	}
}

func TestStore_RemoveMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(p.ID, "8-1", models.RoleOwner),
	)

	removed, err := store.RemoveMembership(ctx, u.ID, p.ID, "7-1")
	if err != nil || !removed {
		t.Fatalf("RemoveMembership: removed=%v err=%v", removed, err)
	}
	removed, err = store.RemoveMembership(ctx, u.ID, p.ID, "7-1")
	if err != nil || removed {
		t.Errorf("second RemoveMembership: removed=%v err=%v", removed, err)
	}

	got, _ := store.GetByID(ctx, u.ID)
	if len(got.Memberships) != 1 || got.Memberships[0].Unit != "8-1" {
		t.Errorf("remaining memberships: %+v", got.Memberships)
	}
}

func TestStore_RemoveFromProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com",
		testutil.Member(p.ID, "7-1", models.RoleOwner),
		testutil.Member(p.ID, "8-1", models.RoleOwner),
		testutil.Member(other.ID, "1-1", models.RoleTenant),
	)

	removed, err := store.RemoveFromProject(ctx, u.ID, p.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveFromProject: removed=%v err=%v", removed, err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if len(got.Memberships) != 1 || got.Memberships[0].ProjectID != other.ID {
		t.Errorf("remaining memberships: %+v", got.Memberships)
	}
}

func TestStore_SoftDelete_KeepsDirectoryEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	other := fx.CreateProject(ctx, "Marina")
	u := fx.CreateResident(ctx, "Rana", "Haddad", "r@example.com", testutil.Member(p.ID, "7-1", models.RoleOwner))
	fx.CreateResident(ctx, "Omar", "Nassar", "o@example.com", testutil.Member(other.ID, "1-1", models.RoleOwner))

	if err := store.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if err := store.SoftDelete(ctx, u.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("second SoftDelete: got %v, want ErrNotFound", err)
	}

	got, _ := store.GetByID(ctx, u.ID)
	if !got.IsDeleted || got.DeletedAt == nil {
		t.Errorf("user not marked deleted: %+v", got)
	}
	if len(got.Memberships) != 0 {
		t.Errorf("memberships should be cleared, got %d", len(got.Memberships))
	}
	if len(got.DeletedFrom) != 1 || got.DeletedFrom[0] != p.ID {
		t.Errorf("deleted_from: %v", got.DeletedFrom)
	}

	dir, err := store.Directory(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if len(dir) != 1 || dir[0].ID != u.ID {
		t.Errorf("directory should still list the deleted resident, got %d entries", len(dir))
	}

	members, _ := store.ListByProject(ctx, p.ID, 0)
	if len(members) != 0 {
		t.Errorf("deleted resident must not be an active member, got %d", len(members))
	}
}

func TestStore_Directory_Cap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProject(ctx, "Palm Hills")
	for _, name := range []string{"Ali", "Badr", "Dina", "Farah"} {
		fx.CreateResident(ctx, name, "Test", name+"@example.com", testutil.Member(p.ID, "1-1", models.RoleFamily))
	}

	dir, err := store.Directory(ctx, p.ID, 3)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if len(dir) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(dir))
	}
	if dir[0].FirstName != "Ali" || dir[2].FirstName != "Dina" {
		t.Errorf("unexpected order: %s .. %s", dir[0].FirstName, dir[2].FirstName)
	}
}
