package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/dalemusser/compoundhub/internal/app/store/notifications"
	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/compoundhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInbox_WritesThroughStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, project := primitive.NewObjectID(), primitive.NewObjectID()
	inbox := notify.NewInbox(store)

	if err := inbox.Send(ctx, notify.UnitApproved(user, project, "Palm Hills", "7-1")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := inbox.Send(ctx, notify.Bulk(user, project, "Water cut", "Tomorrow 9-11am")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got, err := store.ListForUser(ctx, user, 0)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	for _, n := range got {
		if n.Read || n.MessageID == "" || n.ProjectID != project {
			t.Errorf("unexpected notification: %+v", n)
		}
	}
}

func TestStore_ListForUser_Isolated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me, someoneElse := primitive.NewObjectID(), primitive.NewObjectID()
	for _, n := range []models.Notification{
		{UserID: me, Title: "old", Body: "b", CreatedAt: time.Now().Add(-time.Hour)},
		{UserID: me, Title: "new", Body: "b"},
		{UserID: someoneElse, Title: "other", Body: "b"},
	} {
		if err := store.Insert(ctx, n); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.ListForUser(ctx, me, 10)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Title != "new" {
		t.Errorf("expected newest first, got %q", got[0].Title)
	}
}
