package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memInbox struct {
	docs []models.Notification
	err  error
}

func (m *memInbox) Insert(_ context.Context, n models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, n)
	return nil
}

func TestPrepare(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if _, err := notify.Prepare(notify.Message{Body: "hi"}, now); !errors.Is(err, notify.ErrInvalidMessage) {
		t.Errorf("missing user: got %v, want ErrInvalidMessage", err)
	}
	if _, err := notify.Prepare(notify.Message{UserID: primitive.NewObjectID(), Body: "  "}, now); !errors.Is(err, notify.ErrInvalidMessage) {
		t.Errorf("blank body: got %v, want ErrInvalidMessage", err)
	}

	msg, err := notify.Prepare(notify.Message{UserID: primitive.NewObjectID(), Body: "hi"}, now)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if msg.ID == "" || msg.Severity != notify.SeverityInfo || !msg.CreatedAt.Equal(now) {
		t.Errorf("defaults not filled: %+v", msg)
	}
}

func TestInbox_Send(t *testing.T) {
	w := &memInbox{}
	in := notify.NewInbox(w)
	uid, pid := primitive.NewObjectID(), primitive.NewObjectID()

	if err := in.Send(context.Background(), notify.UnitApproved(uid, pid, "Palm Hills", "7-1")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(w.docs) != 1 {
		t.Fatalf("docs: got %d, want 1", len(w.docs))
	}
	n := w.docs[0]
	if n.UserID != uid || n.ProjectID != pid || n.Read {
		t.Errorf("unexpected document: %+v", n)
	}
	if !strings.Contains(n.Body, "7-1") || !strings.Contains(n.BodyLocalized, "7-1") {
		t.Errorf("bodies should reference the unit: %q / %q", n.Body, n.BodyLocalized)
	}
	if n.Severity != notify.SeveritySuccess || n.Category != notify.CategoryUnitRequest {
		t.Errorf("severity/category: %q/%q", n.Severity, n.Category)
	}
}

func TestUnitRejected_IncludesReason(t *testing.T) {
	msg := notify.UnitRejected(primitive.NewObjectID(), primitive.NewObjectID(), "Palm Hills", "7-1", "documents missing")
	if !strings.Contains(msg.Body, "documents missing") || !strings.Contains(msg.BodyLocalized, "documents missing") {
		t.Errorf("reason missing from bodies: %q / %q", msg.Body, msg.BodyLocalized)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := notify.DispatcherFunc(func(context.Context, notify.Message) error {
		calls++
		return errors.New("down")
	})
	b := notify.NewBreaker(failing, notify.BreakerSettings{Transport: "test", Failures: 3, Timeout: time.Minute}, zap.NewNop())
	msg := notify.Bulk(primitive.NewObjectID(), primitive.NewObjectID(), "t", "b")

	for i := 0; i < 3; i++ {
		if err := b.Send(context.Background(), msg); err == nil {
			t.Fatalf("send %d: expected error", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state: got %v, want open", b.State())
	}

	err := b.Send(context.Background(), msg)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker: got %v, want ErrOpenState", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3 (open breaker must not call through)", calls)
	}
}

func TestBreaker_PassesThrough(t *testing.T) {
	w := &memInbox{}
	b := notify.NewBreaker(notify.NewInbox(w), notify.BreakerSettings{Transport: "inbox"}, zap.NewNop())
	if err := b.Send(context.Background(), notify.Bulk(primitive.NewObjectID(), primitive.NewObjectID(), "t", "b")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(w.docs) != 1 || b.State() != gobreaker.StateClosed {
		t.Errorf("docs=%d state=%v", len(w.docs), b.State())
	}
}
