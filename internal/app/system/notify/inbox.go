package notify

import (
	"context"
	"time"

	"github.com/dalemusser/compoundhub/internal/domain/models"
)

// InboxWriter persists one notification document.
type InboxWriter interface {
	Insert(ctx context.Context, n models.Notification) error
}

// Inbox is the default transport: one document per message in the
// notifications collection.
type Inbox struct {
	w   InboxWriter
	now func() time.Time
}

// NewInbox returns an inbox dispatcher writing through w.
func NewInbox(w InboxWriter) *Inbox {
	return &Inbox{w: w, now: time.Now}
}

// Send stores msg as an unread notification.
func (in *Inbox) Send(ctx context.Context, msg Message) error {
	msg, err := Prepare(msg, in.now())
	if err != nil {
		return err
	}
	return in.w.Insert(ctx, models.Notification{
		MessageID:      msg.ID,
		UserID:         msg.UserID,
		ProjectID:      msg.ProjectID,
		Title:          msg.Title,
		Body:           msg.Body,
		TitleLocalized: msg.TitleLocalized,
		BodyLocalized:  msg.BodyLocalized,
		Severity:       msg.Severity,
		Category:       msg.Category,
		CreatedAt:      msg.CreatedAt,
	})
}
