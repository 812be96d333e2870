// Package notify delivers resident notifications.
//
// A Dispatcher is fire-and-forget from the workflow's point of view: callers
// count or log a failed Send but never roll back the work that triggered it.
// Two transports exist: the Mongo inbox read by the resident apps, and an
// AMQP queue consumed by the push gateway. Either one is normally wrapped in
// a Breaker.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Severity levels understood by the resident apps.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Categories.
const (
	CategoryBulk        = "bulk"
	CategoryUnitRequest = "unit_request"
)

// ErrInvalidMessage is returned for a message without recipient or body.
var ErrInvalidMessage = errors.New("notification needs a recipient and a body")

// Message is one notification to one resident.
type Message struct {
	ID             string             `json:"id"`
	UserID         primitive.ObjectID `json:"user_id"`
	ProjectID      primitive.ObjectID `json:"project_id"`
	Title          string             `json:"title"`
	Body           string             `json:"body"`
	TitleLocalized string             `json:"title_localized,omitempty"`
	BodyLocalized  string             `json:"body_localized,omitempty"`
	Severity       string             `json:"severity"`
	Category       string             `json:"category,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Dispatcher sends one message.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, msg Message) error

// Send calls f.
func (f DispatcherFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Prepare validates msg and fills the id, severity and timestamp.
func Prepare(msg Message, now time.Time) (Message, error) {
	if msg.UserID.IsZero() || strings.TrimSpace(msg.Body) == "" {
		return msg, ErrInvalidMessage
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Severity == "" {
		msg.Severity = SeverityInfo
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now.UTC()
	}
	return msg, nil
}
