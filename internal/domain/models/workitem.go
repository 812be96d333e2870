package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkItem is the slice of a status-bearing document that the badge counters
// read: bookings, orders, complaints, fines, gate passes and so on all share
// this projection. Status is empty when the source document has none.
type WorkItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	IsDeleted bool               `bson:"is_deleted,omitempty" json:"is_deleted,omitempty"`
}

// Notification is one message delivered to a resident's inbox.
type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID      string             `bson:"message_id" json:"message_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProjectID      primitive.ObjectID `bson:"project_id" json:"project_id"`
	Title          string             `bson:"title" json:"title"`
	Body           string             `bson:"body" json:"body"`
	TitleLocalized string             `bson:"title_localized,omitempty" json:"title_localized,omitempty"`
	BodyLocalized  string             `bson:"body_localized,omitempty" json:"body_localized,omitempty"`
	Severity       string             `bson:"severity" json:"severity"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	Read           bool               `bson:"read" json:"read"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
