// internal/domain/models/unitrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnitRequest asks staff to attach a user to a unit. User name/email and the
// project name are snapshots taken when the request was filed.
//
// Status moves pending -> approved or pending -> rejected and never leaves a
// terminal state.
type UnitRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName    string             `bson:"user_name" json:"user_name"`
	UserEmail   string             `bson:"user_email" json:"user_email"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	ProjectName string             `bson:"project_name" json:"project_name"`
	Unit        string             `bson:"unit" json:"unit"`
	Role        string             `bson:"role" json:"role"`
	Status      string             `bson:"status" json:"status"`
	RequestedAt time.Time          `bson:"requested_at" json:"requested_at"`

	ApprovedAt *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	ApprovedBy *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`

	RejectedAt      *time.Time          `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	RejectedBy      *primitive.ObjectID `bson:"rejected_by,omitempty" json:"rejected_by,omitempty"`
	RejectionReason string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
}

// IsTerminal reports whether the request has been resolved.
func (r UnitRequest) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
