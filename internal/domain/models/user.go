// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles within a unit.
const (
	RoleOwner  = "owner"
	RoleFamily = "family"
	RoleTenant = "tenant"
)

// Approval states shared by users, memberships and unit requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Suspension types.
const (
	SuspensionTemporary = "temporary"
	SuspensionPermanent = "permanent"
)

// User is a resident account in the directory.
//
// NOTE:
//   - Project membership is embedded on the user as an ordered list.
//     Only entries whose ProjectID matches the active project matter to a
//     project-scoped view; other entries must be left untouched by writes.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	LastName    string             `bson:"last_name" json:"last_name"`
	FullNameCI  string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email       string             `bson:"email" json:"email"`
	Mobile      string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	NationalID  string             `bson:"national_id,omitempty" json:"national_id,omitempty"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty"`

	Memberships []Membership `bson:"memberships" json:"memberships"`

	ApprovalStatus     string  `bson:"approval_status" json:"approval_status"` // pending | approved | rejected
	RegistrationStatus string  `bson:"registration_status,omitempty" json:"registration_status,omitempty"`
	IsDeleted          bool    `bson:"is_deleted" json:"is_deleted"`
	Migrated           bool    `bson:"migrated" json:"migrated"`
	OldID              *string `bson:"old_id,omitempty" json:"old_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`

	// DeletedFrom lists the projects the user belonged to when soft-deleted,
	// so each project's directory can still show them under "deleted".
	DeletedFrom []primitive.ObjectID `bson:"deleted_from,omitempty" json:"deleted_from,omitempty"`
}

// Membership is a user's association with one unit of one project.
type Membership struct {
	ProjectID      primitive.ObjectID `bson:"project_id" json:"project_id"`
	Unit           string             `bson:"unit" json:"unit"` // unit identifier, "{building}-{unit}"
	Role           string             `bson:"role" json:"role"` // owner | family | tenant
	ApprovalStatus string             `bson:"approval_status,omitempty" json:"approval_status,omitempty"`

	IsSuspended       bool                `bson:"is_suspended" json:"is_suspended"`
	SuspensionReason  string              `bson:"suspension_reason,omitempty" json:"suspension_reason,omitempty"`
	SuspensionType    string              `bson:"suspension_type,omitempty" json:"suspension_type,omitempty"`
	SuspensionEndDate *time.Time          `bson:"suspension_end_date,omitempty" json:"suspension_end_date,omitempty"`
	SuspendedAt       *time.Time          `bson:"suspended_at,omitempty" json:"suspended_at,omitempty"`
	SuspendedBy       *primitive.ObjectID `bson:"suspended_by,omitempty" json:"suspended_by,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// NeedsMigration reports whether the record still carries a legacy id
// that has not been reconciled.
func (u User) NeedsMigration() bool {
	return u.OldID != nil && *u.OldID != "" && !u.Migrated
}

// MembershipsIn returns the indexes of memberships that belong to projectID.
func (u User) MembershipsIn(projectID primitive.ObjectID) []int {
	var idx []int
	for i, m := range u.Memberships {
		if m.ProjectID == projectID {
			idx = append(idx, i)
		}
	}
	return idx
}

// MembershipFor returns the index of the membership matching (projectID, unit).
func (u User) MembershipFor(projectID primitive.ObjectID, unit string) (int, bool) {
	for i, m := range u.Memberships {
		if m.ProjectID == projectID && m.Unit == unit {
			return i, true
		}
	}
	return -1, false
}

// Suspension is the set of fields merged into a membership when it is
// suspended. EndDate is nil for permanent suspensions.
type Suspension struct {
	Reason      string
	Type        string
	EndDate     *time.Time
	SuspendedAt time.Time
	SuspendedBy primitive.ObjectID
}
