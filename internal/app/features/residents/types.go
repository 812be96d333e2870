// internal/app/features/residents/types.go
package residents

import (
	"time"

	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// residentRow is one user as seen from the active project: only memberships
// of that project are included.
type residentRow struct {
	ID                 primitive.ObjectID  `json:"id"`
	FullName           string              `json:"full_name"`
	Email              string              `json:"email"`
	Mobile             string              `json:"mobile,omitempty"`
	ApprovalStatus     string              `json:"approval_status"`
	RegistrationStatus string              `json:"registration_status,omitempty"`
	IsDeleted          bool                `json:"is_deleted"`
	NeedsMigration     bool                `json:"needs_migration"`
	Memberships        []models.Membership `json:"memberships"`
	CreatedAt          time.Time           `json:"created_at"`
}

func toRow(u models.User, projectID primitive.ObjectID) residentRow {
	ms := []models.Membership{}
	for _, i := range u.MembershipsIn(projectID) {
		ms = append(ms, u.Memberships[i])
	}
	return residentRow{
		ID:                 u.ID,
		FullName:           u.FullName(),
		Email:              u.Email,
		Mobile:             u.Mobile,
		ApprovalStatus:     u.ApprovalStatus,
		RegistrationStatus: u.RegistrationStatus,
		IsDeleted:          u.IsDeleted,
		NeedsMigration:     u.NeedsMigration(),
		Memberships:        ms,
		CreatedAt:          u.CreatedAt,
	}
}

type listResponse struct {
	Items      []residentRow `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Capped     bool          `json:"capped"`
}
