package listing

import (
	"strings"

	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Names of the user filters, in chain order.
const (
	FilterDeleted      = "deleted"
	FilterSearch       = "search"
	FilterApproval     = "approval"
	FilterRegistration = "registration"
	FilterMigration    = "migration"
	FilterRole         = "role"
	FilterBuilding     = "building"
)

// Values accepted by the deletion filter.
const (
	DeletedExclude = "active"
	DeletedOnly    = "deleted"
	DeletedAll     = "all"
)

// Values accepted by the migration filter.
const (
	MigrationNeeded = "needs_migration"
	MigrationDone   = "migrated"
)

// UserQuery is the set of user-list filters a staff screen can set. Empty
// fields are not applied.
type UserQuery struct {
	Deleted      string // active (default) | deleted | all
	Search       string
	Approval     string
	Registration string
	Migration    string
	Role         string
	Building     string
}

// UserFilters builds the ordered chain for q: deletion status, free-text
// search over name and email, status filters, then project-scoped filters.
func UserFilters(q UserQuery, projectID primitive.ObjectID) []Filter[models.User] {
	fs := []Filter[models.User]{{Name: FilterDeleted, Match: deletedMatch(q.Deleted)}}

	if s := text.Fold(strings.TrimSpace(q.Search)); s != "" {
		fs = append(fs, Filter[models.User]{Name: FilterSearch, Match: func(u models.User) bool {
			return strings.Contains(text.Fold(u.FullName()), s) ||
				strings.Contains(text.Fold(u.Email), s)
		}})
	}
	if q.Approval != "" {
		fs = append(fs, Filter[models.User]{Name: FilterApproval, Match: func(u models.User) bool {
			return u.ApprovalStatus == q.Approval
		}})
	}
	if q.Registration != "" {
		fs = append(fs, Filter[models.User]{Name: FilterRegistration, Match: func(u models.User) bool {
			return u.RegistrationStatus == q.Registration
		}})
	}
	switch q.Migration {
	case MigrationNeeded:
		fs = append(fs, Filter[models.User]{Name: FilterMigration, Match: models.User.NeedsMigration})
	case MigrationDone:
		fs = append(fs, Filter[models.User]{Name: FilterMigration, Match: func(u models.User) bool { return u.Migrated }})
	}
	if q.Role != "" {
		fs = append(fs, Filter[models.User]{Name: FilterRole, Match: func(u models.User) bool {
			for _, i := range u.MembershipsIn(projectID) {
				if u.Memberships[i].Role == q.Role {
					return true
				}
			}
			return false
		}})
	}
	if b := strings.TrimSpace(q.Building); b != "" {
		fs = append(fs, Filter[models.User]{Name: FilterBuilding, Match: func(u models.User) bool {
			for _, i := range u.MembershipsIn(projectID) {
				if got, ok := models.BuildingOf(u.Memberships[i].Unit); ok && got == b {
					return true
				}
			}
			return false
		}})
	}
	return fs
}

func deletedMatch(mode string) func(models.User) bool {
	switch mode {
	case DeletedAll:
		return nil
	case DeletedOnly:
		return func(u models.User) bool { return u.IsDeleted }
	default:
		return func(u models.User) bool { return !u.IsDeleted }
	}
}
