package occupancy

import (
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Occupant is a user together with the units (in one project) that matched
// a selection. Every role counts here, tenants included.
type Occupant struct {
	User  models.User
	Units []string
}

// UnitMatcher selects unit identifiers.
type UnitMatcher func(unitID string) bool

// ExactUnit matches one unit identifier.
func ExactUnit(unitID string) UnitMatcher {
	return func(id string) bool { return id == unitID }
}

// InBuilding matches every unit whose building token equals building.
func InBuilding(building string) UnitMatcher {
	return func(id string) bool {
		b, ok := models.BuildingOf(id)
		return ok && b == building
	}
}

// Select returns, in user order, each user holding at least one membership in
// projectID whose unit matches. Users appear once even when several of their
// units match.
func Select(users []models.User, projectID primitive.ObjectID, match UnitMatcher) []Occupant {
	var out []Occupant
	for _, u := range users {
		var units []string
		for _, m := range u.Memberships {
			if m.ProjectID != projectID || m.Unit == "" {
				continue
			}
			if match(m.Unit) {
				units = append(units, m.Unit)
			}
		}
		if len(units) > 0 {
			out = append(out, Occupant{User: u, Units: units})
		}
	}
	return out
}
