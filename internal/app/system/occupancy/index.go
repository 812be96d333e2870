// Package occupancy derives unit occupancy from the user directory.
//
// The Index maps a unit identifier ("{building}-{unit}") to the users who
// hold a membership on that unit in one project, split by role. It is a pure
// view of the user list it was built from: Build is the fold of Add over the
// users, so rebuilding from scratch and applying Add/Remove incrementally
// produce the same buckets.
package occupancy

import (
	"sort"

	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Buckets holds the occupants of one unit.
//
// Tenants are kept apart and do not count towards Owners or Family.
type Buckets struct {
	Owners  []models.User
	Family  []models.User
	Tenants []models.User
}

// Index is the unit -> occupants map for a single project.
// The zero value is not usable; call NewIndex or Build.
type Index struct {
	projectID primitive.ObjectID
	units     map[string]*Buckets
	byUser    map[primitive.ObjectID][]string // units each user was added to
}

// NewIndex returns an empty index for projectID.
func NewIndex(projectID primitive.ObjectID) *Index {
	return &Index{
		projectID: projectID,
		units:     make(map[string]*Buckets),
		byUser:    make(map[primitive.ObjectID][]string),
	}
}

// Build indexes every user's memberships in projectID.
func Build(users []models.User, projectID primitive.ObjectID) *Index {
	idx := NewIndex(projectID)
	for _, u := range users {
		idx.Add(u)
	}
	return idx
}

// ProjectID returns the project the index was built for.
func (x *Index) ProjectID() primitive.ObjectID { return x.projectID }

// Add places u into the bucket of every unit it belongs to in the index's
// project. Memberships in other projects, or with an empty unit, are skipped.
// Adding a user that is already present replaces its previous placement.
func (x *Index) Add(u models.User) {
	if _, ok := x.byUser[u.ID]; ok {
		x.Remove(u.ID)
	}
	var placed []string
	for _, m := range u.Memberships {
		if m.ProjectID != x.projectID || m.Unit == "" {
			continue
		}
		b := x.units[m.Unit]
		if b == nil {
			b = &Buckets{}
			x.units[m.Unit] = b
		}
		switch m.Role {
		case models.RoleOwner:
			b.Owners = append(b.Owners, u)
		case models.RoleFamily:
			b.Family = append(b.Family, u)
		case models.RoleTenant:
			b.Tenants = append(b.Tenants, u)
		default:
			continue
		}
		placed = append(placed, m.Unit)
	}
	x.byUser[u.ID] = placed
}

// Remove drops userID from every bucket it was placed in.
func (x *Index) Remove(userID primitive.ObjectID) {
	units, ok := x.byUser[userID]
	if !ok {
		return
	}
	for _, unit := range units {
		b := x.units[unit]
		if b == nil {
			continue
		}
		b.Owners = without(b.Owners, userID)
		b.Family = without(b.Family, userID)
		b.Tenants = without(b.Tenants, userID)
		if len(b.Owners) == 0 && len(b.Family) == 0 && len(b.Tenants) == 0 {
			delete(x.units, unit)
		}
	}
	delete(x.byUser, userID)
}

// Lookup returns the buckets for a unit identifier. Missing units yield
// empty buckets.
func (x *Index) Lookup(unitID string) Buckets {
	if b := x.units[unitID]; b != nil {
		return *b
	}
	return Buckets{}
}

// Units returns the indexed unit identifiers in sorted order.
func (x *Index) Units() []string {
	out := make([]string, 0, len(x.units))
	for k := range x.units {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len is the number of units with at least one occupant.
func (x *Index) Len() int { return len(x.units) }

func without(users []models.User, id primitive.ObjectID) []models.User {
	out := users[:0:0]
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
