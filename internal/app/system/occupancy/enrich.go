package occupancy

import "github.com/dalemusser/compoundhub/internal/domain/models"

// UnitOccupancy is a unit annotated with its current occupants.
// It is recomputed from the unit and the index on every read and never stored.
type UnitOccupancy struct {
	models.Unit
	UnitID      string        `json:"unit_id"`
	OwnersCount int           `json:"owners_count"`
	FamilyCount int           `json:"family_count"`
	Owners      []models.User `json:"owners"`
	Family      []models.User `json:"family"`
	IsOccupied  bool          `json:"is_occupied"`
}

// EnrichOne annotates a single unit.
func EnrichOne(u models.Unit, idx *Index) UnitOccupancy {
	id := u.Identifier()
	var b Buckets
	if idx != nil {
		b = idx.Lookup(id)
	}
	owners := b.Owners
	if owners == nil {
		owners = []models.User{}
	}
	family := b.Family
	if family == nil {
		family = []models.User{}
	}
	return UnitOccupancy{
		Unit:        u,
		UnitID:      id,
		OwnersCount: len(owners),
		FamilyCount: len(family),
		Owners:      owners,
		Family:      family,
		IsOccupied:  len(owners) > 0,
	}
}

// Enrich annotates units in order.
func Enrich(units []models.Unit, idx *Index) []UnitOccupancy {
	out := make([]UnitOccupancy, 0, len(units))
	for _, u := range units {
		out = append(out, EnrichOne(u, idx))
	}
	return out
}

// Summary aggregates an enriched list.
type Summary struct {
	Units    int `json:"units"`
	Occupied int `json:"occupied"`
	Vacant   int `json:"vacant"`
	Owners   int `json:"owners"`
	Family   int `json:"family"`
}

// Summarize counts occupied and vacant units and their occupants.
func Summarize(units []UnitOccupancy) Summary {
	s := Summary{Units: len(units)}
	for _, u := range units {
		if u.IsOccupied {
			s.Occupied++
		} else {
			s.Vacant++
		}
		s.Owners += u.OwnersCount
		s.Family += u.FamilyCount
	}
	return s
}
