// internal/domain/models/unit.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnitSeparator joins building and unit numbers in a unit identifier.
const UnitSeparator = "-"

// Unit is a residential unit inside a project. Occupancy is never stored on
// the document; see occupancy.Enrich for the derived view.
type Unit struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	BuildingNum string             `bson:"building_num" json:"building_num"`
	UnitNum     string             `bson:"unit_num" json:"unit_num"`
	UnitKey     string             `bson:"unit_key" json:"unit_key"` // stable sort key, equals Identifier()
	Floor       string             `bson:"floor,omitempty" json:"floor,omitempty"`
	Developer   string             `bson:"developer,omitempty" json:"developer,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Identifier returns the composite unit identifier used by memberships.
func (u Unit) Identifier() string {
	return UnitIdentifier(u.BuildingNum, u.UnitNum)
}

// UnitIdentifier builds "{buildingNum}-{unitNum}".
func UnitIdentifier(buildingNum, unitNum string) string {
	return strings.TrimSpace(buildingNum) + UnitSeparator + strings.TrimSpace(unitNum)
}

// BuildingOf returns the building token of a unit identifier, i.e. the text
// before the first separator. ok is false when the identifier has no separator.
func BuildingOf(unitID string) (building string, ok bool) {
	building, _, ok = strings.Cut(unitID, UnitSeparator)
	return building, ok
}
