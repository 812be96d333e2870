package unitstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/app/system/paging"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SortField is the stable browse key.
const SortField = "unit_key"

// Searchable fields for prefix search.
const (
	FieldUnitNum     = "unit_num"
	FieldBuildingNum = "building_num"
	FieldUnitKey     = "unit_key"
)

var (
	// ErrDuplicateUnit is returned when the unit already exists in the project.
	ErrDuplicateUnit = errors.New("unit already exists in this project")
	// ErrBadField is returned by Search for a field that is not searchable.
	ErrBadField = errors.New("field is not searchable")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("units")}
}

// Create inserts a unit; UnitKey is derived from the building and unit numbers.
func (s *Store) Create(ctx context.Context, u models.Unit) (models.Unit, error) {
	u.ID = primitive.NewObjectID()
	u.BuildingNum = normalize.UnitPart(u.BuildingNum)
	u.UnitNum = normalize.UnitPart(u.UnitNum)
	u.UnitKey = u.Identifier()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Unit{}, ErrDuplicateUnit
		}
		return models.Unit{}, err
	}
	return u, nil
}

// Page returns up to limit units of projectID ordered by (unit_key, _id),
// strictly after the cursor after ("" for the first page). next is the cursor
// of the last returned unit.
func (s *Store) Page(ctx context.Context, projectID primitive.ObjectID, after string, limit int) ([]models.Unit, string, error) {
	if limit <= 0 {
		limit = paging.PageSize
	}
	filter := bson.M{"project_id": projectID}
	paging.ApplyAfter(filter, after, SortField)

	units, err := s.find(ctx, filter, SortField, limit)
	if err != nil {
		return nil, "", err
	}
	next := paging.NextCursor(units,
		func(u models.Unit) string { return u.UnitKey },
		func(u models.Unit) primitive.ObjectID { return u.ID })
	return units, next, nil
}

// Search returns up to limit units of projectID whose field starts with term.
func (s *Store) Search(ctx context.Context, projectID primitive.ObjectID, field, term string, limit int) ([]models.Unit, error) {
	switch field {
	case FieldUnitNum, FieldBuildingNum, FieldUnitKey:
	default:
		return nil, ErrBadField
	}
	if limit <= 0 {
		limit = paging.PageSize
	}
	filter := bson.M{
		"project_id": projectID,
		field:        paging.PrefixRange(term),
	}
	return s.find(ctx, filter, field, limit)
}

// ListByProject returns up to limit units of projectID in browse order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int) ([]models.Unit, error) {
	return s.find(ctx, bson.M{"project_id": projectID}, SortField, limit)
}

func (s *Store) find(ctx context.Context, filter bson.M, sortField string, limit int) ([]models.Unit, error) {
	cur, err := s.c.Find(ctx, filter, paging.ForwardFind(sortField, limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Unit
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
