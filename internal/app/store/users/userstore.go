package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/normalize"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDirectoryCap bounds the resident user list of one project.
const DefaultDirectoryCap = 2000

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned by writes that matched no user.
	ErrNotFound = errors.New("user not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a user after normalizing name and email.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = text.Fold(u.FullName())
	u.Email = normalize.Email(u.Email)
	if u.ApprovalStatus == "" {
		u.ApprovalStatus = models.StatusPending
	}
	if u.Memberships == nil {
		u.Memberships = []models.Membership{}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListByProject returns up to limit users holding at least one membership
// in projectID, ordered by name. limit <= 0 uses DefaultDirectoryCap.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultDirectoryCap
	}
	return s.find(ctx, bson.M{"memberships.project_id": projectID}, int64(limit))
}

// Directory returns the bounded resident list of a project: current members
// plus users soft-deleted while they belonged to it. limit <= 0 uses
// DefaultDirectoryCap.
func (s *Store) Directory(ctx context.Context, projectID primitive.ObjectID, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultDirectoryCap
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"memberships.project_id": projectID},
		bson.M{"is_deleted": true, "deleted_from": projectID},
	}}
	return s.find(ctx, filter, int64(limit))
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SuspendMemberships merges s into every membership of userID that belongs
// to projectID and whose unit is in units. Memberships of other projects or
// units are untouched.
func (s *Store) SuspendMemberships(ctx context.Context, userID, projectID primitive.ObjectID, units []string, sus models.Suspension) error {
	set := bson.M{
		"memberships.$[m].is_suspended":        true,
		"memberships.$[m].suspension_reason":   sus.Reason,
		"memberships.$[m].suspension_type":     sus.Type,
		"memberships.$[m].suspended_at":        sus.SuspendedAt,
		"memberships.$[m].suspended_by":        sus.SuspendedBy,
		"memberships.$[m].suspension_end_date": sus.EndDate,
		"updated_at":                           time.Now().UTC(),
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"m.project_id": projectID, "m.unit": bson.M{"$in": units}}},
	})

	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id": userID,
		"memberships": bson.M{"$elemMatch": bson.M{
			"project_id": projectID,
			"unit":       bson.M{"$in": units},
		}},
	}, bson.M{"$set": set}, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApproveMembership sets approval_status=approved on the membership matching
// (projectID, unit) and reports whether one matched.
func (s *Store) ApproveMembership(ctx context.Context, userID, projectID primitive.ObjectID, unit string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":         userID,
			"memberships": bson.M{"$elemMatch": bson.M{"project_id": projectID, "unit": unit}},
		},
		bson.M{"$set": bson.M{
			"memberships.$.approval_status": models.StatusApproved,
			"updated_at":                    time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// AddMembership appends m to the user's memberships.
func (s *Store) AddMembership(ctx context.Context, userID primitive.ObjectID, m models.Membership) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"memberships": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMembership pulls the membership matching (projectID, unit) and
// reports whether one was removed.
func (s *Store) RemoveMembership(ctx context.Context, userID, projectID primitive.ObjectID, unit string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"memberships": bson.M{"project_id": projectID, "unit": unit}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

// RemoveFromProject pulls every membership of projectID and returns whether
// anything was removed.
func (s *Store) RemoveFromProject(ctx context.Context, userID, projectID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"memberships": bson.M{"project_id": projectID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

// SoftDelete marks the user deleted and clears all memberships, remembering
// which projects they belonged to. The record itself is kept.
func (s *Store) SoftDelete(ctx context.Context, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	// Fields in one $set stage read the pre-update document, so deleted_from
	// sees the memberships that are being cleared.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"deleted_from": "$memberships.project_id",
			"memberships":  bson.A{},
			"is_deleted":   true,
			"deleted_at":   now,
			"updated_at":   now,
		}}},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID, "is_deleted": bson.M{"$ne": true}}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
