package unitrequeststore

import (
	"context"
	"time"

	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultListLimit bounds List.
const DefaultListLimit = 500

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("unit_requests")}
}

// Create inserts a pending request.
func (s *Store) Create(ctx context.Context, r models.UnitRequest) (models.UnitRequest, error) {
	r.ID = primitive.NewObjectID()
	r.Status = models.StatusPending
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.UnitRequest{}, err
	}
	return r, nil
}

// GetByID loads a request. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.UnitRequest, error) {
	var r models.UnitRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.UnitRequest{}, err
	}
	return r, nil
}

// List returns the project's requests, newest first. An empty status lists
// every status.
func (s *Store) List(ctx context.Context, projectID primitive.ObjectID, status string, limit int) ([]models.UnitRequest, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	filter := bson.M{"project_id": projectID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.UnitRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkApproved stamps approval on a pending request. It reports false when
// the request was not pending.
func (s *Store) MarkApproved(ctx context.Context, id, actor primitive.ObjectID, at time.Time) (bool, error) {
	return s.resolve(ctx, id, bson.M{
		"status":      models.StatusApproved,
		"approved_at": at,
		"approved_by": actor,
	})
}

// MarkRejected stamps rejection on a pending request. It reports false when
// the request was not pending.
func (s *Store) MarkRejected(ctx context.Context, id, actor primitive.ObjectID, at time.Time, reason string) (bool, error) {
	return s.resolve(ctx, id, bson.M{
		"status":           models.StatusRejected,
		"rejected_at":      at,
		"rejected_by":      actor,
		"rejection_reason": reason,
	})
}

func (s *Store) resolve(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
