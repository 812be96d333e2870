// Package workqueuestore reads the status-bearing collections behind the
// console's badge counters.
package workqueuestore

import (
	"context"
	"sync"

	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds the documents read per collection.
const DefaultLimit = 2000

const usersCollection = "users"

// GlobalSources are collections that are not scoped to a project.
var GlobalSources = []string{"admin_requests"}

// Store reads work items from any collection of db.
type Store struct {
	db      *mongo.Database
	limit   int64
	globals map[string]bool
}

func New(db *mongo.Database, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	g := make(map[string]bool, len(GlobalSources))
	for _, s := range GlobalSources {
		g[s] = true
	}
	return &Store{db: db, limit: int64(limit), globals: g}
}

// Fetch returns the work items of one source for projectID. The users source
// projects approval_status onto Status.
func (s *Store) Fetch(ctx context.Context, source string, projectID primitive.ObjectID) ([]models.WorkItem, error) {
	filter := bson.M{}
	proj := bson.M{"_id": 1, "project_id": 1, "status": 1, "is_deleted": 1}

	switch {
	case source == usersCollection:
		filter["memberships.project_id"] = projectID
		proj = bson.M{"_id": 1, "status": "$approval_status", "is_deleted": 1}
	case !s.globals[source]:
		filter["project_id"] = projectID
	}

	cur, err := s.db.Collection(source).Find(ctx, filter,
		options.Find().SetProjection(proj).SetLimit(s.limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.WorkItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAll loads every source concurrently.
// Intentionally tolerant: a source that fails is logged and left empty so the
// remaining counters still render.
func (s *Store) FetchAll(ctx context.Context, projectID primitive.ObjectID, sources []string, logger *zap.Logger) map[string][]models.WorkItem {
	out := make(map[string][]models.WorkItem, len(sources))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(4)
	for _, src := range sources {
		g.Go(func() error {
			items, err := s.Fetch(ctx, src, projectID)
			if err != nil {
				logger.Warn("work queue fetch failed",
					zap.String("collection", src),
					zap.String("project_id", projectID.Hex()),
					zap.Error(err))
				telemetry.ObserveFetchFailure(src)
				items = nil
			}
			mu.Lock()
			out[src] = items
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// CountPendingByProject counts pending documents of source per project.
// Projects with nothing pending are absent from the result.
func (s *Store) CountPendingByProject(ctx context.Context, source string) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusPending}}},
		{{Key: "$group", Value: bson.M{"_id": "$project_id", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := s.db.Collection(source).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ProjectID primitive.ObjectID `bson:"_id"`
		N         int64              `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		out[row.ProjectID] = row.N
	}
	return out, nil
}
