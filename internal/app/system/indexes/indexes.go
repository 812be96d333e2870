// Package indexes reconciles the collection indexes the console relies on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Every set is attempted; failures are
// joined so startup can fail with the full picture.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"projects", ensureProjects},
		{"units", ensureUnits},
		{"unit_requests", ensureUnitRequests},
		{"notifications", ensureNotifications},
		{"work queues", ensureWorkQueues},
	}
	for _, set := range sets {
		if err := set.ensure(ctx, db); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// listBySig maps key signature to the index currently holding it.
func listBySig(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// createErr describes a failed CreateOne. A unique index blocked by existing
// duplicates gets a finder query for single-field keys.
func createErr(coll, name, sig string, unique bool, err error) error {
	if !unique || !wafflemongo.IsDup(err) {
		return fmt.Errorf("%s(%s): %w", coll, name, err)
	}
	if strings.Contains(sig, ", ") {
		return fmt.Errorf("%s(%s): cannot create unique index (duplicates present on %s)", coll, name, sig)
	}
	field, _, _ := strings.Cut(sig, ":")
	return fmt.Errorf("%s(%s): cannot create unique index (duplicates present). Example finder: "+
		`db.%s.aggregate([{ $group: { _id: "$%s", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
		coll, name, coll, field)
}

// ensureIndexSet makes coll carry every model. An index with the same keys is
// reused when its uniqueness matches and its name matches (or no name is
// wanted); otherwise it is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listBySig(ctx, coll)
	if err != nil {
		// A missing collection has no indexes yet.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique != nil && *m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if ex.Unique == unique && (name == "" || ex.Name == name) {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop %s failed: %v", coll.Name(), name, ex.Name, err))
				continue
			}
			log.Info("dropped index for recreate", zap.String("existing", ex.Name))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, createErr(coll.Name(), name, sig, unique, err).Error())
			continue
		}
		log.Info("index ensured",
			zap.String("created_name", created),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Occupant lookups for bulk actions and approvals.
		{
			Keys: bson.D{
				{Key: "memberships.project_id", Value: 1},
				{Key: "memberships.unit", Value: 1},
			},
			Options: options.Index().SetName("idx_users_project_unit"),
		},
		// Project directory, sorted by name.
		{
			Keys: bson.D{
				{Key: "memberships.project_id", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_project_fullnameci_id"),
		},
		// Soft-deleted residents still listed under their former projects.
		{
			Keys:    bson.D{{Key: "deleted_from", Value: 1}},
			Options: options.Index().SetName("idx_users_deleted_from").SetSparse(true),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("projects")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_projects_nameci"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_projects_status_nameci_id"),
		},
	})
}

func ensureUnits(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("units")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Keyset browse; also enforces one unit per identifier per project.
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "unit_key", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_units_project_unitkey_id"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "unit_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_units_project_unitkey"),
		},
		// Prefix search paths.
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "unit_num", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_units_project_unitnum_id"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "building_num", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_units_project_buildingnum_id"),
		},
	})
}

func ensureUnitRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("unit_requests")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "requested_at", Value: -1},
			},
			Options: options.Index().SetName("idx_unitrequests_project_status_requestedat"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("notifications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_createdat"),
		},
	})
}

// ensureWorkQueues indexes every badge source except users, which has its
// own set above.
func ensureWorkQueues(ctx context.Context, db *mongo.Database) error {
	var errs []string
	for _, src := range badges.Default().Sources() {
		if src == badges.SourceUsers {
			continue
		}
		err := ensureIndexSet(ctx, db.Collection(src), []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("idx_" + src + "_project_status"),
			},
		})
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
