package bulkaction

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/compoundhub/internal/app/system/notify"
	"github.com/dalemusser/compoundhub/internal/app/system/occupancy"
	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"github.com/dalemusser/compoundhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the per-occupant operations in flight.
const DefaultConcurrency = 8

// Directory loads up to limit users with a membership in a project.
type Directory interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID, limit int) ([]models.User, error)
}

// Suspender merges suspension fields into the memberships of one user that
// belong to projectID and whose unit is in units. Other memberships are left
// untouched.
type Suspender interface {
	SuspendMemberships(ctx context.Context, userID, projectID primitive.ObjectID, units []string, s models.Suspension) error
}

// Executor runs bulk actions.
type Executor struct {
	users       Directory
	suspender   Suspender
	notifier    notify.Dispatcher
	logger      *zap.Logger
	concurrency int
	limit       int
	now         func() time.Time
}

// Options tune an Executor.
type Options struct {
	Concurrency int
	// Limit bounds the users loaded to resolve a target; <= 0 leaves it to
	// the Directory.
	Limit int
	Now   func() time.Time // for tests
}

// NewExecutor wires an executor.
func NewExecutor(users Directory, suspender Suspender, notifier notify.Dispatcher, logger *zap.Logger, opts Options) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Executor{
		users:       users,
		suspender:   suspender,
		notifier:    notifier,
		logger:      logger,
		concurrency: opts.Concurrency,
		limit:       opts.Limit,
		now:         opts.Now,
	}
}

// Resolve returns the occupants req.Target selects in req.ProjectID.
func (e *Executor) Resolve(ctx context.Context, req Request) ([]occupancy.Occupant, error) {
	users, err := e.users.ListByProject(ctx, req.ProjectID, e.limit)
	if err != nil {
		return nil, fmt.Errorf("load occupants: %w", err)
	}
	return occupancy.Select(users, req.ProjectID, req.Target.Matcher()), nil
}

// Execute validates req, resolves the occupants and applies the action to
// each of them. A *ValidationError means nothing was attempted. Once the
// fan-out starts, Execute returns a nil error; per-occupant problems are in
// the Result. When ctx is cancelled, occupants not yet started are counted as
// failures with the context error.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	req, err := clean(req)
	if err != nil {
		return Result{}, err
	}

	res := Result{BatchID: uuid.NewString(), Action: req.Action}
	log := e.logger.With(
		zap.String("batch_id", res.BatchID),
		zap.String("action", req.Action),
		zap.String("project_id", req.ProjectID.Hex()),
		zap.String("kind", req.Target.Kind),
		zap.String("building", req.Target.BuildingNum),
		zap.String("unit", req.Target.UnitNum),
	)

	occupants, err := e.Resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if len(occupants) == 0 {
		res.NoOp = true
		log.Info("bulk action resolved no occupants")
		return res, nil
	}

	start := e.now()
	apply := e.applier(req, start)

	errs := make([]error, len(occupants))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, occ := range occupants {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = apply(ctx, occ)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; outcomes are in errs

	for i, err := range errs {
		if err == nil {
			res.SuccessCount++
			continue
		}
		res.FailureCount++
		res.Failures = append(res.Failures, Failure{UserID: occupants[i].User.ID, Error: err.Error()})
		log.Warn("bulk action failed for occupant",
			zap.String("user_id", occupants[i].User.ID.Hex()),
			zap.Error(err))
	}

	telemetry.ObserveBulk(req.Action, res.SuccessCount, res.FailureCount, e.now().Sub(start))
	log.Info("bulk action finished",
		zap.Int("occupants", len(occupants)),
		zap.Int("succeeded", res.SuccessCount),
		zap.Int("failed", res.FailureCount))
	return res, nil
}

type applyFunc func(ctx context.Context, occ occupancy.Occupant) error

func (e *Executor) applier(req Request, now time.Time) applyFunc {
	if req.Action == ActionSuspend {
		s := models.Suspension{
			Reason:      req.Payload.Reason,
			Type:        req.Payload.SuspensionType,
			SuspendedAt: now.UTC(),
			SuspendedBy: req.ActorID,
		}
		if s.Type == models.SuspensionTemporary {
			end := s.SuspendedAt.AddDate(0, 0, req.Payload.DurationDays)
			s.EndDate = &end
		}
		return func(ctx context.Context, occ occupancy.Occupant) error {
			return e.suspender.SuspendMemberships(ctx, occ.User.ID, req.ProjectID, occ.Units, s)
		}
	}
	return func(ctx context.Context, occ occupancy.Occupant) error {
		return e.notifier.Send(ctx, notify.Bulk(occ.User.ID, req.ProjectID, req.Payload.Title, req.Payload.Message))
	}
}
