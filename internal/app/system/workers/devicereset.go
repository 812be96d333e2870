// internal/app/system/workers/devicereset.go
package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	workqueuestore "github.com/dalemusser/compoundhub/internal/app/store/workqueues"
	"github.com/dalemusser/compoundhub/internal/app/system/badges"
	"github.com/dalemusser/compoundhub/internal/app/system/telemetry"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultDeviceResetPoll is the fallback interval when change streams are
// unavailable (standalone servers).
const DefaultDeviceResetPoll = 30 * time.Second

// DeviceResetWatcher keeps the pending device-reset counts current, per
// project. It subscribes to the device_reset_requests collection and
// recounts once per pushed batch; without change stream support it polls
// instead. The dashboard reads PendingFor instead of re-querying.
type DeviceResetWatcher struct {
	coll   *mongo.Collection
	queues *workqueuestore.Store
	log    *zap.Logger
	poll   time.Duration

	byProject atomic.Pointer[map[primitive.ObjectID]int64]
	pending   atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeviceResetWatcher creates a watcher over db. poll <= 0 uses
// DefaultDeviceResetPoll.
func NewDeviceResetWatcher(db *mongo.Database, queues *workqueuestore.Store, logger *zap.Logger, poll time.Duration) *DeviceResetWatcher {
	if poll <= 0 {
		poll = DefaultDeviceResetPoll
	}
	return &DeviceResetWatcher{
		coll:   db.Collection(badges.SourceDeviceResets),
		queues: queues,
		log:    logger,
		poll:   poll,
	}
}

// Start begins watching in the background.
func (w *DeviceResetWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("device reset watcher started", zap.Duration("poll", w.poll))
}

// Stop signals the watcher to stop and waits for it to finish.
func (w *DeviceResetWatcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("device reset watcher stopped")
}

// Pending returns the last observed number of pending device-reset requests
// across all projects.
func (w *DeviceResetWatcher) Pending() int64 {
	return w.pending.Load()
}

// PendingFor returns the last observed pending count for projectID. ok is
// false until the first count has completed, or on a nil watcher.
func (w *DeviceResetWatcher) PendingFor(projectID primitive.ObjectID) (n int, ok bool) {
	if w == nil {
		return 0, false
	}
	m := w.byProject.Load()
	if m == nil {
		return 0, false
	}
	return int((*m)[projectID]), true
}

func (w *DeviceResetWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	// Open the stream before the first count so no change falls in between.
	cs, err := w.coll.Watch(ctx, mongo.Pipeline{}, options.ChangeStream().SetMaxAwaitTime(w.poll))
	w.recount(ctx)
	if err != nil {
		w.log.Info("change stream unavailable, polling device resets", zap.Error(err))
		w.pollLoop(ctx)
		return
	}
	if err := w.consume(ctx, cs); err != nil && ctx.Err() == nil {
		w.log.Warn("device reset change stream failed, polling", zap.Error(err))
		w.pollLoop(ctx)
	}
}

// consume recounts once per pushed batch until ctx ends or the stream fails.
func (w *DeviceResetWatcher) consume(ctx context.Context, cs *mongo.ChangeStream) error {
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		if cs.RemainingBatchLength() > 0 {
			continue
		}
		w.recount(ctx)
	}
	return cs.Err()
}

func (w *DeviceResetWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.recount(ctx)
		}
	}
}

func (w *DeviceResetWatcher) recount(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	counts, err := w.queues.CountPendingByProject(ctx, badges.SourceDeviceResets)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn("count pending device resets failed", zap.Error(err))
		}
		return
	}
	var n int64
	for _, c := range counts {
		n += c
	}
	w.byProject.Store(&counts)
	if prev := w.pending.Swap(n); prev != n {
		w.log.Debug("pending device resets changed", zap.Int64("pending", n))
	}
	telemetry.ObserveDeviceResets(n)
}
