package worker_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockProcessor struct {
	mu    sync.Mutex
	calls []uuid.UUID
	fail  map[uuid.UUID]error
}

func (m *mockProcessor) RecomputePlayer(ctx context.Context, seasonID, playerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, playerID)
	return m.fail[playerID]
}

func (m *mockProcessor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(io.Discard))
	m.Run()
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		proc := &mockProcessor{fail: map[uuid.UUID]error{}}
		tracker := dedupe.NewTracker()
		pool := worker.NewPool(3, q, proc, worker.WithTracker(tracker))
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		convey.Convey("When jobs are enqueued", func() {
			season := uuid.New()
			bad := uuid.New()
			proc.fail[bad] = errors.New("boom")
			for i := 0; i < 5; i++ {
				j := model.RecomputeJob{SeasonID: season, PlayerID: uuid.New()}
				tracker.MarkPending(ctx, j.Key())
				convey.So(q.Enqueue(ctx, j), convey.ShouldBeTrue)
			}
			convey.So(q.Enqueue(ctx, model.RecomputeJob{SeasonID: season, PlayerID: bad}), convey.ShouldBeTrue)

			convey.Convey("Then every job reaches the processor and pending keys clear", func() {
				convey.So(waitFor(func() bool { return proc.count() == 6 }), convey.ShouldBeTrue)
				convey.So(waitFor(func() bool { return pool.Processed() == 5 }), convey.ShouldBeTrue)
				convey.So(tracker.Size(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed and workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
