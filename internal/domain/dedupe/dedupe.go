// Package dedupe coalesces recompute requests that are already pending.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/fairway/pkg/metrics"
)

// Tracker records recompute keys that are queued but not yet processed.
type Tracker interface {
	// MarkPending records key and reports whether it was already pending.
	// A true result means the caller can drop its request; the queued job
	// will observe the latest stored data when it runs.
	MarkPending(ctx context.Context, key string) bool

	// Done clears key once its job has started, so later changes enqueue
	// a fresh recompute.
	Done(ctx context.Context, key string)

	Size() int64
}

type pendingTracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
	maxSize int // 0 or negative is unbounded
	size    atomic.Int64
}

// NewTracker creates an in-memory pending tracker.
func NewTracker(opts ...Option) Tracker {
	t := &pendingTracker{maxSize: 50000}
	for _, opt := range opts {
		opt(t)
	}
	t.pending = make(map[string]struct{})
	return t
}

func (t *pendingTracker) MarkPending(ctx context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[key]; ok {
		return true
	}
	// Past capacity keys go untracked and every request is enqueued.
	if t.maxSize > 0 && len(t.pending) >= t.maxSize {
		return false
	}
	t.pending[key] = struct{}{}
	metrics.UpdatePendingRecomputes(int(t.size.Add(1)))
	return false
}

func (t *pendingTracker) Done(ctx context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[key]; !ok {
		return
	}
	delete(t.pending, key)
	metrics.UpdatePendingRecomputes(int(t.size.Add(-1)))
}

func (t *pendingTracker) Size() int64 {
	return t.size.Load()
}
