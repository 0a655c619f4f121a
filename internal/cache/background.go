package cache

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/zerozero-0-0/portfolio/internal/debuglog"
)

// Scheduler runs work after the response has been written, like an edge
// runtime's waitUntil.
type Scheduler interface {
	Go(task func(ctx context.Context))
}

// Background runs tasks on their own goroutines with a detached context
// bounded by timeout. Wait blocks until every task has finished.
type Background struct {
	wg      conc.WaitGroup
	timeout time.Duration
}

func NewBackground(timeout time.Duration) *Background {
	return &Background{timeout: timeout}
}

func (b *Background) Go(task func(ctx context.Context)) {
	b.wg.Go(func() {
		ctx := context.Background()
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		task(ctx)
	})
}

// Wait blocks until all scheduled tasks are done. A panicking task is
// logged, not re-raised, so shutdown always completes.
func (b *Background) Wait() {
	if r := b.wg.WaitAndRecover(); r != nil {
		debuglog.Errorf("background task panicked: %v", r.Value)
	}
}

// Inline runs tasks synchronously; the CLI uses it so writes land before
// the process exits.
type Inline struct{}

func (Inline) Go(task func(ctx context.Context)) { task(context.Background()) }
