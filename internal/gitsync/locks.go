package gitsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gitsyncd/gitsyncd/internal/git"
	"golang.org/x/sync/semaphore"
)

// locks hands out one weighted semaphore per repository path. Writers take the
// whole weight, readers take one unit. Waiters are served in FIFO order, so a
// queued writer holds back later readers.
type locks struct {
	capacity int64
	timeout  time.Duration

	mu     sync.Mutex
	byPath map[string]*semaphore.Weighted
}

func newLocks(capacity int64, timeout time.Duration) *locks {
	return &locks{
		capacity: capacity,
		timeout:  timeout,

		byPath: make(map[string]*semaphore.Weighted),
	}
}

func (l *locks) get(path string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.byPath[path]
	if !ok {
		sem = semaphore.NewWeighted(l.capacity)
		l.byPath[path] = sem
	}

	return sem
}

// acquire blocks until the lock for path is held or the wait times out. The
// returned function releases it.
func (l *locks) acquire(ctx context.Context, path string, exclusive bool) (func(), error) {
	weight := int64(1)
	if exclusive {
		weight = l.capacity
	}

	sem := l.get(path)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := sem.Acquire(waitCtx, weight); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", git.ErrOperationCancelled, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
	}

	return func() { sem.Release(weight) }, nil
}
