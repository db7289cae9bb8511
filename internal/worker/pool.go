// Package worker runs independent sub-operations on a bounded goroutine pool.
package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// DefaultPoolSize bounds fan-out when no size is configured.
const DefaultPoolSize = 4

// Pool wraps ants.Pool with panic recovery and error-collecting groups.
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// NewPool creates a blocking pool with at most size concurrent workers.
func NewPool(size int, logger *zap.Logger) (*Pool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := ants.NewPool(size,
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("worker panic recovered", zap.Any("panic", v), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: p, logger: logger}, nil
}

// Release stops the pool, waiting up to timeout for running tasks.
func (p *Pool) Release(timeout time.Duration) {
	if p == nil || p.pool == nil {
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool release timeout", zap.Error(err))
	}
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Group starts a new task group on the pool.
func (p *Pool) Group() *Group {
	return &Group{pool: p}
}

// Group tracks a set of tasks. Wait returns only after every submitted task
// has finished and reports the combination of all task errors.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// Go submits task. It blocks while the pool is saturated.
func (g *Group) Go(task func() error) {
	g.wg.Add(1)
	err := g.pool.pool.Submit(func() {
		defer g.wg.Done()
		g.record(run(task))
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			err = ErrPoolClosed
		}
		g.record(err)
		g.wg.Done()
	}
}

// Wait blocks until all tasks settle.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return multierr.Combine(g.errs...)
}

func (g *Group) record(err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

func run(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task()
}
