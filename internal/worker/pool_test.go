package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	p, err := NewPool(size, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { p.Release(time.Second) })
	return p
}

func TestNewPool_DefaultSize(t *testing.T) {
	p := newTestPool(t, 0)
	assert.Equal(t, DefaultPoolSize, p.Cap())
}

func TestGroup_WaitsForAllTasks(t *testing.T) {
	p := newTestPool(t, 2)
	g := p.Group()

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int32(10), done.Load())
}

func TestGroup_CollectsEveryError(t *testing.T) {
	p := newTestPool(t, 3)
	g := p.Group()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var ok atomic.Bool

	g.Go(func() error { return errA })
	g.Go(func() error { ok.Store(true); return nil })
	g.Go(func() error { return errB })

	err := g.Wait()
	require.Error(t, err)
	assert.True(t, ok.Load(), "successful task must still run")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestGroup_BoundsConcurrency(t *testing.T) {
	p := newTestPool(t, 2)
	g := p.Group()

	var running, peak atomic.Int32
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGroup_PanicBecomesError(t *testing.T) {
	p := newTestPool(t, 1)
	g := p.Group()

	g.Go(func() error { panic("boom") })

	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestGroup_ClosedPool(t *testing.T) {
	p, err := NewPool(1, zap.NewNop())
	require.NoError(t, err)
	p.Release(time.Second)

	g := p.Group()
	g.Go(func() error { return nil })
	assert.ErrorIs(t, g.Wait(), ErrPoolClosed)
}
