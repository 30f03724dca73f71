package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
}

func (c *countingRefresher) Refresh(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls == 2 {
		close(c.done)
	}
	return 7, c.err
}

type recorder struct {
	mu     sync.Mutex
	errors []error
}

func (r *recorder) LeaderboardRefreshed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	ref := &countingRefresher{done: make(chan struct{}), err: errors.New("db down")}
	rec := &recorder{}
	s := New(ref, Config{Interval: 10 * time.Millisecond, InitialDelay: time.Millisecond}, discardLogger()).
		WithRecorder(rec)

	s.Start(context.Background())
	s.Start(context.Background()) // second start is a no-op

	select {
	case <-ref.done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not refresh twice")
	}
	s.Stop()
	s.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.errors), 2)
	assert.EqualError(t, rec.errors[0], "db down")
}

func TestSchedulerStopsBeforeFirstRun(t *testing.T) {
	ref := &countingRefresher{done: make(chan struct{})}
	s := New(ref, Config{InitialDelay: time.Hour}, discardLogger())

	s.Start(context.Background())
	s.Stop()

	ref.mu.Lock()
	defer ref.mu.Unlock()
	assert.Zero(t, ref.calls)
}
