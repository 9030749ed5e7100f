package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwa-dashboard/internal/services/forecast"
	"cwa-dashboard/pkg/logger"
)

type fakeReloader struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeReloader) Reload(ctx context.Context) (*forecast.Snapshot, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return &forecast.Snapshot{ID: "snap"}, nil
}

func TestScheduler_RunsImmediately(t *testing.T) {
	r := &fakeReloader{}
	s := New(r, time.Hour, time.Second, logger.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_FailuresAreNotFatal(t *testing.T) {
	r := &fakeReloader{fail: true}
	s := New(r, time.Hour, time.Second, logger.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_DisabledInterval(t *testing.T) {
	r := &fakeReloader{}
	s := New(r, 0, time.Second, logger.Nop())

	require.NoError(t, s.Start())
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), r.calls.Load())
}
