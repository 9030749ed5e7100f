package forecast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwa-dashboard/internal/models"
	"cwa-dashboard/internal/normalizer"
	"cwa-dashboard/pkg/logger"
)

const document = `{"cwaopendata":{"resources":{"resource":{"data":{"agrWeatherForecasts":{"weatherForecasts":{"location":[
	{"locationName":"北部地區","weatherElements":{
		"Wx":{"daily":[{"dataDate":"2024-07-01","weather":"晴","weatherid":"1"},{"dataDate":"2024-07-02","weather":"雨","weatherid":"12"}]},
		"MaxT":{"daily":[{"dataDate":"2024-07-01","temperature":"33"}]},
		"MinT":{"daily":[{"dataDate":"2024-07-03","temperature":"24"}]}
	}}
]}}}}}}}`

// MockRepository implements ForecastRepository for testing
type MockRepository struct {
	calls atomic.Int32
	fail  atomic.Bool
	delay time.Duration
}

func (m *MockRepository) Name() string {
	return "mock"
}

func (m *MockRepository) FetchRaw(ctx context.Context) ([]byte, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.fail.Load() {
		return nil, errors.New("mock repository error")
	}
	return []byte(document), nil
}

func (m *MockRepository) FetchForecast(ctx context.Context) (*models.RawForecastPayload, error) {
	body, err := m.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	return models.ParsePayload(body)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService(repo *MockRepository, opts Options) (*Service, *clock) {
	c := &clock{t: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)}
	s := NewService(repo, opts, logger.Nop())
	s.now = c.now
	return s, c
}

func TestService_SnapshotCachesWithinTTL(t *testing.T) {
	repo := &MockRepository{}
	s, c := newTestService(repo, Options{})

	first, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Tables.Conditions, 2)
	assert.Len(t, first.Tables.Temperatures, 2)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.FetchedAt.Add(DefaultTTL), first.ExpiresAt)

	c.advance(DefaultTTL - time.Second)
	second, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), repo.calls.Load())

	c.advance(time.Second)
	third, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, int32(2), repo.calls.Load())

	stats := s.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
}

func TestService_FailureIsNotCached(t *testing.T) {
	repo := &MockRepository{}
	repo.fail.Store(true)
	s, _ := newTestService(repo, Options{})

	_, err := s.Snapshot(context.Background())
	require.Error(t, err)

	_, err = s.Current()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	repo.fail.Store(false)
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Equal(t, int32(2), repo.calls.Load())
	assert.Equal(t, 1, s.Stats().Failures)
}

func TestService_ExpiredFailureReturnsError(t *testing.T) {
	repo := &MockRepository{}
	s, c := newTestService(repo, Options{TTL: time.Minute})

	_, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	repo.fail.Store(true)
	c.advance(2 * time.Minute)

	_, err = s.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestService_RefreshIsThrottled(t *testing.T) {
	repo := &MockRepository{}
	s, c := newTestService(repo, Options{RefreshCooldown: 10 * time.Second})

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	_, err = s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshThrottled)
	assert.Equal(t, int32(1), repo.calls.Load())

	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)

	c.advance(11 * time.Second)
	second, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, s.Stats().Throttled)
}

func TestService_ReloadKeepsPreviousSnapshotOnFailure(t *testing.T) {
	repo := &MockRepository{}
	s, _ := newTestService(repo, Options{})

	first, err := s.Reload(context.Background())
	require.NoError(t, err)

	repo.fail.Store(true)
	_, err = s.Reload(context.Background())
	require.Error(t, err)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, snap)
}

func TestService_ConcurrentMissesShareOneFetch(t *testing.T) {
	repo := &MockRepository{delay: 50 * time.Millisecond}
	s, _ := newTestService(repo, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Snapshot(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestService_UsesJoinPolicy(t *testing.T) {
	repo := &MockRepository{}
	s, _ := newTestService(repo, Options{Normalize: normalizer.Options{Join: normalizer.JoinUnion}})

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Tables.Temperatures, 3)
}
