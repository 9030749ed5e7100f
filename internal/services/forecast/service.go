// Package forecast runs the refresh cycle: one fetch, one normalization, and a
// time-boxed in-memory cache of the result.
package forecast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"cwa-dashboard/internal/models"
	"cwa-dashboard/internal/normalizer"
	"cwa-dashboard/internal/repositories"
	"cwa-dashboard/pkg/logger"
)

const (
	DefaultTTL             = 10 * time.Minute
	DefaultRefreshCooldown = 10 * time.Second
)

var (
	ErrRefreshThrottled = errors.New("forced refresh throttled")
	ErrNoSnapshot       = errors.New("no forecast snapshot cached")
)

// Snapshot is one successful refresh. It is never modified after creation.
type Snapshot struct {
	ID        string        `json:"id"`
	FetchedAt time.Time     `json:"fetched_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Tables    models.Tables `json:"-"`
}

type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Failures  int `json:"failures"`
	Throttled int `json:"throttled"`
}

type Options struct {
	TTL time.Duration
	// RefreshCooldown is the minimum spacing of forced refreshes.
	RefreshCooldown time.Duration
	Normalize       normalizer.Options
}

type Service struct {
	repo    repositories.ForecastRepository
	opts    normalizer.Options
	ttl     time.Duration
	limiter *rate.Limiter
	l       *logger.Logger
	now     func() time.Time

	// fetchMu serializes upstream fetches so concurrent misses share one call.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	current *Snapshot
	stats   Stats
}

func NewService(repo repositories.ForecastRepository, opts Options, l *logger.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RefreshCooldown <= 0 {
		opts.RefreshCooldown = DefaultRefreshCooldown
	}
	if l == nil {
		l = logger.Nop()
	}
	return &Service{
		repo:    repo,
		opts:    opts.Normalize,
		ttl:     opts.TTL,
		limiter: rate.NewLimiter(rate.Every(opts.RefreshCooldown), 1),
		l:       l,
		now:     time.Now,
	}
}

// Snapshot returns the cached tables while they are fresh and refetches
// otherwise. A failed fetch is returned as is and never cached.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.fresh(); snap != nil {
		s.count(func(st *Stats) { st.Hits++ })
		return snap, nil
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	// another caller may have refreshed while we waited
	if snap := s.fresh(); snap != nil {
		s.count(func(st *Stats) { st.Hits++ })
		return snap, nil
	}

	s.count(func(st *Stats) { st.Misses++ })
	return s.fetch(ctx)
}

// Refresh drops the cache and fetches again on user request. Calls closer
// together than the refresh cooldown get ErrRefreshThrottled and change nothing.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if !s.limiter.AllowN(s.now(), 1) {
		s.count(func(st *Stats) { st.Throttled++ })
		return nil, ErrRefreshThrottled
	}
	return s.Reload(ctx)
}

// Reload fetches unconditionally. The previous snapshot stays cached if the
// fetch fails.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	return s.fetch(ctx)
}

// Current returns the cached snapshot even when it has expired.
func (s *Service) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Service) fresh() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && s.now().Before(s.current.ExpiresAt) {
		return s.current
	}
	return nil
}

func (s *Service) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// fetch must be called with fetchMu held.
func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	started := s.now()

	payload, err := s.repo.FetchForecast(ctx)
	if err != nil {
		s.count(func(st *Stats) { st.Failures++ })
		s.l.Error(err, map[string]any{
			"repo": s.repo.Name(),
		})
		return nil, err
	}

	tables := normalizer.Normalize(payload, s.opts)
	fetchedAt := s.now()
	snap := &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(s.ttl),
		Tables:    tables,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.l.Info("forecast snapshot refreshed", map[string]any{
		"snapshot":   snap.ID,
		"repo":       s.repo.Name(),
		"conditions": len(tables.Conditions),
		"temps":      len(tables.Temperatures),
		"stats":      tables.Stats,
		"took":       fetchedAt.Sub(started).String(),
	})
	return snap, nil
}
