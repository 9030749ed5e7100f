package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"cwa-dashboard/internal/services/forecast"
	"cwa-dashboard/pkg/logger"
)

// Reloader refetches the forecast regardless of cache age.
type Reloader interface {
	Reload(ctx context.Context) (*forecast.Snapshot, error)
}

// Scheduler keeps the forecast cache warm by reloading it periodically.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Reloader
	interval  time.Duration
	timeout   time.Duration
	l         *logger.Logger
}

// New creates a Scheduler. timeout bounds each reload.
func New(service Reloader, interval, timeout time.Duration, l *logger.Logger) *Scheduler {
	if l == nil {
		l = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   timeout,
		l:         l,
	}
}

// Start schedules the reload job and starts the underlying scheduler. The first
// run happens right away. A non-positive interval disables the job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.l.Info("scheduler: prefetch disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.l.Info("scheduler: prefetch started", map[string]any{
		"interval": s.interval.String(),
	})
	return nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snap, err := s.service.Reload(ctx)
	if err != nil {
		s.l.Warning("scheduler: prefetch failed", map[string]any{"err": err.Error()})
		return
	}
	s.l.Debug("scheduler: prefetch completed", map[string]any{"snapshot": snap.ID})
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
