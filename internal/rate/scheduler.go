package rate

import (
	"context"
	"fxcache/internal/domain"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ratesProvider interface {
	GetRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

// RefreshScheduler periodically pushes the configured base currencies through
// the freshness-gated read path, so their cached sets never go stale between
// requests. Bases are walked sequentially; a fresh base is a no-op.
type RefreshScheduler struct {
	provider ratesProvider
	bases    []string
	interval time.Duration
	// -----
	sched gocron.Scheduler
}

func (s *RefreshScheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = scheduler

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		for _, base := range s.bases {
			if _, refreshErr := s.provider.GetRates(jobCtx, base); refreshErr != nil {
				logrus.Errorf("Refresh job %s failed for base %s: %v", execID, base, refreshErr)
			}
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)

	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *RefreshScheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func NewRefreshScheduler(provider ratesProvider, bases []string, interval time.Duration) *RefreshScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshScheduler{provider: provider, bases: bases, interval: interval}
}
