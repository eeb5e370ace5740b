package rate

import (
	"context"
	"errors"
	"fmt"
	"fxcache/internal/adapters"
	"fxcache/internal/domain"
	"time"

	"github.com/sirupsen/logrus"
)

// Service is the read facade over cached rates: freshness-gated
// fetch-or-cache, pair comparison and threshold filtering.
type Service struct {
	repo   adapters.RateRepository
	client adapters.RateClient
	cache  adapters.RatesCache
	window time.Duration
	now    func() time.Time
}

// Comparison is the per-target outcome of Compare. A target with no stored
// rate is reported as not found instead of aborting the whole call.
type Comparison struct {
	Target string
	Value  float64
	Found  bool
}

// GetRates returns the rate set for the base currency, refreshing it from
// the external API when the cached set is stale or absent.
//
// Failure policy: when the refresh cannot complete (fetch or apply error),
// stale-but-present rows are returned as-is; only an empty store yields
// ErrNoRatesAvailable.
func (s *Service) GetRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	if cached, ok := s.cache.Get(base); ok && fresh(cached, s.now(), s.window) {
		return cached, nil
	}

	stored, err := s.repo.ListByBase(ctx, base)
	if err != nil {
		return nil, err
	}
	if fresh(stored, s.now(), s.window) {
		s.cache.Set(base, stored)
		return stored, nil
	}

	snapshot, err := s.client.FetchLatest(ctx, base)
	if err != nil {
		logrus.WithError(err).WithField("base", base).Warn("rates fetch failed")
		return s.fallback(base, stored, err)
	}

	result, err := Reconcile(ctx, s.repo, snapshot)
	if err != nil {
		logrus.WithError(err).WithField("base", base).Error("reconcile failed")
		return s.fallback(base, stored, err)
	}
	logrus.WithFields(logrus.Fields{
		"base":     base,
		"inserted": result.Inserted,
		"updated":  result.Updated,
	}).Info("rates refreshed")

	refreshed, err := s.repo.ListByBase(ctx, base)
	if err != nil {
		return s.fallback(base, stored, err)
	}
	s.cache.Invalidate(base)
	s.cache.Set(base, refreshed)
	return refreshed, nil
}

// fallback prefers stale data over no data; an empty store reports
// ErrNoRatesAvailable wrapping the cause.
func (s *Service) fallback(base string, stored []domain.ExchangeRate, cause error) ([]domain.ExchangeRate, error) {
	if len(stored) > 0 {
		return stored, nil
	}
	return nil, fmt.Errorf("%w for %q: %v", domain.ErrNoRatesAvailable, base, cause)
}

// Compare prices the named targets against the base using stored rows only.
func (s *Service) Compare(ctx context.Context, base string, targets []string) ([]Comparison, error) {
	comparisons := make([]Comparison, 0, len(targets))
	for _, target := range targets {
		stored, err := s.repo.GetRate(ctx, base, target)
		if err != nil {
			if errors.Is(err, domain.ErrRateNotFound) {
				comparisons = append(comparisons, Comparison{Target: target})
				continue
			}
			return nil, err
		}
		comparisons = append(comparisons, Comparison{Target: target, Value: stored.Value, Found: true})
	}
	return comparisons, nil
}

// ListAbove returns stored targets whose rate exceeds the threshold,
// descending by rate.
func (s *Service) ListAbove(ctx context.Context, base string, threshold float64) ([]domain.ExchangeRate, error) {
	return s.repo.ListAbove(ctx, base, threshold)
}

// Currencies lists all registered currency codes.
func (s *Service) Currencies(ctx context.Context) ([]string, error) {
	return s.repo.ListCurrencyCodes(ctx)
}

func NewService(repo adapters.RateRepository, client adapters.RateClient, cache adapters.RatesCache, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Service{
		repo:   repo,
		client: client,
		cache:  cache,
		window: window,
		now:    time.Now,
	}
}
