package rate

import (
	"context"
	"fxcache/internal/domain"
	"time"
)

// DefaultFreshnessWindow is how long a cached rate set stays usable after
// its most recent update.
const DefaultFreshnessWindow = time.Hour

// fresh reports whether the newest row in the set is still inside the
// freshness window. An empty set is never fresh, and the window boundary
// itself counts as stale (strict less-than).
func fresh(rows []domain.ExchangeRate, now time.Time, window time.Duration) bool {
	var latest time.Time
	for _, row := range rows {
		if row.UpdatedAt.After(latest) {
			latest = row.UpdatedAt
		}
	}
	if latest.IsZero() {
		return false
	}
	return now.Sub(latest) < window
}

// IsFresh reports whether a usable cached rate set exists for the base
// currency. Unknown codes simply yield false.
func (s *Service) IsFresh(ctx context.Context, base string) (bool, error) {
	rows, err := s.repo.ListByBase(ctx, base)
	if err != nil {
		return false, err
	}
	return fresh(rows, s.now(), s.window), nil
}
