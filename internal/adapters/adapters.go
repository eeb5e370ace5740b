package adapters

import (
	"context"
	"fxcache/internal/domain"
)

type RateClient interface {
	FetchLatest(ctx context.Context, base string) (domain.Snapshot, error)
}

type RateRepository interface {
	ListByBase(ctx context.Context, base string) ([]domain.ExchangeRate, error)
	GetRate(ctx context.Context, base string, target string) (domain.ExchangeRate, error)
	ListAbove(ctx context.Context, base string, threshold float64) ([]domain.ExchangeRate, error)
	ListCurrencyCodes(ctx context.Context) ([]string, error)
	ApplyDiff(ctx context.Context, diff domain.RateDiff) error
}

type RatesCache interface {
	Get(base string) ([]domain.ExchangeRate, bool)
	Set(base string, rates []domain.ExchangeRate)
	Invalidate(base string)
}
