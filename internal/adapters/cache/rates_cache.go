package cache

import (
	"fmt"
	"fxcache/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoRatesCache keeps the last known rate set per base currency in
// front of the store read path. Entries are invalidated after every
// successful reconcile, so freshness is always judged on current rows.
type RistrettoRatesCache struct {
	cache *ristretto.Cache
}

func NewRatesCache(maxItems int64) (*RistrettoRatesCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rates cache failed: %w", err)
	}
	return &RistrettoRatesCache{cache: c}, nil
}

func (c *RistrettoRatesCache) Get(base string) ([]domain.ExchangeRate, bool) {
	if v, ok := c.cache.Get(base); ok {
		rates, ok := v.([]domain.ExchangeRate)
		return rates, ok
	}
	return nil, false
}

func (c *RistrettoRatesCache) Set(base string, rates []domain.ExchangeRate) {
	c.cache.Set(base, rates, 1)
}

func (c *RistrettoRatesCache) Invalidate(base string) {
	c.cache.Del(base)
}

func (c *RistrettoRatesCache) Close() { c.cache.Close() }
