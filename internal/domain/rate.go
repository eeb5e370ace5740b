package domain

import (
	"time"
)

// ExchangeRate says "1 unit of Base = Value units of Target, as of UpdatedAt".
// At most one row exists per (Base, Target) pair.
type ExchangeRate struct {
	Base      string
	Target    string
	Value     float64
	UpdatedAt time.Time
}

// Snapshot is a raw rate set fetched from the external API. It is transient:
// consumed once by the reconciler, never persisted.
type Snapshot struct {
	Base      string
	Rates     map[string]float64
	FetchedAt time.Time
}

// RateDiff is the staged outcome of reconciling a Snapshot against stored
// rows. Currencies must be applied before Inserts so foreign keys resolve.
type RateDiff struct {
	Currencies []Currency
	Inserts    []ExchangeRate
	Updates    []ExchangeRate
}

func (d RateDiff) Empty() bool {
	return len(d.Currencies) == 0 && len(d.Inserts) == 0 && len(d.Updates) == 0
}

// ReconcileResult counts the rows actually written; no-ops are excluded.
type ReconcileResult struct {
	Inserted int
	Updated  int
}
