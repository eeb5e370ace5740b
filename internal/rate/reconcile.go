package rate

import (
	"context"
	"fmt"
	"fxcache/internal/adapters"
	"fxcache/internal/domain"
	"math"

	"github.com/sirupsen/logrus"
)

// rateTolerance is the largest stored-vs-fetched difference that still counts
// as "unchanged". Strictly greater differences trigger an update; anything
// within it is a no-op, avoiding timestamp churn on every fetch.
const rateTolerance = 1e-5

// Reconcile merges a fetched snapshot into the store: unknown target codes
// are registered as currencies, missing pairs are inserted, changed rates are
// updated, unchanged rates are left untouched. The staged diff is applied as
// a single transaction, so a persistence error leaves the store as it was.
//
// The result is independent of the snapshot map's iteration order, and
// reconciling the same snapshot twice yields {0, 0} the second time. Rates
// are stored as given: the upstream API is trusted, zero or negative values
// included.
func Reconcile(ctx context.Context, repo adapters.RateRepository, snapshot domain.Snapshot) (domain.ReconcileResult, error) {
	if snapshot.Base == "" {
		return domain.ReconcileResult{}, fmt.Errorf("snapshot base currency is empty")
	}
	if len(snapshot.Rates) == 0 {
		return domain.ReconcileResult{}, fmt.Errorf("snapshot for %q has no rates", snapshot.Base)
	}

	// STEP 1: current store state for this base
	existingRows, err := repo.ListByBase(ctx, snapshot.Base)
	if err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("failed to load existing rates for %q: %w", snapshot.Base, err)
	}
	knownCodes, err := repo.ListCurrencyCodes(ctx)
	if err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("failed to load currency codes: %w", err)
	}

	// STEP 2: stage the minimal diff
	diff := buildDiff(snapshot, existingRows, knownCodes)
	if diff.Empty() {
		return domain.ReconcileResult{}, nil
	}

	// STEP 3: apply everything in one transaction
	if err = repo.ApplyDiff(ctx, diff); err != nil {
		return domain.ReconcileResult{}, fmt.Errorf("failed to apply diff for %q: %w", snapshot.Base, err)
	}

	result := domain.ReconcileResult{Inserted: len(diff.Inserts), Updated: len(diff.Updates)}
	logrus.WithFields(logrus.Fields{
		"base":     snapshot.Base,
		"inserted": result.Inserted,
		"updated":  result.Updated,
	}).Debug("reconcile applied")
	return result, nil
}

// buildDiff computes the insert/update/no-op decision per snapshot entry.
// Pure function; iteration order of the rates map does not affect the
// resulting store state.
func buildDiff(snapshot domain.Snapshot, existingRows []domain.ExchangeRate, knownCodes []string) domain.RateDiff {
	existing := make(map[string]domain.ExchangeRate, len(existingRows))
	for _, row := range existingRows {
		existing[row.Target] = row
	}
	known := make(map[string]struct{}, len(knownCodes))
	for _, code := range knownCodes {
		known[code] = struct{}{}
	}

	var diff domain.RateDiff

	stageCurrency := func(code string) {
		if _, ok := known[code]; ok {
			return
		}
		// name defaults to the code until enriched
		diff.Currencies = append(diff.Currencies, domain.Currency{Code: code, Name: code})
		known[code] = struct{}{}
	}

	// the base itself must exist for the rate rows to reference
	stageCurrency(snapshot.Base)

	for target, value := range snapshot.Rates {
		stageCurrency(target)

		row := domain.ExchangeRate{
			Base:      snapshot.Base,
			Target:    target,
			Value:     value,
			UpdatedAt: snapshot.FetchedAt,
		}

		current, ok := existing[target]
		switch {
		case !ok:
			diff.Inserts = append(diff.Inserts, row)
		case math.Abs(current.Value-value) > rateTolerance:
			diff.Updates = append(diff.Updates, row)
		default:
			// unchanged within tolerance
		}
	}

	return diff
}
