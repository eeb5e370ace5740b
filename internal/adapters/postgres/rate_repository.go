package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxcache/internal/domain"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

func (r *RateRepository) ListByBase(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	const q = `
		select base, target, value, updated_at
		from exchange_rates
		where base = $1
		order by target;
	`

	rows, err := r.pool.Query(ctx, q, base)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for base %q: %w", base, err)
	}
	defer rows.Close()

	return scanRates(rows, base)
}

func (r *RateRepository) GetRate(ctx context.Context, base string, target string) (domain.ExchangeRate, error) {
	const q = `
		select base, target, value, updated_at
		from exchange_rates
		where base = $1 and target = $2;
	`

	var rate domain.ExchangeRate
	if err := r.pool.QueryRow(ctx, q, base, target).Scan(
		&rate.Base,
		&rate.Target,
		&rate.Value,
		&rate.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExchangeRate{}, domain.ErrRateNotFound
		}
		return domain.ExchangeRate{}, fmt.Errorf("failed to select rate for pair %q/%q: %w", base, target, err)
	}

	return rate, nil
}

func (r *RateRepository) ListAbove(ctx context.Context, base string, threshold float64) ([]domain.ExchangeRate, error) {
	const q = `
		select base, target, value, updated_at
		from exchange_rates
		where base = $1 and value > $2
		order by value desc;
	`

	rows, err := r.pool.Query(ctx, q, base, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates above %v for base %q: %w", threshold, base, err)
	}
	defer rows.Close()

	return scanRates(rows, base)
}

func (r *RateRepository) ListCurrencyCodes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `select code from currencies order by code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency codes: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0, 64)
	for rows.Next() {
		var c string
		if err = rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan currency code: %w", err)
		}
		codes = append(codes, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency codes: %w", err)
	}
	return codes, nil
}

type currencyRow struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type rateRow struct {
	Base      string    `json:"base"`
	Target    string    `json:"target"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyDiff writes a staged reconciliation diff in a single transaction:
// currencies first, then rate inserts and updates as one upsert batch.
// On error nothing is visible to callers.
func (r *RateRepository) ApplyDiff(ctx context.Context, diff domain.RateDiff) error {
	if diff.Empty() {
		return nil
	}

	currenciesJSON, err := marshalCurrencies(diff.Currencies)
	if err != nil {
		return err
	}
	ratesJSON, err := marshalRates(append(append([]domain.ExchangeRate{}, diff.Inserts...), diff.Updates...))
	if err != nil {
		return err
	}

	const insertCurrencies = `
		insert into currencies (code, name)
		select code, name from json_to_recordset($1::json) as r(code text, name text)
		on conflict (code) do nothing;
	`

	const upsertRates = `
		insert into exchange_rates (base, target, value, updated_at)
		select base, target, value, updated_at
		from json_to_recordset($1::json) as r(base text, target text, value double precision, updated_at timestamptz)
		on conflict (base, target) do update
		  set value = excluded.value, updated_at = excluded.updated_at;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(diff.Currencies) > 0 {
		if _, err = tx.Exec(ctx, insertCurrencies, json.RawMessage(currenciesJSON)); err != nil {
			return fmt.Errorf("failed to insert currencies: %w", err)
		}
	}
	if len(diff.Inserts) > 0 || len(diff.Updates) > 0 {
		if _, err = tx.Exec(ctx, upsertRates, json.RawMessage(ratesJSON)); err != nil {
			return fmt.Errorf("failed to upsert rates: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func marshalCurrencies(currencies []domain.Currency) ([]byte, error) {
	payload := make([]currencyRow, 0, len(currencies))
	for _, c := range currencies {
		payload = append(payload, currencyRow{Code: c.Code, Name: c.Name})
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal currencies: %w", err)
	}
	return out, nil
}

func marshalRates(rates []domain.ExchangeRate) ([]byte, error) {
	payload := make([]rateRow, 0, len(rates))
	for _, rate := range rates {
		payload = append(payload, rateRow{rate.Base, rate.Target, rate.Value, rate.UpdatedAt})
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rates: %w", err)
	}
	return out, nil
}

func scanRates(rows pgx.Rows, base string) ([]domain.ExchangeRate, error) {
	rates := make([]domain.ExchangeRate, 0, 64)
	for rows.Next() {
		var rate domain.ExchangeRate
		if err := rows.Scan(&rate.Base, &rate.Target, &rate.Value, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate for base %q: %w", base, err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rates for base %q: %w", base, err)
	}
	return rates, nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
