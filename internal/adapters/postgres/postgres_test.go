package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"fxcache/internal/adapters/postgres"
	"fxcache/internal/domain"
	"fxcache/internal/rate"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const migrationsDir = "../../platform/db/migrations"

var (
	pgSetupOnce sync.Once

	pgContainer *tcpg.PostgresContainer
	pgConnStr   string
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgSetupOnce.Do(func() {
		startPostgres(t)
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, resetDatabase(ctx, pool))

	return pool
}

func startPostgres(t *testing.T) {
	ctx := context.Background()
	pg, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("postgres"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.Eventually(t, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return db.PingContext(pingCtx) == nil
	}, 15*time.Second, 500*time.Millisecond)

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.UpContext(ctx, db, migrationsDir))

	pgContainer = pg
	pgConnStr = dsn
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `truncate table exchange_rates, currencies cascade`); err != nil {
		return err
	}
	return nil
}

// ---------- read path ----------

func TestRateRepository_GetRate_NotFound(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)

	ctx := context.Background()
	_, err := repo.GetRate(ctx, "USD", "EUR")
	require.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestRateRepository_ListByBase_Empty(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)

	rates, err := repo.ListByBase(context.Background(), "USD")
	require.NoError(t, err)
	require.Empty(t, rates)
}

// ---------- ApplyDiff ----------

func TestRateRepository_ApplyDiff_InsertsAndReads(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	updatedAt := time.Date(2024, 4, 6, 10, 5, 0, 0, time.UTC)
	diff := domain.RateDiff{
		Currencies: []domain.Currency{
			{Code: "PLN", Name: "PLN"},
			{Code: "USD", Name: "USD"},
			{Code: "EUR", Name: "EUR"},
		},
		Inserts: []domain.ExchangeRate{
			{Base: "PLN", Target: "USD", Value: 0.2523, UpdatedAt: updatedAt},
			{Base: "PLN", Target: "EUR", Value: 0.2341, UpdatedAt: updatedAt},
		},
	}
	require.NoError(t, repo.ApplyDiff(ctx, diff))

	rates, err := repo.ListByBase(ctx, "PLN")
	require.NoError(t, err)
	require.Len(t, rates, 2)
	// ordered by target
	require.Equal(t, "EUR", rates[0].Target)
	require.InDelta(t, 0.2341, rates[0].Value, 1e-9)
	require.Equal(t, "USD", rates[1].Target)
	require.InDelta(t, 0.2523, rates[1].Value, 1e-9)
	require.True(t, rates[0].UpdatedAt.Equal(updatedAt))

	codes, err := repo.ListCurrencyCodes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"EUR", "PLN", "USD"}, codes)
}

func TestRateRepository_ApplyDiff_UpdatesExistingRow(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	first := time.Date(2024, 4, 6, 10, 5, 0, 0, time.UTC)
	require.NoError(t, repo.ApplyDiff(ctx, domain.RateDiff{
		Currencies: []domain.Currency{{Code: "USD", Name: "USD"}, {Code: "EUR", Name: "EUR"}},
		Inserts:    []domain.ExchangeRate{{Base: "USD", Target: "EUR", Value: 0.90, UpdatedAt: first}},
	}))

	second := first.Add(2 * time.Hour)
	require.NoError(t, repo.ApplyDiff(ctx, domain.RateDiff{
		Updates: []domain.ExchangeRate{{Base: "USD", Target: "EUR", Value: 0.92, UpdatedAt: second}},
	}))

	got, err := repo.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	require.InDelta(t, 0.92, got.Value, 1e-9)
	require.True(t, got.UpdatedAt.Equal(second))

	// still exactly one row per pair
	rates, err := repo.ListByBase(ctx, "USD")
	require.NoError(t, err)
	require.Len(t, rates, 1)
}

func TestRateRepository_ApplyDiff_DuplicateCurrencyIsNoOp(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	diff := domain.RateDiff{Currencies: []domain.Currency{{Code: "USD", Name: "USD"}}}
	require.NoError(t, repo.ApplyDiff(ctx, diff))
	require.NoError(t, repo.ApplyDiff(ctx, diff))

	codes, err := repo.ListCurrencyCodes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"USD"}, codes)
}

func TestRateRepository_ApplyDiff_EmptyDiff(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)

	require.NoError(t, repo.ApplyDiff(context.Background(), domain.RateDiff{}))
}

func TestRateRepository_ApplyDiff_MissingCurrencyRollsBack(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	// rate rows referencing unregistered codes must fail and leave nothing behind
	err := repo.ApplyDiff(ctx, domain.RateDiff{
		Inserts: []domain.ExchangeRate{{Base: "USD", Target: "EUR", Value: 0.92, UpdatedAt: time.Now().UTC()}},
	})
	require.Error(t, err)

	rates, listErr := repo.ListByBase(ctx, "USD")
	require.NoError(t, listErr)
	require.Empty(t, rates)
}

// ---------- ListAbove ----------

func TestRateRepository_ListAbove_FiltersAndOrdersDescending(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	updatedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.ApplyDiff(ctx, domain.RateDiff{
		Currencies: []domain.Currency{
			{Code: "PLN", Name: "PLN"},
			{Code: "USD", Name: "USD"},
			{Code: "EUR", Name: "EUR"},
			{Code: "JPY", Name: "JPY"},
		},
		Inserts: []domain.ExchangeRate{
			{Base: "PLN", Target: "USD", Value: 0.2523, UpdatedAt: updatedAt},
			{Base: "PLN", Target: "EUR", Value: 0.2341, UpdatedAt: updatedAt},
			{Base: "PLN", Target: "JPY", Value: 38.21, UpdatedAt: updatedAt},
		},
	}))

	rates, err := repo.ListAbove(ctx, "PLN", 0.24)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	require.Equal(t, "JPY", rates[0].Target)
	require.Equal(t, "USD", rates[1].Target)
}

// ---------- reconcile against a real store ----------

func TestReconcile_AgainstPostgres_EndToEnd(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	snapshot := domain.Snapshot{
		Base:      "PLN",
		Rates:     map[string]float64{"USD": 0.2523, "EUR": 0.2341},
		FetchedAt: time.Unix(1712400300, 0).UTC(),
	}

	result, err := rate.Reconcile(ctx, repo, snapshot)
	require.NoError(t, err)
	require.Equal(t, domain.ReconcileResult{Inserted: 2, Updated: 0}, result)

	// identical snapshot is a full no-op
	result, err = rate.Reconcile(ctx, repo, snapshot)
	require.NoError(t, err)
	require.Equal(t, domain.ReconcileResult{Inserted: 0, Updated: 0}, result)

	// a changed rate updates exactly that row
	snapshot.Rates["USD"] = 0.2600
	snapshot.FetchedAt = snapshot.FetchedAt.Add(2 * time.Hour)
	result, err = rate.Reconcile(ctx, repo, snapshot)
	require.NoError(t, err)
	require.Equal(t, domain.ReconcileResult{Inserted: 0, Updated: 1}, result)

	got, err := repo.GetRate(ctx, "PLN", "USD")
	require.NoError(t, err)
	require.InDelta(t, 0.2600, got.Value, 1e-9)
	require.True(t, got.UpdatedAt.Equal(snapshot.FetchedAt))
}
