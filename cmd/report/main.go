// Command report prints a one-shot console summary of the cached rates for
// the configured base currency: the full rate table, a comparison against the
// configured targets and the targets above the configured threshold.
//
// It takes no flags; everything comes from config.yaml. Exit code is non-zero
// only on startup failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fxcache/internal/adapters/cache"
	"fxcache/internal/adapters/httpclient"
	"fxcache/internal/adapters/postgres"
	"fxcache/internal/config"
	"fxcache/internal/domain"
	"fxcache/internal/platform/db"
	"fxcache/internal/rate"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetOutput(os.Stderr)

	if err := run(); err != nil {
		logrus.WithError(err).Error("report failed")
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	base := strings.ToUpper(strings.TrimSpace(appCfg.Report.Base))
	if err = rate.ValidateCode(base); err != nil {
		return fmt.Errorf("report base currency: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err = db.Migrate(ctx, appCfg.DbServer); err != nil {
		return err
	}
	pool, err := db.CreatePoolAndPing(ctx, appCfg.DbServer)
	if err != nil {
		return err
	}
	defer pool.Close()

	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	rateClient := httpclient.NewExchangeRateClient(
		&http.Client{Timeout: httpTimeout},
		strings.TrimSuffix(appCfg.RatesAPI.BaseURL, "/"),
	)

	ratesCache, err := cache.NewRatesCache(appCfg.Cache.MaxItems)
	if err != nil {
		return err
	}
	defer ratesCache.Close()

	service := rate.NewService(
		postgres.NewRateRepository(pool),
		rateClient,
		ratesCache,
		time.Duration(appCfg.Cache.FreshnessMinutes)*time.Minute,
	)

	printRates(ctx, service, base)

	if targets := normalizeCodes(appCfg.Report.Targets); len(targets) > 0 {
		if err = printComparison(ctx, service, base, targets); err != nil {
			return err
		}
	}
	if appCfg.Report.Threshold > 0 {
		if err = printAbove(ctx, service, base, appCfg.Report.Threshold); err != nil {
			return err
		}
	}
	return nil
}

func printRates(ctx context.Context, service *rate.Service, base string) {
	rates, err := service.GetRates(ctx, base)
	if err != nil {
		if errors.Is(err, domain.ErrNoRatesAvailable) {
			fmt.Printf("Rates for %s: no data available\n", base)
			return
		}
		logrus.WithError(err).WithField("base", base).Warn("rates lookup failed")
		fmt.Printf("Rates for %s: no data available\n", base)
		return
	}

	fmt.Printf("Rates for %s:\n", base)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tRATE\tUPDATED")
	for _, r := range rates {
		fmt.Fprintf(w, "%s\t%.5f\t%s\n", r.Target, r.Value, r.UpdatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()
}

func printComparison(ctx context.Context, service *rate.Service, base string, targets []string) error {
	comparisons, err := service.Compare(ctx, base, targets)
	if err != nil {
		return err
	}

	fmt.Printf("\nComparison against %s:\n", base)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tRATE")
	for _, c := range comparisons {
		if !c.Found {
			fmt.Fprintf(w, "%s\tnot found\n", c.Target)
			continue
		}
		fmt.Fprintf(w, "%s\t%.5f\n", c.Target, c.Value)
	}
	return w.Flush()
}

func printAbove(ctx context.Context, service *rate.Service, base string, threshold float64) error {
	rates, err := service.ListAbove(ctx, base, threshold)
	if err != nil {
		return err
	}

	fmt.Printf("\nTargets above %.5f:\n", threshold)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tRATE")
	for _, r := range rates {
		fmt.Fprintf(w, "%s\t%.5f\n", r.Target, r.Value)
	}
	return w.Flush()
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			continue
		}
		out = append(out, code)
	}
	return out
}
