package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"fxcache/internal/domain"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ExchangeRateClient struct {
	http    *http.Client
	baseURL string
}

type apiResponse struct {
	BaseCode           string             `json:"base_code"`
	Rates              map[string]float64 `json:"rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
}

// FetchLatest requests the full rate set for the given base currency.
// Non-2xx responses and malformed bodies are fetch failures.
func (c *ExchangeRateClient) FetchLatest(ctx context.Context, base string) (domain.Snapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + base

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to create request for currency %q: %w", base, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to execute request for currency %q: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Snapshot{}, fmt.Errorf("unexpected status code %d for currency %q: %s", resp.StatusCode, base, resp.Status)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to decode response for currency %q: %w", base, err)
	}

	if len(body.Rates) == 0 {
		return domain.Snapshot{}, fmt.Errorf("api returned empty rate set for currency %q", base)
	}

	// Some mirrors omit base_code; the requested code is authoritative then.
	if body.BaseCode == "" {
		body.BaseCode = base
	}

	return domain.Snapshot{
		Base:      body.BaseCode,
		Rates:     body.Rates,
		FetchedAt: time.Unix(body.TimeLastUpdateUnix, 0).UTC(),
	}, nil
}

func NewExchangeRateClient(httpClient *http.Client, baseURL string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, baseURL: baseURL}
}
