package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com"

// CoinGeckoClient is a CryptoSource backed by the CoinGecko simple-price API.
type CoinGeckoClient struct {
	BaseURL string
	Client  *http.Client
}

type coinGeckoSimplePrice struct {
	USD           *float64 `json:"usd"`
	USD24hChange  *float64 `json:"usd_24h_change"`
	LastUpdatedAt *int64   `json:"last_updated_at"`
}

// SimplePrice fetches the USD spot price, 24h change and source-reported
// last-updated time for a coin id.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, id string) (*Quote, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	base := c.BaseURL
	if base == "" {
		base = defaultCoinGeckoBaseURL
	}
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_last_updated_at", "true")
	reqURL := base + "/api/v3/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coingecko error: status %d body: %s", resp.StatusCode, string(body))
	}

	var data map[string]coinGeckoSimplePrice
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("coingecko response decode: %w", err)
	}
	entry, ok := data[id]
	if !ok || entry.USD == nil {
		return nil, fmt.Errorf("coingecko returned no price for %q", id)
	}

	quote := &Quote{
		Price:     *entry.USD,
		Change24h: entry.USD24hChange,
	}
	if entry.LastUpdatedAt != nil {
		ts := time.Unix(*entry.LastUpdatedAt, 0).UTC()
		quote.LastUpdated = &ts
	}
	return quote, nil
}
