package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source supplies the latest USD-based exchange rates.
type Source interface {
	Latest(ctx context.Context) (map[string]float64, error)
}

const defaultRateAPIBaseURL = "https://open.er-api.com"

// OpenERClient is a Source backed by the open.er-api.com HTTP API.
type OpenERClient struct {
	BaseURL string
	Client  *http.Client
}

type latestRatesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Latest fetches the current USD rate table.
func (c *OpenERClient) Latest(ctx context.Context) (map[string]float64, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	base := c.BaseURL
	if base == "" {
		base = defaultRateAPIBaseURL
	}
	url := base + "/v6/latest/USD"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate api request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rate api error: status %d body: %s", resp.StatusCode, string(body))
	}

	var data latestRatesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("rate api response decode: %w", err)
	}
	if len(data.Rates) == 0 {
		return nil, fmt.Errorf("rate api returned no rates, body: %s", string(body))
	}
	return data.Rates, nil
}
