package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"folio-backend/internal/apperrors"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageClient is a StockSource backed by the Alpha Vantage
// GLOBAL_QUOTE endpoint. The endpoint requires an API key; requests are
// refused locally when none is configured.
type AlphaVantageClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type alphaVantageResponse struct {
	GlobalQuote  map[string]string `json:"Global Quote"`
	ErrorMessage string            `json:"Error Message"`
	Note         string            `json:"Note"`
}

// GlobalQuote fetches the latest quote for a ticker symbol.
func (c *AlphaVantageClient) GlobalQuote(ctx context.Context, symbol string) (*Quote, error) {
	if c.APIKey == "" {
		return nil, apperrors.Configuration("Stock price API key is not configured")
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	base := c.BaseURL
	if base == "" {
		base = defaultAlphaVantageBaseURL
	}
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.APIKey)
	reqURL := base + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("alphavantage error: status %d body: %s", resp.StatusCode, string(body))
	}

	var data alphaVantageResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("alphavantage response decode: %w", err)
	}
	if data.ErrorMessage != "" {
		return nil, apperrors.PriceUnavailable(
			fmt.Sprintf("Stock quote for %q not found", symbol),
			fmt.Errorf("alphavantage: %s", data.ErrorMessage),
		)
	}
	if data.Note != "" {
		// Free-tier throttle note; no quote in the payload.
		return nil, fmt.Errorf("alphavantage throttled: %s", data.Note)
	}
	if len(data.GlobalQuote) == 0 {
		return nil, fmt.Errorf("alphavantage returned an empty quote for %q", symbol)
	}

	priceStr := data.GlobalQuote["05. price"]
	price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote has no parseable price (%q)", priceStr)
	}

	quote := &Quote{Price: price}
	if v, err := strconv.ParseFloat(strings.TrimSpace(data.GlobalQuote["09. change"]), 64); err == nil {
		quote.Change24h = &v
	}
	pctStr := strings.TrimSuffix(strings.TrimSpace(data.GlobalQuote["10. change percent"]), "%")
	if v, err := strconv.ParseFloat(pctStr, 64); err == nil {
		quote.ChangePercent = &v
	}
	if day := strings.TrimSpace(data.GlobalQuote["07. latest trading day"]); day != "" {
		if ts, err := time.Parse("2006-01-02", day); err == nil {
			quote.LastUpdated = &ts
		}
	}
	return quote, nil
}
