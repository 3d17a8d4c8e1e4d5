package prices

import (
	"context"
	"time"
)

// Quote is a resolved market price. Ephemeral: consumed by the valuation
// layer, never stored as its own record.
type Quote struct {
	Price         float64    `json:"price"`
	Change24h     *float64   `json:"change24h"`
	ChangePercent *float64   `json:"changePercent"`
	LastUpdated   *time.Time `json:"lastUpdated"`
}

// CryptoSource fetches a spot quote for a coin id (lower-case identifier).
type CryptoSource interface {
	SimplePrice(ctx context.Context, id string) (*Quote, error)
}

// StockSource fetches a global quote for a ticker symbol.
type StockSource interface {
	GlobalQuote(ctx context.Context, symbol string) (*Quote, error)
}
