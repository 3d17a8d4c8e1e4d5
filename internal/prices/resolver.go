package prices

import (
	"context"
	"errors"
	"strings"
	"time"

	"folio-backend/internal/apperrors"
	"folio-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds resolution attempts for one asset class. Backoff grows
// linearly: the wait before attempt n+1 is n*Backoff.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// Default policies. Crypto quotes retry with linear backoff; stock quotes get
// a single attempt, the upstream free tier counts every call against a strict
// quota.
var (
	DefaultCryptoPolicy = RetryPolicy{Attempts: 3, Backoff: time.Second}
	DefaultStockPolicy  = RetryPolicy{Attempts: 1}
)

// Resolver resolves a current market quote for a holding by asset class.
type Resolver struct {
	Crypto CryptoSource
	Stock  StockSource

	CryptoPolicy RetryPolicy
	StockPolicy  RetryPolicy
}

// NewResolver builds a resolver with the default per-class retry policies.
func NewResolver(crypto CryptoSource, stock StockSource) *Resolver {
	return &Resolver{
		Crypto:       crypto,
		Stock:        stock,
		CryptoPolicy: DefaultCryptoPolicy,
		StockPolicy:  DefaultStockPolicy,
	}
}

// Resolve returns the current quote for the given class and identifier.
// When symbol is empty the name stands in for it. Crypto identifiers are
// lower-cased (the upstream keys coins by lower-case id), stock symbols
// upper-cased. Asset classes without a crypto listing go through the stock
// path.
func (r *Resolver) Resolve(ctx context.Context, class models.AssetClass, symbol, name string) (*Quote, error) {
	ident := strings.TrimSpace(symbol)
	if ident == "" {
		ident = strings.TrimSpace(name)
	}
	if ident == "" {
		return nil, apperrors.Validation("A symbol or name is required to resolve a price")
	}

	if class == models.AssetCrypto {
		return r.resolveCrypto(ctx, strings.ToLower(ident))
	}
	return r.resolveStock(ctx, strings.ToUpper(ident))
}

func (r *Resolver) resolveCrypto(ctx context.Context, id string) (*Quote, error) {
	policy := r.CryptoPolicy
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		quote, err := r.Crypto.SimplePrice(ctx, id)
		if err == nil {
			if quote.Price <= 0 {
				return nil, apperrors.PriceUnavailable("Price not found for "+id, nil)
			}
			return quote, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("id", id).Int("attempt", attempt).Msg("Crypto price fetch failed")

		if attempt == policy.Attempts {
			break
		}
		wait := time.Duration(attempt) * policy.Backoff
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, apperrors.PriceUnavailable("Price not found for "+id, lastErr)
}

func (r *Resolver) resolveStock(ctx context.Context, symbol string) (*Quote, error) {
	policy := r.StockPolicy
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		quote, err := r.Stock.GlobalQuote(ctx, symbol)
		if err == nil {
			if quote.Price <= 0 {
				return nil, apperrors.PriceUnavailable("Price not found for "+symbol, nil)
			}
			return quote, nil
		}
		// Typed errors (missing credential, explicit not-found payload) are
		// final regardless of the policy.
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		lastErr = err
		log.Warn().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("Stock quote fetch failed")

		if attempt == policy.Attempts {
			break
		}
		wait := time.Duration(attempt) * policy.Backoff
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, apperrors.External("Failed to fetch stock quote for "+symbol, lastErr)
}
