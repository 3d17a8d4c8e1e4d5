package rates

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a fetched rate stays valid.
const DefaultTTL = time.Hour

// Cache holds the most recent USD→local-currency rate with a TTL. Within the
// TTL reads are served from memory with no external call; on expiry a refresh
// is attempted and, if it fails, the stale value is served instead (nil if
// nothing was ever fetched). The whole check-then-fetch-then-store sequence
// runs under one lock so concurrent readers cannot observe a half-updated
// slot.
type Cache struct {
	mu sync.Mutex

	source   Source
	currency string
	ttl      time.Duration
	now      func() time.Time

	rate      *float64
	fetchedAt time.Time
}

// NewCache builds a cache for the given local currency code (e.g. "INR").
func NewCache(source Source, currency string) *Cache {
	return &Cache{
		source:   source,
		currency: currency,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
}

// Rate returns the current USD→local rate, or nil when no rate has ever been
// fetched and the source is unreachable. Callers treat nil as "value in
// source currency" (rate 1).
func (c *Cache) Rate(ctx context.Context) *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rate != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rate
	}

	rates, err := c.source.Latest(ctx)
	if err != nil {
		log.Error().Err(err).Str("currency", c.currency).Msg("Exchange rate fetch failed, serving cached value")
		return c.rate
	}
	rate, ok := rates[c.currency]
	if !ok {
		log.Error().Str("currency", c.currency).Msg("Exchange rate response missing currency, serving cached value")
		return c.rate
	}

	c.rate = &rate
	c.fetchedAt = c.now()
	return c.rate
}
