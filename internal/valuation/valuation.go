// Package valuation holds the pure valuation math. No I/O here; everything
// the snapshot needs is passed in.
package valuation

// Snapshot is a computed valuation at a point in time. ProfitLossPercentage
// is nil when the purchase price is zero (the division is undefined).
type Snapshot struct {
	Amount               float64
	ProfitLoss           float64
	ProfitLossPercentage *float64
}

// Compute derives a valuation snapshot. rate is the USD→local conversion
// rate; nil means no rate is available and the amount stays in source
// currency (degraded mode, rate treated as 1).
func Compute(currentPrice, purchasePrice, quantity float64, rate *float64) Snapshot {
	r := 1.0
	if rate != nil {
		r = *rate
	}

	s := Snapshot{
		Amount:     currentPrice * quantity * r,
		ProfitLoss: (currentPrice - purchasePrice) * quantity,
	}
	if purchasePrice != 0 {
		pct := (currentPrice - purchasePrice) / purchasePrice * 100
		s.ProfitLossPercentage = &pct
	}
	return s
}

// CostBasisPolicy decides the purchase price recorded for a holding given
// the previously stored basis (nil on create) and the newly resolved price.
type CostBasisPolicy func(existing *float64, resolved float64) float64

// FirstPrice is the product rule in force: a holding's cost basis is the
// first price ever observed for it. An existing positive basis always wins;
// otherwise the freshly resolved price becomes the basis.
func FirstPrice(existing *float64, resolved float64) float64 {
	if existing != nil && *existing > 0 {
		return *existing
	}
	return resolved
}
