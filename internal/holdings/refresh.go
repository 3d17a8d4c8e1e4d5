package holdings

import (
	"context"
	"time"

	"folio-backend/internal/apperrors"
	"folio-backend/internal/models"
	"folio-backend/internal/valuation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RefreshFailure is the structured per-holding failure report from a bulk
// refresh.
type RefreshFailure struct {
	HoldingID uuid.UUID `json:"holdingId"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
}

// RefreshResult is what a bulk refresh produced: the holdings that were
// revalued and persisted, plus per-holding failures for the rest.
type RefreshResult struct {
	Updated  []models.Holding `json:"updates"`
	Failures []RefreshFailure `json:"failures"`
}

// FailureSink receives refresh failures for out-of-band reporting. Sinks must
// not fail the refresh; errors are theirs to swallow.
type FailureSink interface {
	RecordRefreshFailure(ctx context.Context, f RefreshFailure)
}

// RefreshAll revalues every holding against fresh market prices. The full set
// and a single exchange rate are fetched once; holdings are then processed
// sequentially (deliberate: bounds concurrent load on rate-limited APIs).
// One holding failure never aborts the rest: it is logged, reported, and
// skipped. Only a failure to load the set itself returns an error.
func (s *Service) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	all, err := s.Repo.Find(ctx, Filter{}, DefaultSort)
	if err != nil {
		return nil, apperrors.External("Failed to load holdings", err)
	}

	rate := s.Rates.Rate(ctx)
	if rate == nil {
		log.Warn().Msg("No exchange rate available, valuing holdings in source currency")
	}

	result := &RefreshResult{
		Updated:  []models.Holding{},
		Failures: []RefreshFailure{},
	}
	for _, h := range all {
		updated, err := s.refreshOne(ctx, h, rate)
		if err != nil {
			logHoldingError(h, err, "Price refresh failed for holding")
			failure := RefreshFailure{HoldingID: h.ID, Name: h.Name, Reason: err.Error()}
			result.Failures = append(result.Failures, failure)
			if s.Failures != nil {
				s.Failures.RecordRefreshFailure(ctx, failure)
			}
			continue
		}
		result.Updated = append(result.Updated, *updated)
	}
	return result, nil
}

// refreshOne revalues a single holding against its existing purchase price.
// Only the price-derived fields are touched.
func (s *Service) refreshOne(ctx context.Context, h models.Holding, rate *float64) (*models.Holding, error) {
	quote, err := s.Resolver.Resolve(ctx, h.AssetClass, h.Symbol, h.Name)
	if err != nil {
		return nil, err
	}

	snap := valuation.Compute(quote.Price, h.PurchasePrice, h.Quantity, rate)
	now := time.Now().UTC()

	updated, err := s.Repo.UpdateByID(ctx, h.ID, map[string]interface{}{
		"current_price":          quote.Price,
		"amount":                 snap.Amount,
		"profit_loss":            snap.ProfitLoss,
		"profit_loss_percentage": snap.ProfitLossPercentage,
		"last_updated":           &now,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound("Holding disappeared during refresh")
	}
	return updated, nil
}
