package holdings

import (
	"context"
	"strings"
	"time"

	"folio-backend/internal/apperrors"
	"folio-backend/internal/models"
	"folio-backend/internal/pkg/validation"
	"folio-backend/internal/prices"
	"folio-backend/internal/valuation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PriceResolver resolves a market quote for an asset class and identifier.
type PriceResolver interface {
	Resolve(ctx context.Context, class models.AssetClass, symbol, name string) (*prices.Quote, error)
}

// RateProvider supplies the USD→local conversion rate; nil means unavailable.
type RateProvider interface {
	Rate(ctx context.Context) *float64
}

// Service encapsulates holdings operations: CRUD with price enrichment, and
// the bulk price refresh.
type Service struct {
	Repo      Repository
	Resolver  PriceResolver
	Rates     RateProvider
	CostBasis valuation.CostBasisPolicy
	Failures  FailureSink // optional
}

// Input is the client-supplied holding payload. Quantity is untyped because
// clients send it both as a JSON number and as a numeric string.
type Input struct {
	Name     string      `json:"name"`
	Symbol   string      `json:"symbol"`
	Quantity interface{} `json:"quantity"`
	Type     string      `json:"type"`
	Notes    string      `json:"notes"`
	Tags     []string    `json:"tags"`
}

func (s *Service) costBasis() valuation.CostBasisPolicy {
	if s.CostBasis != nil {
		return s.CostBasis
	}
	return valuation.FirstPrice
}

func (s *Service) validate(in Input) (quantity float64, class models.AssetClass, err error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, "", apperrors.Validation("name is required")
	}
	class = models.AssetClass(in.Type)
	if in.Type == "" || !class.Valid() {
		return 0, "", apperrors.Validation("type must be one of Stock, Crypto, Other")
	}
	quantity, qErr := validation.ParsePositiveNumber(in.Quantity)
	if qErr != nil {
		return 0, "", apperrors.Validation("quantity must be a positive number")
	}
	return quantity, class, nil
}

// Create validates the input, resolves an initial price and persists the new
// holding. The first resolved price becomes both the current price and the
// cost basis.
func (s *Service) Create(ctx context.Context, in Input) (*models.Holding, error) {
	quantity, class, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	quote, err := s.Resolver.Resolve(ctx, class, in.Symbol, in.Name)
	if err != nil {
		return nil, err
	}
	rate := s.Rates.Rate(ctx)

	basis := s.costBasis()(nil, quote.Price)
	snap := valuation.Compute(quote.Price, basis, quantity, rate)
	now := time.Now().UTC()

	h := &models.Holding{
		Name:                 strings.TrimSpace(in.Name),
		Symbol:               strings.TrimSpace(in.Symbol),
		AssetClass:           class,
		Quantity:             quantity,
		PurchasePrice:        basis,
		CurrentPrice:         quote.Price,
		Amount:               snap.Amount,
		ProfitLoss:           snap.ProfitLoss,
		ProfitLossPercentage: snap.ProfitLossPercentage,
		LastUpdated:          &now,
		Notes:                in.Notes,
	}
	h.SetTags(in.Tags)

	if err := s.Repo.Create(ctx, h); err != nil {
		return nil, apperrors.External("Failed to save holding", err)
	}
	return h, nil
}

// Update revalidates and reprices an existing holding. The stored purchase
// price survives the update; only a record that never had a basis adopts the
// newly resolved price.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Holding, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.External("Failed to load holding", err)
	}
	if existing == nil {
		return nil, apperrors.NotFound("Holding not found")
	}

	quantity, class, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	quote, err := s.Resolver.Resolve(ctx, class, in.Symbol, in.Name)
	if err != nil {
		return nil, err
	}
	rate := s.Rates.Rate(ctx)

	basis := s.costBasis()(&existing.PurchasePrice, quote.Price)
	snap := valuation.Compute(quote.Price, basis, quantity, rate)
	now := time.Now().UTC()

	tags := existing.Tags
	if in.Tags != nil {
		probe := models.Holding{}
		probe.SetTags(in.Tags)
		tags = probe.Tags
	}

	updated, err := s.Repo.UpdateByID(ctx, id, map[string]interface{}{
		"name":                   strings.TrimSpace(in.Name),
		"symbol":                 strings.TrimSpace(in.Symbol),
		"type":                   class,
		"quantity":               quantity,
		"notes":                  in.Notes,
		"tags":                   tags,
		"purchase_price":         basis,
		"current_price":          quote.Price,
		"amount":                 snap.Amount,
		"profit_loss":            snap.ProfitLoss,
		"profit_loss_percentage": snap.ProfitLossPercentage,
		"last_updated":           &now,
	})
	if err != nil {
		return nil, apperrors.External("Failed to save holding", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Holding not found")
	}
	return updated, nil
}

// Delete removes a holding and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	h, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, apperrors.External("Failed to delete holding", err)
	}
	if h == nil {
		return nil, apperrors.NotFound("Holding not found")
	}
	return h, nil
}

// sortColumns whitelists the sortable fields, keyed by the JSON field names
// clients see.
var sortColumns = map[string]string{
	"name":          "name",
	"quantity":      "quantity",
	"purchasePrice": "purchase_price",
	"currentPrice":  "current_price",
	"amount":        "amount",
	"profitLoss":    "profit_loss",
	"lastUpdated":   "last_updated",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

// List returns holdings filtered by type and tags (match-any), ordered by the
// `field:asc|desc` sort parameter (default createdAt:desc).
func (s *Service) List(ctx context.Context, typ, tagsParam, sortParam string) ([]models.Holding, error) {
	sort := DefaultSort
	if sortParam != "" {
		field, dir, found := strings.Cut(sortParam, ":")
		column, ok := sortColumns[field]
		if !ok {
			return nil, apperrors.Validation("sort field must be one of the holding fields")
		}
		if !found {
			return nil, apperrors.Validation("sort must be formatted as field:asc or field:desc")
		}
		switch dir {
		case "asc":
			sort = Sort{Column: column, Desc: false}
		case "desc":
			sort = Sort{Column: column, Desc: true}
		default:
			return nil, apperrors.Validation("sort direction must be asc or desc")
		}
	}

	out, err := s.Repo.Find(ctx, Filter{Type: typ, Tags: validation.SplitTags(tagsParam)}, sort)
	if err != nil {
		return nil, apperrors.External("Failed to list holdings", err)
	}
	if out == nil {
		out = []models.Holding{}
	}
	return out, nil
}

func logHoldingError(h models.Holding, err error, msg string) {
	log.Error().Err(err).Str("holding_id", h.ID.String()).Str("name", h.Name).Msg(msg)
}
