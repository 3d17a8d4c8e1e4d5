package holdings

import (
	"context"
	"errors"
	"testing"

	"folio-backend/internal/apperrors"
	"folio-backend/internal/models"
	"folio-backend/internal/prices"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeResolver struct {
	fn    func(class models.AssetClass, symbol, name string) (*prices.Quote, error)
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, class models.AssetClass, symbol, name string) (*prices.Quote, error) {
	f.calls++
	return f.fn(class, symbol, name)
}

type fakeRates struct {
	rate  *float64
	calls int
}

func (f *fakeRates) Rate(ctx context.Context) *float64 {
	f.calls++
	return f.rate
}

type memorySink struct {
	recorded []RefreshFailure
}

func (m *memorySink) RecordRefreshFailure(ctx context.Context, f RefreshFailure) {
	m.recorded = append(m.recorded, f)
}

func fixedQuote(price float64) func(models.AssetClass, string, string) (*prices.Quote, error) {
	return func(models.AssetClass, string, string) (*prices.Quote, error) {
		return &prices.Quote{Price: price}, nil
	}
}

func ptr(f float64) *float64 { return &f }

func setupService(t *testing.T, resolver *fakeResolver, r *fakeRates) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Holding{}))
	return &Service{
		Repo:     &GormRepository{DB: db},
		Resolver: resolver,
		Rates:    r,
	}, db
}

func TestCreate_CostBasisIsFirstResolvedPrice(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(50000)}
	svc, _ := setupService(t, resolver, &fakeRates{rate: ptr(83)})

	h, err := svc.Create(context.Background(), Input{
		Name: "Bitcoin", Type: "Crypto", Quantity: float64(2),
	})
	require.NoError(t, err)

	assert.Equal(t, 50000.0, h.PurchasePrice)
	assert.Equal(t, 50000.0, h.CurrentPrice)
	assert.Equal(t, 8300000.0, h.Amount)
	assert.Equal(t, 0.0, h.ProfitLoss)
	require.NotNil(t, h.ProfitLossPercentage)
	assert.Equal(t, 0.0, *h.ProfitLossPercentage)
	assert.NotNil(t, h.LastUpdated)
	assert.NotEqual(t, uuid.Nil, h.ID)
}

func TestCreate_QuantityAcceptsNumericString(t *testing.T) {
	svc, _ := setupService(t, &fakeResolver{fn: fixedQuote(10)}, &fakeRates{})

	h, err := svc.Create(context.Background(), Input{
		Name: "Ethereum", Type: "Crypto", Quantity: "1.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, h.Quantity)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _ := setupService(t, &fakeResolver{fn: fixedQuote(10)}, &fakeRates{})

	cases := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Type: "Crypto", Quantity: float64(1)}},
		{"missing type", Input{Name: "Bitcoin", Quantity: float64(1)}},
		{"bad type", Input{Name: "Bitcoin", Type: "Bond", Quantity: float64(1)}},
		{"missing quantity", Input{Name: "Bitcoin", Type: "Crypto"}},
		{"zero quantity", Input{Name: "Bitcoin", Type: "Crypto", Quantity: float64(0)}},
		{"negative quantity", Input{Name: "Bitcoin", Type: "Crypto", Quantity: float64(-3)}},
		{"non-numeric quantity", Input{Name: "Bitcoin", Type: "Crypto", Quantity: "many"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			require.Error(t, err)
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, fiber.StatusBadRequest, appErr.Status)
		})
	}
}

func TestCreate_PriceUnavailablePropagates(t *testing.T) {
	resolver := &fakeResolver{fn: func(models.AssetClass, string, string) (*prices.Quote, error) {
		return nil, apperrors.PriceUnavailable("Price not found for bitcorn", nil)
	}}
	svc, db := setupService(t, resolver, &fakeRates{})

	_, err := svc.Create(context.Background(), Input{Name: "Bitcorn", Type: "Crypto", Quantity: float64(1)})
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Status)

	var count int64
	require.NoError(t, db.Model(&models.Holding{}).Count(&count).Error)
	assert.Zero(t, count, "nothing persisted when no price resolves")
}

func TestCreate_DegradedModeWithoutRate(t *testing.T) {
	svc, _ := setupService(t, &fakeResolver{fn: fixedQuote(200)}, &fakeRates{rate: nil})

	h, err := svc.Create(context.Background(), Input{Name: "Tesla", Symbol: "TSLA", Type: "Stock", Quantity: float64(4)})
	require.NoError(t, err)
	assert.Equal(t, 800.0, h.Amount, "no rate: amount stays in source currency")
}

func TestUpdate_PreservesPurchasePrice(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(50000)}
	rates := &fakeRates{rate: ptr(83)}
	svc, _ := setupService(t, resolver, rates)

	created, err := svc.Create(context.Background(), Input{Name: "Bitcoin", Type: "Crypto", Quantity: float64(2)})
	require.NoError(t, err)

	resolver.fn = fixedQuote(60000)
	updated, err := svc.Update(context.Background(), created.ID, Input{
		Name: "Bitcoin", Type: "Crypto", Quantity: float64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, 50000.0, updated.PurchasePrice, "cost basis survives updates")
	assert.Equal(t, 60000.0, updated.CurrentPrice)
	assert.Equal(t, 3.0, updated.Quantity)
	assert.Equal(t, 30000.0, updated.ProfitLoss)
	require.NotNil(t, updated.ProfitLossPercentage)
	assert.Equal(t, 20.0, *updated.ProfitLossPercentage)
}

func TestUpdate_AdoptsResolvedPriceWhenNoPriorBasis(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(100)}
	svc, db := setupService(t, resolver, &fakeRates{})

	// A record that predates valuation: no basis stored.
	h := &models.Holding{Name: "Legacy", AssetClass: models.AssetStock, Quantity: 1}
	require.NoError(t, db.Create(h).Error)

	updated, err := svc.Update(context.Background(), h.ID, Input{
		Name: "Legacy", Symbol: "LGC", Type: "Stock", Quantity: float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.PurchasePrice)
}

func TestUpdate_UnknownIDIsNotFound(t *testing.T) {
	svc, _ := setupService(t, &fakeResolver{fn: fixedQuote(1)}, &fakeRates{})

	_, err := svc.Update(context.Background(), uuid.New(), Input{Name: "X", Type: "Stock", Quantity: float64(1)})
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Status)
}

func TestDelete_ReturnsDeletedRecord(t *testing.T) {
	svc, db := setupService(t, &fakeResolver{fn: fixedQuote(10)}, &fakeRates{})

	created, err := svc.Create(context.Background(), Input{Name: "Solana", Type: "Crypto", Quantity: float64(5)})
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	var count int64
	require.NoError(t, db.Model(&models.Holding{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Delete(context.Background(), created.ID)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Status)
}

func TestList_FiltersAndSorts(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(10)}
	svc, _ := setupService(t, resolver, &fakeRates{})

	mk := func(name, typ string, tags []string) {
		_, err := svc.Create(context.Background(), Input{Name: name, Type: typ, Quantity: float64(1), Tags: tags})
		require.NoError(t, err)
	}
	mk("Bitcoin", "Crypto", []string{"long-term"})
	mk("Apple", "Stock", []string{"tech", "long-term"})
	mk("Dogecoin", "Crypto", []string{"meme"})

	byType, err := svc.List(context.Background(), "Crypto", "", "")
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byTags, err := svc.List(context.Background(), "", "tech,meme", "")
	require.NoError(t, err)
	require.Len(t, byTags, 2)
	names := []string{byTags[0].Name, byTags[1].Name}
	assert.ElementsMatch(t, []string{"Apple", "Dogecoin"}, names)

	sorted, err := svc.List(context.Background(), "", "", "name:asc")
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Apple", sorted[0].Name)
	assert.Equal(t, "Dogecoin", sorted[2].Name)

	_, err = svc.List(context.Background(), "", "", "password:asc")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusBadRequest, appErr.Status)

	_, err = svc.List(context.Background(), "", "", "name:sideways")
	require.Error(t, err)
}

func TestRefreshAll_SecondFailureDoesNotAbortOthers(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(100)}
	rates := &fakeRates{rate: ptr(83)}
	svc, db := setupService(t, resolver, rates)
	sink := &memorySink{}
	svc.Failures = sink

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := svc.Create(context.Background(), Input{Name: name, Type: "Crypto", Quantity: float64(1)})
		require.NoError(t, err)
	}

	rates.calls = 0
	resolver.fn = func(class models.AssetClass, symbol, name string) (*prices.Quote, error) {
		if name == "beta" {
			return nil, errors.New("resolution blew up")
		}
		return &prices.Quote{Price: 150}, nil
	}

	result, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Updated, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "beta", result.Failures[0].Name)
	assert.Len(t, sink.recorded, 1)
	assert.Equal(t, 1, rates.calls, "one rate fetch per refresh, not per holding")

	var all []models.Holding
	require.NoError(t, db.Order("name ASC").Find(&all).Error)
	require.Len(t, all, 3)
	assert.Equal(t, 150.0, all[0].CurrentPrice) // alpha
	assert.Equal(t, 100.0, all[1].CurrentPrice) // beta unchanged
	assert.Equal(t, 150.0, all[2].CurrentPrice) // gamma
}

func TestRefreshAll_KeepsPurchasePriceFixed(t *testing.T) {
	resolver := &fakeResolver{fn: fixedQuote(50000)}
	svc, _ := setupService(t, resolver, &fakeRates{rate: ptr(83)})

	created, err := svc.Create(context.Background(), Input{Name: "Bitcoin", Type: "Crypto", Quantity: float64(2)})
	require.NoError(t, err)

	resolver.fn = fixedQuote(60000)
	result, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Updated, 1)

	h := result.Updated[0]
	assert.Equal(t, created.ID, h.ID)
	assert.Equal(t, 50000.0, h.PurchasePrice)
	assert.Equal(t, 60000.0, h.CurrentPrice)
	assert.Equal(t, 20000.0, h.ProfitLoss)
	assert.Equal(t, 60000.0*2*83, h.Amount)
}
