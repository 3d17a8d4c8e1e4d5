package app

import (
	"folio-backend/internal/config"
	"folio-backend/internal/database"
	"folio-backend/internal/health"
	"folio-backend/internal/holdings"
	"folio-backend/internal/middleware"
	"folio-backend/internal/prices"
	"folio-backend/internal/rates"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and redis client may be nil when the
// corresponding URLs are not configured; routes that need them are only
// mounted when they exist.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	app.Use(middleware.CORS(middleware.CORSConfig{}))
	app.Use(middleware.TrafficMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health endpoints work with whatever dependencies exist.
	var pinger health.DBPinger
	if db != nil {
		pinger = gormPinger{db: db}
	}
	healthHandlers := &health.Handlers{Rdb: rdb, DB: pinger}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/refresh-failures", healthHandlers.RefreshFailures)
	app.Get("/health/reset", healthHandlers.ResetCounters)

	// Holdings module (db may be nil in tests; routes need the store)
	if db != nil {
		rateCache := rates.NewCache(&rates.OpenERClient{BaseURL: cfg.ExchangeRateAPIURL}, cfg.LocalCurrency)
		resolver := prices.NewResolver(
			&prices.CoinGeckoClient{BaseURL: cfg.CoinGeckoAPIURL},
			&prices.AlphaVantageClient{BaseURL: cfg.AlphaVantageAPIURL, APIKey: cfg.AlphaVantageKey},
		)
		service := &holdings.Service{
			Repo:     &holdings.GormRepository{DB: db},
			Resolver: resolver,
			Rates:    rateCache,
		}
		if rdb != nil {
			service.Failures = &health.RedisFailureSink{Rdb: rdb}
		}
		handlers := &holdings.Handlers{Service: service}

		group := app.Group("/api/v1/holdings")
		group.Get("/", handlers.List)
		group.Post("/", handlers.Create)
		// Registered before the :id routes so "update-prices" is never
		// parsed as an id.
		group.Get("/update-prices", handlers.UpdatePrices)
		group.Put("/:id", handlers.Update)
		group.Delete("/:id", handlers.Delete)
	}

	return app, db, rdb, nil
}

type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
