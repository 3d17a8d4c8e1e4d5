package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	RedisURL        string
	LocalCurrency   string // target currency for valuation amounts (USD rate applied)
	AlphaVantageKey string // required for stock quotes; crypto works without it

	// Base URL overrides, used by tests and self-hosted mirrors.
	ExchangeRateAPIURL string
	CoinGeckoAPIURL    string
	AlphaVantageAPIURL string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	currency := viper.GetString("LOCAL_CURRENCY")
	if currency == "" {
		currency = "INR"
	}

	return &Config{
		Env:                env,
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           viper.GetString("REDIS_URL"),
		LocalCurrency:      strings.ToUpper(currency),
		AlphaVantageKey:    viper.GetString("ALPHA_VANTAGE_API_KEY"),
		ExchangeRateAPIURL: viper.GetString("EXCHANGE_RATE_API_URL"),
		CoinGeckoAPIURL:    viper.GetString("COINGECKO_API_URL"),
		AlphaVantageAPIURL: viper.GetString("ALPHA_VANTAGE_API_URL"),
	}, nil
}
