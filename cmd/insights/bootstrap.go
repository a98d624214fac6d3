package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"millet-market-engine/internal/forecast"
	"millet-market-engine/internal/forecast/forecastobs"
	"millet-market-engine/internal/insights"
	"millet-market-engine/internal/insights/insightsobs"
	"millet-market-engine/internal/interfaces"
	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/mandi"
	"millet-market-engine/internal/match"
	"millet-market-engine/internal/match/matchobs"
	"millet-market-engine/internal/pricing"
	"millet-market-engine/internal/quality"
	"millet-market-engine/internal/quality/qualityobs"
	"millet-market-engine/internal/store"
	"millet-market-engine/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// pricingTables builds the pricing tables, applying any config overrides on
// top of the compiled-in baseline.
func pricingTables(cfg *store.Config) pricing.Tables {
	tables := pricing.DefaultTables()
	for crop, price := range cfg.Pricing.BasePrices {
		tables.BasePrices[crop] = price
	}
	if cfg.Pricing.FallbackBase > 0 {
		tables.FallbackBase = cfg.Pricing.FallbackBase
	}
	for loc, f := range cfg.Pricing.LocationFactors {
		tables.LocationFactors[loc] = f
	}
	for q, f := range cfg.Pricing.QualityFactors {
		tables.QualityFactors[q] = f
	}
	return tables
}

// initializeFetcher returns the price fetcher selected by config
func initializeFetcher(ctx context.Context, cfg *store.Config, now time.Time) mandi.PriceFetcher {
	if cfg.Mandi.Source == "LIVE" {
		logger.Info(ctx, "Using LIVE mandi board prices")
		return mandi.NewScraper(time.Duration(cfg.Mandi.RateLimit) * time.Second)
	}
	logger.Info(ctx, "Using MOCK price data for testing")
	return mandi.NewMockPriceFetcher(1, now)
}

// initializeInsights returns the insights engine with observability
func initializeInsights(cfg *store.Config) interfaces.InsightsEngine {
	return insightsobs.Wrap(insights.NewWithWindow(cfg.Insights.TrendWindowDays))
}

// initializeForecaster returns the forecast engine with observability
func initializeForecaster(cfg *store.Config) interfaces.Forecaster {
	return forecastobs.Wrap(forecast.New(pricingTables(cfg)))
}

// initializeMatcher returns the match engine with observability
func initializeMatcher(snap *store.Snapshot) interfaces.Matcher {
	directory := store.NewFarmerDirectory(snap.Farmers)
	return matchobs.Wrap(match.New(directory))
}

// initializeQuality returns the quality engine with its persistent recorder
// and observability
func initializeQuality(cfg *store.Config) interfaces.QualityChecker {
	return qualityobs.Wrap(quality.New(quality.NewFileRecorder(cfg.Quality.RecordFile)))
}
