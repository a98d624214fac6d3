package interfaces

import (
	"context"
	"time"

	"millet-market-engine/internal/forecast"
	"millet-market-engine/internal/insights"
	"millet-market-engine/internal/match"
	"millet-market-engine/internal/quality"
	"millet-market-engine/internal/types"
)

// InsightsEngine assembles the consolidated market report from a snapshot.
type InsightsEngine interface {
	ComputeMarketInsights(ctx context.Context, orders []types.Order, listings []types.Listing, history []types.PriceSample, now time.Time) (*insights.Report, error)
}

// Forecaster projects short-horizon demand per crop.
type Forecaster interface {
	ForecastDemand(ctx context.Context, orders []types.Order, listings []types.Listing, history []types.PriceSample, location, period string, now time.Time) (*forecast.Report, error)
}

// Matcher ranks listings against buyer preferences.
type Matcher interface {
	FindMatches(ctx context.Context, listings []types.Listing, prefs types.MatchPreferences, now time.Time) (*match.Report, error)
}

// QualityChecker grades produce batches against the fixed rule set.
type QualityChecker interface {
	CheckBatch(ctx context.Context, batch types.QualityBatch, now time.Time) (*quality.Result, error)
}
