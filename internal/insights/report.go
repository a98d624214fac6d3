package insights

import (
	"context"
	"time"

	"millet-market-engine/internal/types"
)

// Report is the consolidated market-insight view assembled from the
// aggregator outputs. It is computed in one pass and never mutated after.
type Report struct {
	GeneratedAt      time.Time           `json:"generatedAt"`
	TrendingCrops    []TrendingCropEntry `json:"trendingCrops"`
	MostSoldCrops    []MostSoldCropEntry `json:"mostSoldCrops"`
	HighestTrades    []HighestTradeEntry `json:"highestTrades"`
	PriceAnalysis    PriceAnalysis       `json:"priceAnalysis"`
	DemandPatterns   DemandPatterns      `json:"demandPatterns"`
	MarketVolatility MarketVolatility    `json:"marketVolatility"`
	TopFarmers       []TopFarmerEntry    `json:"topFarmers"`
	RegionalInsights []RegionEntry       `json:"regionalInsights"`
	SeasonalTrends   []SeasonalEntry     `json:"seasonalTrends"`
	Summary          Summary             `json:"summary"`
}

// Engine composes the aggregator functions into one report. It holds no
// state, so a single instance is safe for concurrent use.
type Engine struct {
	trendWindowDays int
}

// New creates an insights engine with the default trend window.
func New() *Engine {
	return &Engine{trendWindowDays: DefaultTrendWindowDays}
}

// NewWithWindow creates an insights engine with a custom trending window.
func NewWithWindow(windowDays int) *Engine {
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}
	return &Engine{trendWindowDays: windowDays}
}

// ComputeMarketInsights runs every aggregation over the supplied snapshot.
// Empty inputs produce a well-formed zero report, never an error.
func (e *Engine) ComputeMarketInsights(ctx context.Context, orders []types.Order, listings []types.Listing, history []types.PriceSample, now time.Time) (*Report, error) {
	_ = ctx // the computation is pure; ctx exists for observability wrappers

	return &Report{
		GeneratedAt:      now,
		TrendingCrops:    TrendingCrops(orders, listings, now, e.trendWindowDays),
		MostSoldCrops:    MostSoldCrops(orders, listings),
		HighestTrades:    HighestTrades(orders),
		PriceAnalysis:    ComputePriceAnalysis(listings, history),
		DemandPatterns:   ComputeDemandPatterns(orders, now),
		MarketVolatility: ComputeMarketVolatility(history),
		TopFarmers:       TopFarmers(orders, listings),
		RegionalInsights: RegionalInsights(orders, listings),
		SeasonalTrends:   SeasonalTrends(orders, now),
		Summary:          ComputeSummary(orders, listings),
	}, nil
}
