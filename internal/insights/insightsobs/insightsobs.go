package insightsobs

import (
	"context"
	"time"

	"millet-market-engine/internal/insights"
	"millet-market-engine/internal/interfaces"
	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/trace"
	"millet-market-engine/internal/types"
)

type observableEngine struct {
	engine interfaces.InsightsEngine
}

var _ interfaces.InsightsEngine = (*observableEngine)(nil)

func Wrap(eng interfaces.InsightsEngine) interfaces.InsightsEngine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) ComputeMarketInsights(ctx context.Context, orders []types.Order, listings []types.Listing, history []types.PriceSample, now time.Time) (*insights.Report, error) {
	ctx, span := trace.StartSpan(ctx, "insights.ComputeMarketInsights")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting market insight computation",
		"orders", len(orders),
		"listings", len(listings),
		"price_samples", len(history),
	)

	report, err := oe.engine.ComputeMarketInsights(ctx, orders, listings, history, now)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Market insight computation failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Market insight computation completed",
		"trending_crops", len(report.TrendingCrops),
		"regions", len(report.RegionalInsights),
		"total_orders", report.Summary.TotalOrders,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
