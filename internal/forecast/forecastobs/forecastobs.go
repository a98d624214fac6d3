package forecastobs

import (
	"context"
	"time"

	"millet-market-engine/internal/forecast"
	"millet-market-engine/internal/interfaces"
	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/trace"
	"millet-market-engine/internal/types"
)

type observableForecaster struct {
	forecaster interfaces.Forecaster
}

var _ interfaces.Forecaster = (*observableForecaster)(nil)

func Wrap(f interfaces.Forecaster) interfaces.Forecaster {
	return &observableForecaster{
		forecaster: f,
	}
}

func (of *observableForecaster) ForecastDemand(ctx context.Context, orders []types.Order, listings []types.Listing, history []types.PriceSample, location, period string, now time.Time) (*forecast.Report, error) {
	ctx, span := trace.StartSpan(ctx, "forecast.ForecastDemand")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting demand forecast",
		"location", location,
		"period", period,
		"orders", len(orders),
	)

	report, err := of.forecaster.ForecastDemand(ctx, orders, listings, history, location, period, now)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Demand forecast failed", err,
			"location", location,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Demand forecast completed",
		"location", location,
		"crops", len(report.Forecast),
		"current_orders", report.Summary.CurrentOrders,
		"historical_orders", report.Summary.HistoricalOrders,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
