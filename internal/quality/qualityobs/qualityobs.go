package qualityobs

import (
	"context"
	"time"

	"millet-market-engine/internal/interfaces"
	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/quality"
	"millet-market-engine/internal/trace"
	"millet-market-engine/internal/types"
)

type observableChecker struct {
	checker interfaces.QualityChecker
}

var _ interfaces.QualityChecker = (*observableChecker)(nil)

func Wrap(c interfaces.QualityChecker) interfaces.QualityChecker {
	return &observableChecker{
		checker: c,
	}
}

func (oc *observableChecker) CheckBatch(ctx context.Context, batch types.QualityBatch, now time.Time) (*quality.Result, error) {
	ctx, span := trace.StartSpan(ctx, "quality.CheckBatch")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting quality check",
		"batch_id", batch.BatchID,
		"millet_type", batch.MilletType,
	)

	result, err := oc.checker.CheckBatch(ctx, batch, now)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Quality check failed", err,
			"batch_id", batch.BatchID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.Verdict(ctx, result.BatchID, result.Status, result.QualityScore, result.Approved,
		"issues", len(result.Issues),
		"warnings", len(result.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
