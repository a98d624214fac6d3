package matchobs

import (
	"context"
	"time"

	"millet-market-engine/internal/interfaces"
	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/match"
	"millet-market-engine/internal/trace"
	"millet-market-engine/internal/types"
)

type observableMatcher struct {
	matcher interfaces.Matcher
}

var _ interfaces.Matcher = (*observableMatcher)(nil)

func Wrap(m interfaces.Matcher) interfaces.Matcher {
	return &observableMatcher{
		matcher: m,
	}
}

func (om *observableMatcher) FindMatches(ctx context.Context, listings []types.Listing, prefs types.MatchPreferences, now time.Time) (*match.Report, error) {
	ctx, span := trace.StartSpan(ctx, "match.FindMatches")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting product matching",
		"listings", len(listings),
		"max_price", prefs.MaxPrice,
		"preferred_quality", prefs.PreferredQuality,
	)

	report, err := om.matcher.FindMatches(ctx, listings, prefs, now)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Product matching failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.Match(ctx, report.MatchesFound, report.Statistics.AverageMatchScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
