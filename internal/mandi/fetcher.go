package mandi

import (
	"context"
	"math/rand"
	"time"

	"millet-market-engine/internal/types"
)

// PriceFetcher supplies historical price samples for the engines. Multiple
// implementations exist (scraped mandi boards, mock data); the engines never
// know which one fed them.
type PriceFetcher interface {
	// FetchPrices fetches recent price samples for the given crops.
	FetchPrices(ctx context.Context, crops []string) ([]types.PriceSample, error)
}

// MockPriceFetcher generates deterministic sample data for offline runs and
// testing.
type MockPriceFetcher struct {
	seed int64
	now  time.Time
}

var _ PriceFetcher = (*MockPriceFetcher)(nil)

// NewMockPriceFetcher creates a mock fetcher. The seed fixes the sample
// stream so repeated runs produce identical history.
func NewMockPriceFetcher(seed int64, now time.Time) *MockPriceFetcher {
	return &MockPriceFetcher{seed: seed, now: now}
}

// FetchPrices generates 30 daily samples per crop around a per-crop base
// price.
func (m *MockPriceFetcher) FetchPrices(ctx context.Context, crops []string) ([]types.PriceSample, error) {
	samples := make([]types.PriceSample, 0, len(crops)*30)
	for _, crop := range crops {
		cropSeed := m.seed
		for _, c := range crop {
			cropSeed += int64(c)
		}
		r := rand.New(rand.NewSource(cropSeed))

		base := 40.0 + r.Float64()*20.0
		for day := 29; day >= 0; day-- {
			// Small daily walk around the base, +-10%
			price := base * (0.9 + r.Float64()*0.2)
			samples = append(samples, types.PriceSample{
				MilletType: crop,
				Price:      float64(int(price*100)) / 100,
				Timestamp:  m.now.AddDate(0, 0, -day),
			})
		}
	}
	return samples, nil
}
