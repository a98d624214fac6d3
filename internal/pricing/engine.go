package pricing

import (
	"fmt"
	"sort"

	"millet-market-engine/internal/stats"
	"millet-market-engine/internal/types"
)

// Tables holds the fixed lookup tables the price engine multiplies together.
// They are immutable configuration: built once, never mutated at runtime.
type Tables struct {
	BasePrices      map[string]float64
	FallbackBase    float64
	LocationFactors map[string]float64
	QualityFactors  map[string]float64
}

// DefaultTables returns the market baseline tables (Rs per kg).
func DefaultTables() Tables {
	return Tables{
		BasePrices: map[string]float64{
			"Finger Millet":   45,
			"Pearl Millet":    40,
			"Foxtail Millet":  55,
			"Little Millet":   50,
			"Kodo Millet":     52,
			"Barnyard Millet": 48,
			"Proso Millet":    46,
			"Browntop Millet": 54,
		},
		FallbackBase: 45,
		LocationFactors: map[string]float64{
			"Karnataka":      1.1,
			"Tamil Nadu":     1.05,
			"Andhra Pradesh": 1.08,
			"Telangana":      1.07,
			"Maharashtra":    1.0,
			"Kerala":         1.15,
			"Other":          0.95,
		},
		QualityFactors: map[string]float64{
			types.QualityPremium:  1.2,
			types.QualityStandard: 1.0,
			types.QualityBasic:    0.85,
		},
	}
}

// Bulk discount tiers: inclusive lower bounds, highest applicable tier only.
var bulkTiers = []struct {
	minQty   float64
	discount float64
}{
	{1000, 0.10},
	{500, 0.08},
	{100, 0.05},
}

// seasonalFactor clamp bounds and history depth.
const (
	seasonalMin    = 0.9
	seasonalMax    = 1.15
	seasonalWindow = 30
)

// Params is one price-suggestion request.
type Params struct {
	MilletType string  `json:"milletType"`
	Quantity   float64 `json:"quantity"`
	Location   string  `json:"location"`
	Quality    string  `json:"quality"`
}

// Breakdown exposes every intermediate factor; the engine's contract is full
// transparency of its arithmetic.
type Breakdown struct {
	BasePrice      float64 `json:"basePrice"`
	LocationFactor float64 `json:"locationFactor"`
	QualityFactor  float64 `json:"qualityFactor"`
	BulkDiscount   string  `json:"bulkDiscount"`
	SeasonalFactor float64 `json:"seasonalFactor"`
}

// Suggestion is the deterministic pricing result.
type Suggestion struct {
	MilletType     string    `json:"milletType"`
	Quantity       float64   `json:"quantity"`
	Location       string    `json:"location"`
	Quality        string    `json:"quality"`
	SuggestedPrice float64   `json:"suggestedPrice"`
	TotalCost      float64   `json:"totalCost"`
	PriceBreakdown Breakdown `json:"priceBreakdown"`
	SampleCount    int       `json:"sampleCount"`
	Recommendation string    `json:"recommendation"`
}

// Engine computes deterministic price suggestions from immutable tables.
type Engine struct {
	tables Tables
}

// New creates a price engine over the given tables. Zero-valued tables fall
// back to the defaults.
func New(tables Tables) *Engine {
	if tables.BasePrices == nil {
		tables = DefaultTables()
	}
	return &Engine{tables: tables}
}

// SuggestPrice resolves base price, location and quality factors, applies the
// bulk discount tier and a seasonal factor from the most recent history
// samples, and returns the full breakdown.
func (e *Engine) SuggestPrice(p Params, history []types.PriceSample) (*Suggestion, error) {
	if p.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %v", types.ErrInvalidInput, p.Quantity)
	}

	basePrice, ok := e.tables.BasePrices[p.MilletType]
	if !ok {
		basePrice = e.tables.FallbackBase
	}

	locationFactor, ok := e.tables.LocationFactors[p.Location]
	if !ok {
		locationFactor = e.tables.LocationFactors["Other"]
	}

	qualityFactor, ok := e.tables.QualityFactors[p.Quality]
	if !ok {
		qualityFactor = e.tables.QualityFactors[types.QualityStandard]
	}

	bulkDiscount := 0.0
	for _, tier := range bulkTiers {
		if p.Quantity >= tier.minQty {
			bulkDiscount = tier.discount
			break
		}
	}

	seasonalFactor, samples := e.seasonalFactor(p.MilletType, basePrice, history)

	price := basePrice * locationFactor * qualityFactor * seasonalFactor * (1 - bulkDiscount)
	price = stats.Round2(price)

	rec := "Consider ordering in bulk (>100kg) for better pricing"
	if bulkDiscount > 0 {
		rec = "Bulk discount applied - Good deal for large quantities!"
	}

	return &Suggestion{
		MilletType:     p.MilletType,
		Quantity:       p.Quantity,
		Location:       p.Location,
		Quality:        p.Quality,
		SuggestedPrice: price,
		TotalCost:      stats.Round2(price * p.Quantity),
		PriceBreakdown: Breakdown{
			BasePrice:      basePrice,
			LocationFactor: locationFactor,
			QualityFactor:  qualityFactor,
			BulkDiscount:   fmt.Sprintf("%g%%", bulkDiscount*100),
			SeasonalFactor: stats.Round2(seasonalFactor),
		},
		SampleCount:    samples,
		Recommendation: rec,
	}, nil
}

// seasonalFactor averages the most recent <=30 samples for the crop and
// divides by base price, clamped to [0.9, 1.15]. No samples means 1.0.
func (e *Engine) seasonalFactor(milletType string, basePrice float64, history []types.PriceSample) (float64, int) {
	recent := make([]types.PriceSample, 0, len(history))
	for _, s := range history {
		if s.MilletType == milletType {
			recent = append(recent, s)
		}
	}
	if len(recent) == 0 || basePrice == 0 {
		return 1.0, len(recent)
	}

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if len(recent) > seasonalWindow {
		recent = recent[:seasonalWindow]
	}

	prices := make([]float64, 0, len(recent))
	for _, s := range recent {
		prices = append(prices, s.Price)
	}

	factor := stats.Mean(prices) / basePrice
	if factor < seasonalMin {
		factor = seasonalMin
	}
	if factor > seasonalMax {
		factor = seasonalMax
	}
	return factor, len(recent)
}
