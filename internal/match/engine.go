package match

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/stats"
	"millet-market-engine/internal/types"
)

// FarmerLookup resolves farmer profiles for credibility scoring. A nil
// profile with nil error means the farmer is unknown.
type FarmerLookup interface {
	Lookup(ctx context.Context, farmerID string) (*types.FarmerProfile, error)
}

// Reasons explains a match in terms reconstructable from the same inputs
// that produced the score.
type Reasons struct {
	Quality   string `json:"quality"`
	Price     string `json:"price"`
	Freshness string `json:"freshness"`
	Seller    string `json:"seller"`
}

// Result is one matched listing.
type Result struct {
	ListingID         string    `json:"listingId"`
	FarmerID          string    `json:"farmerId"`
	FarmerName        string    `json:"farmerName"`
	FarmerPhone       string    `json:"farmerPhone,omitempty"`
	MilletType        string    `json:"milletType"`
	Quality           string    `json:"quality"`
	Quantity          float64   `json:"quantity"`
	Unit              string    `json:"unit,omitempty"`
	PricePerKg        float64   `json:"pricePerKg"`
	TotalPrice        float64   `json:"totalPrice"`
	Location          string    `json:"location"`
	Taluk             string    `json:"taluk"`
	HarvestDate       time.Time `json:"harvestDate"`
	DaysOld           int       `json:"daysOld"`
	MatchScore        int       `json:"matchScore"`
	FarmerCredibility int       `json:"farmerCredibility"`
	MatchReasons      Reasons   `json:"matchReasons"`
}

// PriceRange summarizes prices across all surviving matches.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Statistics covers all surviving matches, not just the returned top 10.
type Statistics struct {
	TotalMatches       int         `json:"totalMatches"`
	AverageMatchScore  float64     `json:"averageMatchScore"`
	PriceRange         *PriceRange `json:"priceRange"`
	QualitiesAvailable []string    `json:"qualitiesAvailable"`
	MilletsAvailable   []string    `json:"milletsAvailable"`
}

// Report is the full matching result.
type Report struct {
	MatchesFound   int        `json:"matchesFound"`
	TopMatches     []Result   `json:"topMatches"`
	Statistics     Statistics `json:"statistics"`
	Message        string     `json:"message"`
	Recommendation string     `json:"recommendation"`
}

// defaultTolerancePct applies when preferences carry no tolerance.
const defaultTolerancePct = 10.0

// Engine filters and ranks listings against buyer preferences.
type Engine struct {
	farmers FarmerLookup
}

// New creates a match engine. farmers may be nil; every listing then gets
// the default credibility.
func New(farmers FarmerLookup) *Engine {
	return &Engine{farmers: farmers}
}

// FindMatches re-validates verified+active status, applies the tolerance
// window around the target price plus the optional exclusionary filters, and
// ranks survivors by price closeness. The top 10 are returned with
// statistics over all survivors.
func (e *Engine) FindMatches(ctx context.Context, listings []types.Listing, prefs types.MatchPreferences, now time.Time) (*Report, error) {
	if prefs.MaxPrice <= 0 {
		return nil, fmt.Errorf("%w: maxPrice must be positive", types.ErrInvalidInput)
	}
	switch prefs.PreferredQuality {
	case types.QualityBasic, types.QualityStandard, types.QualityPremium:
	default:
		return nil, fmt.Errorf("%w: preferredQuality must be Basic, Standard or Premium", types.ErrInvalidInput)
	}

	tolerance := defaultTolerancePct
	if prefs.PriceTolerancePct != nil {
		tolerance = clamp(*prefs.PriceTolerancePct, 0, 100)
	}
	minAllowed := prefs.MaxPrice * (1 - tolerance/100)
	maxAllowed := prefs.MaxPrice * (1 + tolerance/100)

	allowedCrops := map[string]struct{}{}
	for _, t := range prefs.MilletTypes {
		t = strings.TrimSpace(t)
		if t != "" {
			allowedCrops[t] = struct{}{}
		}
	}

	minCredibility := -1.0
	if prefs.MinFarmerCredibility != nil {
		minCredibility = clamp(*prefs.MinFarmerCredibility, 0, 100)
	}

	wantLocation := strings.ToLower(strings.TrimSpace(prefs.Location))
	wantTaluk := strings.ToLower(strings.TrimSpace(prefs.Taluk))
	requiredRank := types.QualityRank(prefs.PreferredQuality)

	// Credibility cache is scoped to this run only.
	credCache := map[string]float64{}

	matches := []Result{}
	for _, l := range listings {
		// Upstream filtering is never trusted.
		if l.VerificationStatus != types.VerificationVerified || l.Status != types.ListingActive {
			continue
		}
		if len(allowedCrops) > 0 {
			if _, ok := allowedCrops[l.MilletType]; !ok {
				continue
			}
		}
		if l.PricePerKg < minAllowed || l.PricePerKg > maxAllowed {
			continue
		}
		if prefs.MinQuantity > 0 && l.Quantity < prefs.MinQuantity {
			continue
		}
		if wantLocation != "" && !strings.Contains(strings.ToLower(l.Location), wantLocation) {
			continue
		}
		if wantTaluk != "" && !strings.Contains(strings.ToLower(l.Taluk), wantTaluk) {
			continue
		}

		credibility := e.credibility(ctx, l.FarmerID, credCache)
		if minCredibility >= 0 && credibility < minCredibility {
			continue
		}

		listingQuality := l.Quality
		if listingQuality == "" {
			listingQuality = types.QualityStandard
		}
		if !prefs.AllowLowerQuality && types.QualityRank(listingQuality) < requiredRank {
			continue
		}

		daysOld := 0
		if !l.HarvestDate.IsZero() {
			daysOld = int(now.Sub(l.HarvestDate).Hours() / 24)
		}
		if prefs.MaxAgeDays != nil && daysOld > *prefs.MaxAgeDays {
			continue
		}

		score := matchScore(prefs.MaxPrice, l.PricePerKg, tolerance)

		freshness := fmt.Sprintf("Harvested %d days ago", daysOld)
		if daysOld <= 30 {
			freshness = "Recently harvested"
		}

		matches = append(matches, Result{
			ListingID:         l.ID,
			FarmerID:          l.FarmerID,
			FarmerName:        l.FarmerName,
			FarmerPhone:       l.FarmerPhone,
			MilletType:        l.MilletType,
			Quality:           l.Quality,
			Quantity:          l.Quantity,
			Unit:              l.Unit,
			PricePerKg:        l.PricePerKg,
			TotalPrice:        l.Quantity * l.PricePerKg,
			Location:          l.Location,
			Taluk:             l.Taluk,
			HarvestDate:       l.HarvestDate,
			DaysOld:           daysOld,
			MatchScore:        score,
			FarmerCredibility: int(math.Round(credibility)),
			MatchReasons: Reasons{
				Quality:   fmt.Sprintf("%s quality matches your %s preference", listingQuality, prefs.PreferredQuality),
				Price:     fmt.Sprintf("₹%g/kg - within %g%% of ₹%g/kg", l.PricePerKg, tolerance, math.Round(prefs.MaxPrice)),
				Freshness: freshness,
				Seller:    fmt.Sprintf("Farmer rating: %d/100", int(math.Round(credibility))),
			},
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchScore > matches[j].MatchScore })

	top := matches
	if len(top) > 10 {
		top = top[:10]
	}

	report := &Report{
		MatchesFound: len(matches),
		TopMatches:   append([]Result{}, top...),
		Statistics:   buildStatistics(matches),
	}
	if len(matches) > 0 {
		report.Message = fmt.Sprintf("Found %d products matching your requirements", len(matches))
		best := top[0]
		report.Recommendation = fmt.Sprintf("Top match: %s's %s at ₹%g/kg (%d%% match)", best.FarmerName, best.MilletType, best.PricePerKg, best.MatchScore)
	} else {
		report.Message = "No products match your criteria. Try adjusting your preferences."
		report.Recommendation = "No matches available"
	}
	return report, nil
}

// matchScore maps price closeness to 0-100. With zero tolerance the score is
// binary: exact price or nothing.
func matchScore(maxPrice, price, tolerance float64) int {
	if tolerance == 0 {
		if price == maxPrice {
			return 100
		}
		return 0
	}
	deviation := math.Abs(maxPrice-price) / maxPrice
	return int(math.Round(clamp(100-deviation*50, 0, 100)))
}

func (e *Engine) credibility(ctx context.Context, farmerID string, cache map[string]float64) float64 {
	if farmerID == "" || e.farmers == nil {
		return types.DefaultCredibility
	}
	if score, ok := cache[farmerID]; ok {
		return score
	}
	score := types.DefaultCredibility
	profile, err := e.farmers.Lookup(ctx, farmerID)
	if err != nil {
		logger.Debug(ctx, "Could not fetch farmer profile", "farmer_id", farmerID, "error", err)
	} else if profile != nil && profile.CredibilityScore > 0 {
		score = profile.CredibilityScore
	}
	cache[farmerID] = score
	return score
}

func buildStatistics(matches []Result) Statistics {
	st := Statistics{
		TotalMatches:       len(matches),
		QualitiesAvailable: []string{},
		MilletsAvailable:   []string{},
	}
	if len(matches) == 0 {
		return st
	}

	scores := make([]float64, 0, len(matches))
	prices := make([]float64, 0, len(matches))
	seenQuality := map[string]struct{}{}
	seenCrop := map[string]struct{}{}
	for _, m := range matches {
		scores = append(scores, float64(m.MatchScore))
		prices = append(prices, m.PricePerKg)
		if _, ok := seenQuality[m.Quality]; !ok {
			seenQuality[m.Quality] = struct{}{}
			st.QualitiesAvailable = append(st.QualitiesAvailable, m.Quality)
		}
		if _, ok := seenCrop[m.MilletType]; !ok {
			seenCrop[m.MilletType] = struct{}{}
			st.MilletsAvailable = append(st.MilletsAvailable, m.MilletType)
		}
	}

	st.AverageMatchScore = math.Round(stats.Mean(scores))
	st.PriceRange = &PriceRange{
		Min: stats.Min(prices),
		Max: stats.Max(prices),
		Avg: math.Round(stats.Mean(prices)),
	}
	return st
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
