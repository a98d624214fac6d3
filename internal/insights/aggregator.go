package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"millet-market-engine/internal/stats"
	"millet-market-engine/internal/types"
)

// TrendingCropEntry describes a crop's order activity inside the trailing
// trend window.
type TrendingCropEntry struct {
	Name             string  `json:"name"`
	OrderCount       int     `json:"orderCount"`
	Trend            string  `json:"trend"`
	AvgPrice         float64 `json:"avgPrice"`
	GrowthPercentage int     `json:"growthPercentage"`
	ListingsCount    int     `json:"listingsCount"`
}

// MostSoldCropEntry ranks a crop by total quantity sold across all orders.
type MostSoldCropEntry struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"totalQuantity"`
	Unit          string  `json:"unit"`
	TotalValue    float64 `json:"totalValue"`
	OrderCount    int     `json:"orderCount"`
	AvgOrderSize  float64 `json:"avgOrderSize"`
	Consumers     int     `json:"consumers"`
}

// HighestTradeEntry is one order ranked by total trade value.
type HighestTradeEntry struct {
	Rank       int       `json:"rank"`
	OrderID    string    `json:"orderId"`
	CropType   string    `json:"cropType"`
	Quantity   float64   `json:"quantity"`
	PricePerKg float64   `json:"pricePerKg"`
	TotalValue float64   `json:"totalValue"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
	ConsumerID string    `json:"consumerId"`
	FarmerID   string    `json:"farmerId"`
}

// PriceTrendEntry summarizes listing prices for one crop.
type PriceTrendEntry struct {
	Crop            string  `json:"crop"`
	CurrentAvgPrice float64 `json:"currentAvgPrice"`
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	Volatility      float64 `json:"volatility"`
	PriceRange      float64 `json:"priceRange"`
	ListingCount    int     `json:"listingCount"`
}

// PriceAnalysis carries overall market pricing plus per-crop trends.
type PriceAnalysis struct {
	OverallAvgPrice float64           `json:"overallAvgPrice"`
	HighestPrice    float64           `json:"highestPrice"`
	LowestPrice     float64           `json:"lowestPrice"`
	PriceRange      float64           `json:"priceRange"`
	CropPriceTrends []PriceTrendEntry `json:"cropPriceTrends"`
}

// PeakHourEntry is one hour-of-day demand bucket.
type PeakHourEntry struct {
	Hour   int    `json:"hour"`
	Orders int    `json:"orders"`
	Period string `json:"period"`
}

// PeakDayEntry is one day-of-week demand bucket.
type PeakDayEntry struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

// WeekTrendEntry is one trailing-week bucket; Week 0 is the current week,
// negative values count weeks back.
type WeekTrendEntry struct {
	Week   int `json:"week"`
	Orders int `json:"orders"`
}

// DemandPatterns buckets order timestamps by hour, weekday, and trailing week.
type DemandPatterns struct {
	PeakHours   []PeakHourEntry  `json:"peakHours"`
	PeakDays    []PeakDayEntry   `json:"peakDays"`
	WeeklyTrend []WeekTrendEntry `json:"weeklyTrend"`
}

// ProductVolatilityEntry is the price spread profile of one product.
type ProductVolatilityEntry struct {
	Product      string  `json:"product"`
	Volatility   float64 `json:"volatility"`
	AvgPrice     float64 `json:"avgPrice"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	PriceChanges int     `json:"priceChanges"`
}

// MarketVolatility ranks products by coefficient of variation.
type MarketVolatility struct {
	OverallVolatility float64                  `json:"overallVolatility"`
	VolatileProducts  []ProductVolatilityEntry `json:"volatileProducts"`
	StableProducts    []ProductVolatilityEntry `json:"stableProducts"`
}

// TopFarmerEntry ranks a farmer by revenue across all their orders.
type TopFarmerEntry struct {
	Rank              int     `json:"rank"`
	FarmerID          string  `json:"farmerId"`
	Name              string  `json:"name"`
	TotalOrders       int     `json:"totalOrders"`
	TotalQuantitySold float64 `json:"totalQuantitySold"`
	TotalRevenue      float64 `json:"totalRevenue"`
	UniqueCrops       int     `json:"uniqueCrops"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
}

// RegionEntry merges listing supply and order demand for one region.
type RegionEntry struct {
	Region          string  `json:"region"`
	Listings        int     `json:"listings"`
	Farmers         int     `json:"farmers"`
	Crops           int     `json:"crops"`
	Orders          int     `json:"orders"`
	TotalTradeValue float64 `json:"totalTradeValue"`
}

// SeasonalEntry is one calendar year-month bucket.
type SeasonalEntry struct {
	Key         string  `json:"key"`
	Month       string  `json:"month"`
	Orders      int     `json:"orders"`
	Quantity    float64 `json:"quantity"`
	Revenue     float64 `json:"revenue"`
	UniqueCrops int     `json:"uniqueCrops"`
}

// Summary is a single-shot marketplace snapshot.
type Summary struct {
	TotalListings     int     `json:"totalListings"`
	ActiveListings    int     `json:"activeListings"`
	TotalOrders       int     `json:"totalOrders"`
	CompletedOrders   int     `json:"completedOrders"`
	ActiveOrders      int     `json:"activeOrders"`
	CancelledOrders   int     `json:"cancelledOrders"`
	TotalQuantitySold float64 `json:"totalQuantitySold"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalCrops        int     `json:"totalCrops"`
	UniqueFarmers     int     `json:"uniqueFarmers"`
	UniqueConsumers   int     `json:"uniqueConsumers"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	AveragePrice      float64 `json:"averagePrice"`
}

// DefaultTrendWindowDays is the trailing window used for trending crops.
const DefaultTrendWindowDays = 30

// TrendingCrops counts orders per crop inside the trailing window, ranks the
// top 5, and annotates each with the average listing price and a naive growth
// percentage (share of window orders). Ties keep input order.
func TrendingCrops(orders []types.Order, listings []types.Listing, now time.Time, windowDays int) []TrendingCropEntry {
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}
	windowStart := now.AddDate(0, 0, -windowDays)

	counts := map[string]int{}
	keys := []string{}
	windowTotal := 0
	for _, o := range orders {
		if !o.CreatedAt.After(windowStart) {
			continue
		}
		windowTotal++
		crop := types.CropName(o.MilletType)
		if _, seen := counts[crop]; !seen {
			keys = append(keys, crop)
		}
		counts[crop]++
	}

	sort.SliceStable(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	if len(keys) > 5 {
		keys = keys[:5]
	}

	out := make([]TrendingCropEntry, 0, len(keys))
	for _, crop := range keys {
		prices := []float64{}
		related := 0
		for _, l := range listings {
			if types.CropName(l.MilletType) == crop {
				related++
				prices = append(prices, l.PricePerKg)
			}
		}
		avgPrice := 0.0
		if len(prices) > 0 {
			avgPrice = stats.Round2(stats.Mean(prices))
		}
		growth := 0
		if windowTotal > 0 {
			growth = int(math.Round(float64(counts[crop]) / float64(windowTotal) * 100))
		}
		out = append(out, TrendingCropEntry{
			Name:             crop,
			OrderCount:       counts[crop],
			Trend:            "Upward",
			AvgPrice:         avgPrice,
			GrowthPercentage: growth,
			ListingsCount:    related,
		})
	}
	return out
}

// MostSoldCrops sums quantity per crop across all orders and ranks the top 8.
func MostSoldCrops(orders []types.Order, listings []types.Listing) []MostSoldCropEntry {
	_ = listings // reserved: listing metadata does not change the ranking

	qty := map[string]float64{}
	keys := []string{}
	for _, o := range orders {
		crop := types.CropName(o.MilletType)
		if _, seen := qty[crop]; !seen {
			keys = append(keys, crop)
		}
		qty[crop] += o.Quantity
	}

	sort.SliceStable(keys, func(i, j int) bool { return qty[keys[i]] > qty[keys[j]] })
	if len(keys) > 8 {
		keys = keys[:8]
	}

	out := make([]MostSoldCropEntry, 0, len(keys))
	for i, crop := range keys {
		totalValue := 0.0
		orderCount := 0
		buyers := map[string]struct{}{}
		for _, o := range orders {
			if types.CropName(o.MilletType) != crop {
				continue
			}
			orderCount++
			totalValue += o.TotalValue()
			buyers[o.BuyerID] = struct{}{}
		}
		avgOrder := 0.0
		if orderCount > 0 {
			avgOrder = math.Round(qty[crop] / float64(orderCount))
		}
		out = append(out, MostSoldCropEntry{
			Rank:          i + 1,
			Name:          crop,
			TotalQuantity: math.Round(qty[crop]),
			Unit:          "kg",
			TotalValue:    math.Round(totalValue),
			OrderCount:    orderCount,
			AvgOrderSize:  avgOrder,
			Consumers:     len(buyers),
		})
	}
	return out
}

// HighestTrades ranks non-cancelled orders by total value, top 10.
func HighestTrades(orders []types.Order) []HighestTradeEntry {
	trades := make([]HighestTradeEntry, 0, len(orders))
	for _, o := range orders {
		if o.Status == types.OrderCancelled {
			continue
		}
		trades = append(trades, HighestTradeEntry{
			OrderID:    o.ID,
			CropType:   o.MilletType,
			Quantity:   o.Quantity,
			PricePerKg: o.PricePerKg,
			TotalValue: o.TotalValue(),
			Status:     o.Status,
			Date:       o.CreatedAt,
			ConsumerID: o.BuyerID,
			FarmerID:   o.FarmerID,
		})
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].TotalValue > trades[j].TotalValue })
	if len(trades) > 10 {
		trades = trades[:10]
	}
	for i := range trades {
		trades[i].Rank = i + 1
	}
	return trades
}

// ComputePriceAnalysis summarizes listing prices per crop plus overall
// market stats over positive prices.
func ComputePriceAnalysis(listings []types.Listing, history []types.PriceSample) PriceAnalysis {
	_ = history // volatility ranking over history lives in ComputeMarketVolatility

	cropPrices := map[string][]float64{}
	keys := []string{}
	positive := []float64{}
	for _, l := range listings {
		crop := types.CropName(l.MilletType)
		if _, seen := cropPrices[crop]; !seen {
			keys = append(keys, crop)
		}
		cropPrices[crop] = append(cropPrices[crop], l.PricePerKg)
		if l.PricePerKg > 0 {
			positive = append(positive, l.PricePerKg)
		}
	}

	trends := make([]PriceTrendEntry, 0, len(keys))
	for _, crop := range keys {
		prices := cropPrices[crop]
		avg := stats.Mean(prices)
		min, max := stats.Min(prices), stats.Max(prices)
		volatility := 0.0
		if avg != 0 {
			volatility = stats.Round2((max - min) / avg * 100)
		}
		trends = append(trends, PriceTrendEntry{
			Crop:            crop,
			CurrentAvgPrice: stats.Round2(avg),
			MinPrice:        stats.Round2(min),
			MaxPrice:        stats.Round2(max),
			Volatility:      volatility,
			PriceRange:      stats.Round2(max - min),
			ListingCount:    len(prices),
		})
	}
	sort.SliceStable(trends, func(i, j int) bool { return trends[i].CurrentAvgPrice > trends[j].CurrentAvgPrice })

	analysis := PriceAnalysis{CropPriceTrends: trends}
	if len(positive) > 0 {
		analysis.OverallAvgPrice = stats.Round2(stats.Mean(positive))
		analysis.HighestPrice = stats.Max(positive)
		analysis.LowestPrice = stats.Min(positive)
		analysis.PriceRange = stats.Round2(analysis.HighestPrice - analysis.LowestPrice)
	}
	return analysis
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ComputeDemandPatterns buckets orders by hour-of-day, day-of-week, and
// trailing-week index. Orders stamped after now are dropped as bad data.
// The weekly series is a zero-filled 12-point run, oldest week first.
func ComputeDemandPatterns(orders []types.Order, now time.Time) DemandPatterns {
	byHour := map[int]int{}
	byDay := map[int]int{}
	byWeek := map[int]int{}

	for _, o := range orders {
		if o.CreatedAt.After(now) {
			continue
		}
		byHour[o.CreatedAt.Hour()]++
		byDay[int(o.CreatedAt.Weekday())]++
		week := int(now.Sub(o.CreatedAt) / (7 * 24 * time.Hour))
		if week < 12 {
			byWeek[week]++
		}
	}

	hours := []PeakHourEntry{}
	for h := 0; h < 24; h++ {
		if byHour[h] > 0 {
			hours = append(hours, PeakHourEntry{Hour: h, Orders: byHour[h], Period: fmt.Sprintf("%d:00-%d:59", h, h)})
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Orders > hours[j].Orders })
	if len(hours) > 3 {
		hours = hours[:3]
	}

	days := []PeakDayEntry{}
	for d := 0; d < 7; d++ {
		if byDay[d] > 0 {
			days = append(days, PeakDayEntry{Day: dayNames[d], Orders: byDay[d]})
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Orders > days[j].Orders })

	weekly := make([]WeekTrendEntry, 0, 12)
	for w := 11; w >= 0; w-- {
		weekly = append(weekly, WeekTrendEntry{Week: -w, Orders: byWeek[w]})
	}

	return DemandPatterns{PeakHours: hours, PeakDays: days, WeeklyTrend: weekly}
}

// ComputeMarketVolatility groups samples by product and ranks coefficient of
// variation. Products with fewer than 2 samples have no meaningful spread and
// are excluded from the ranking.
func ComputeMarketVolatility(history []types.PriceSample) MarketVolatility {
	byProduct := map[string][]float64{}
	keys := []string{}
	for _, s := range history {
		product := types.CropName(s.MilletType)
		if _, seen := byProduct[product]; !seen {
			keys = append(keys, product)
		}
		byProduct[product] = append(byProduct[product], s.Price)
	}

	entries := []ProductVolatilityEntry{}
	for _, product := range keys {
		prices := byProduct[product]
		if len(prices) < 2 {
			continue
		}
		entries = append(entries, ProductVolatilityEntry{
			Product:      product,
			Volatility:   stats.Round2(stats.CoV(prices)),
			AvgPrice:     stats.Round2(stats.Mean(prices)),
			MinPrice:     stats.Min(prices),
			MaxPrice:     stats.Max(prices),
			PriceChanges: len(prices),
		})
	}
	if len(entries) == 0 {
		return MarketVolatility{VolatileProducts: []ProductVolatilityEntry{}, StableProducts: []ProductVolatilityEntry{}}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Volatility > entries[j].Volatility })

	overall := 0.0
	for _, e := range entries {
		overall += e.Volatility
	}
	overall = stats.Round2(overall / float64(len(entries)))

	volatile := entries
	if len(volatile) > 5 {
		volatile = volatile[:5]
	}
	tail := entries
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	stable := make([]ProductVolatilityEntry, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		stable = append(stable, tail[i])
	}

	return MarketVolatility{
		OverallVolatility: overall,
		VolatileProducts:  append([]ProductVolatilityEntry{}, volatile...),
		StableProducts:    stable,
	}
}

// TopFarmers aggregates orders per farmer and ranks the top 5 by revenue.
// Display names come from any listing by the same farmer.
func TopFarmers(orders []types.Order, listings []types.Listing) []TopFarmerEntry {
	type farmerAgg struct {
		orders   int
		quantity float64
		revenue  float64
		crops    map[string]struct{}
		name     string
	}

	byFarmer := map[string]*farmerAgg{}
	keys := []string{}
	for _, o := range orders {
		id := o.FarmerID
		if id == "" {
			id = "Unknown"
		}
		agg, ok := byFarmer[id]
		if !ok {
			agg = &farmerAgg{crops: map[string]struct{}{}}
			byFarmer[id] = agg
			keys = append(keys, id)
		}
		agg.orders++
		agg.quantity += o.Quantity
		agg.revenue += o.TotalValue()
		agg.crops[types.CropName(o.MilletType)] = struct{}{}
	}

	for _, l := range listings {
		if agg, ok := byFarmer[l.FarmerID]; ok && agg.name == "" {
			if l.FarmerName != "" {
				agg.name = l.FarmerName
			} else {
				agg.name = l.FarmerID
			}
		}
	}

	sort.SliceStable(keys, func(i, j int) bool { return byFarmer[keys[i]].revenue > byFarmer[keys[j]].revenue })
	if len(keys) > 5 {
		keys = keys[:5]
	}

	out := make([]TopFarmerEntry, 0, len(keys))
	for i, id := range keys {
		agg := byFarmer[id]
		name := agg.name
		if name == "" {
			short := id
			if len(short) > 8 {
				short = short[:8]
			}
			name = "Farmer " + short
		}
		out = append(out, TopFarmerEntry{
			Rank:              i + 1,
			FarmerID:          id,
			Name:              name,
			TotalOrders:       agg.orders,
			TotalQuantitySold: math.Round(agg.quantity),
			TotalRevenue:      math.Round(agg.revenue),
			UniqueCrops:       len(agg.crops),
			AvgOrderValue:     math.Round(agg.revenue / float64(agg.orders)),
		})
	}
	return out
}

// RegionalInsights merges listing supply with order demand per region and
// ranks the top 5 regions by order count.
func RegionalInsights(orders []types.Order, listings []types.Listing) []RegionEntry {
	type regionAgg struct {
		listings   int
		farmers    map[string]struct{}
		crops      map[string]struct{}
		orders     int
		totalValue float64
	}

	byRegion := map[string]*regionAgg{}
	keys := []string{}
	get := func(region string) *regionAgg {
		if region == "" {
			region = "Unknown"
		}
		agg, ok := byRegion[region]
		if !ok {
			agg = &regionAgg{farmers: map[string]struct{}{}, crops: map[string]struct{}{}}
			byRegion[region] = agg
			keys = append(keys, region)
		}
		return agg
	}

	for _, l := range listings {
		agg := get(l.Region)
		agg.listings++
		agg.farmers[l.FarmerID] = struct{}{}
		agg.crops[types.CropName(l.MilletType)] = struct{}{}
	}
	for _, o := range orders {
		agg := get(o.Region)
		agg.orders++
		agg.totalValue += o.TotalValue()
	}

	sort.SliceStable(keys, func(i, j int) bool { return byRegion[keys[i]].orders > byRegion[keys[j]].orders })
	if len(keys) > 5 {
		keys = keys[:5]
	}

	out := make([]RegionEntry, 0, len(keys))
	for _, region := range keys {
		agg := byRegion[region]
		out = append(out, RegionEntry{
			Region:          region,
			Listings:        agg.listings,
			Farmers:         len(agg.farmers),
			Crops:           len(agg.crops),
			Orders:          agg.orders,
			TotalTradeValue: math.Round(agg.totalValue),
		})
	}
	return out
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// SeasonalTrends buckets orders by calendar year-month, reverse-chronological.
// Orders stamped after now are dropped.
func SeasonalTrends(orders []types.Order, now time.Time) []SeasonalEntry {
	type monthAgg struct {
		orders   int
		quantity float64
		revenue  float64
		crops    map[string]struct{}
	}

	byMonth := map[string]*monthAgg{}
	keys := []string{}
	for _, o := range orders {
		if o.CreatedAt.After(now) {
			continue
		}
		key := o.CreatedAt.Format("2006-01")
		agg, ok := byMonth[key]
		if !ok {
			agg = &monthAgg{crops: map[string]struct{}{}}
			byMonth[key] = agg
			keys = append(keys, key)
		}
		agg.orders++
		agg.quantity += o.Quantity
		agg.revenue += o.TotalValue()
		agg.crops[types.CropName(o.MilletType)] = struct{}{}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]SeasonalEntry, 0, len(keys))
	for _, key := range keys {
		agg := byMonth[key]
		t, _ := time.Parse("2006-01", key)
		out = append(out, SeasonalEntry{
			Key:         key,
			Month:       monthNames[int(t.Month())-1],
			Orders:      agg.orders,
			Quantity:    math.Round(agg.quantity),
			Revenue:     math.Round(agg.revenue),
			UniqueCrops: len(agg.crops),
		})
	}
	return out
}

// ComputeSummary produces the single-shot marketplace snapshot. Revenue and
// quantity exclude cancelled orders; average order value divides by
// completed (delivered) orders.
func ComputeSummary(orders []types.Order, listings []types.Listing) Summary {
	s := Summary{TotalListings: len(listings), TotalOrders: len(orders)}

	crops := map[string]struct{}{}
	farmers := map[string]struct{}{}
	for _, l := range listings {
		if l.Status == types.ListingActive {
			s.ActiveListings++
		}
		crops[types.CropName(l.MilletType)] = struct{}{}
		farmers[l.FarmerID] = struct{}{}
	}

	consumers := map[string]struct{}{}
	totalRevenue, totalQuantity := 0.0, 0.0
	for _, o := range orders {
		consumers[o.BuyerID] = struct{}{}
		switch o.Status {
		case types.OrderCancelled:
			s.CancelledOrders++
			continue
		case types.OrderDelivered:
			s.CompletedOrders++
		}
		s.ActiveOrders++
		totalRevenue += o.TotalValue()
		totalQuantity += o.Quantity
	}

	prices := []float64{}
	for _, l := range listings {
		if l.PricePerKg > 0 {
			prices = append(prices, l.PricePerKg)
		}
	}

	s.TotalQuantitySold = math.Round(totalQuantity)
	s.TotalRevenue = math.Round(totalRevenue)
	s.TotalCrops = len(crops)
	s.UniqueFarmers = len(farmers)
	s.UniqueConsumers = len(consumers)
	if s.CompletedOrders > 0 {
		s.AverageOrderValue = math.Round(totalRevenue / float64(s.CompletedOrders))
	}
	if len(prices) > 0 {
		s.AveragePrice = stats.Round2(stats.Mean(prices))
	}
	return s
}
