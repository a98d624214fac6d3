package insights

import (
	"testing"
	"time"

	"millet-market-engine/internal/types"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestTrendingCrops(t *testing.T) {
	orders := []types.Order{
		{ID: "o1", MilletType: "Finger Millet", CreatedAt: testNow.AddDate(0, 0, -5)},
		{ID: "o2", MilletType: "Finger Millet", CreatedAt: testNow.AddDate(0, 0, -10)},
		{ID: "o3", MilletType: "Pearl Millet", CreatedAt: testNow.AddDate(0, 0, -2)},
		{ID: "o4", MilletType: "Foxtail Millet", CreatedAt: testNow.AddDate(0, 0, -60)}, // outside window
	}
	listings := []types.Listing{
		{MilletType: "Finger Millet", PricePerKg: 40},
		{MilletType: "Finger Millet", PricePerKg: 50},
	}

	got := TrendingCrops(orders, listings, testNow, 30)
	if len(got) != 2 {
		t.Fatalf("Expected 2 trending crops, got %d", len(got))
	}

	top := got[0]
	if top.Name != "Finger Millet" {
		t.Errorf("Expected Finger Millet on top, got %s", top.Name)
	}
	if top.OrderCount != 2 {
		t.Errorf("Expected 2 orders, got %d", top.OrderCount)
	}
	if top.GrowthPercentage != 67 {
		t.Errorf("Expected growth 67, got %d", top.GrowthPercentage)
	}
	if top.AvgPrice != 45 {
		t.Errorf("Expected avg price 45, got %f", top.AvgPrice)
	}
	if top.ListingsCount != 2 {
		t.Errorf("Expected 2 listings, got %d", top.ListingsCount)
	}
	if got[1].GrowthPercentage != 33 {
		t.Errorf("Expected growth 33 for Pearl Millet, got %d", got[1].GrowthPercentage)
	}
}

func TestTrendingCropsEmpty(t *testing.T) {
	got := TrendingCrops(nil, nil, testNow, 30)
	if len(got) != 0 {
		t.Errorf("Expected no trending crops, got %d", len(got))
	}
}

func TestMostSoldCrops(t *testing.T) {
	orders := []types.Order{
		{MilletType: "Finger Millet", Quantity: 60, PricePerKg: 40, BuyerID: "b1"},
		{MilletType: "Finger Millet", Quantity: 40, PricePerKg: 50, BuyerID: "b2"},
		{MilletType: "Pearl Millet", Quantity: 30, PricePerKg: 35, BuyerID: "b1"},
	}

	got := MostSoldCrops(orders, nil)
	if len(got) != 2 {
		t.Fatalf("Expected 2 crops, got %d", len(got))
	}

	top := got[0]
	if top.Rank != 1 || top.Name != "Finger Millet" {
		t.Errorf("Expected Finger Millet at rank 1, got %+v", top)
	}
	if top.TotalQuantity != 100 {
		t.Errorf("Expected total quantity 100, got %f", top.TotalQuantity)
	}
	if top.TotalValue != 4400 {
		t.Errorf("Expected total value 4400, got %f", top.TotalValue)
	}
	if top.AvgOrderSize != 50 {
		t.Errorf("Expected avg order size 50, got %f", top.AvgOrderSize)
	}
	if top.Consumers != 2 {
		t.Errorf("Expected 2 distinct consumers, got %d", top.Consumers)
	}
}

func TestHighestTradesExcludesCancelled(t *testing.T) {
	orders := []types.Order{
		{ID: "o1", Quantity: 10, PricePerKg: 40, Status: types.OrderDelivered},
		{ID: "o2", Quantity: 100, PricePerKg: 50, Status: types.OrderCancelled},
		{ID: "o3", Quantity: 20, PricePerKg: 45, Status: types.OrderPlaced},
	}

	got := HighestTrades(orders)
	if len(got) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(got))
	}
	if got[0].OrderID != "o3" || got[0].Rank != 1 {
		t.Errorf("Expected o3 at rank 1, got %+v", got[0])
	}
	if got[1].OrderID != "o1" || got[1].Rank != 2 {
		t.Errorf("Expected o1 at rank 2, got %+v", got[1])
	}
}

func TestComputePriceAnalysis(t *testing.T) {
	listings := []types.Listing{
		{MilletType: "Finger Millet", PricePerKg: 40},
		{MilletType: "Finger Millet", PricePerKg: 50},
		{MilletType: "Pearl Millet", PricePerKg: 30},
	}

	got := ComputePriceAnalysis(listings, nil)
	if got.OverallAvgPrice != 40 {
		t.Errorf("Expected overall avg 40, got %f", got.OverallAvgPrice)
	}
	if got.HighestPrice != 50 || got.LowestPrice != 30 {
		t.Errorf("Expected high 50 low 30, got %f and %f", got.HighestPrice, got.LowestPrice)
	}
	if got.PriceRange != 20 {
		t.Errorf("Expected range 20, got %f", got.PriceRange)
	}

	if len(got.CropPriceTrends) != 2 {
		t.Fatalf("Expected 2 crop trends, got %d", len(got.CropPriceTrends))
	}
	finger := got.CropPriceTrends[0]
	if finger.Crop != "Finger Millet" {
		t.Errorf("Expected Finger Millet first by avg price, got %s", finger.Crop)
	}
	if finger.CurrentAvgPrice != 45 {
		t.Errorf("Expected avg 45, got %f", finger.CurrentAvgPrice)
	}
	if finger.Volatility != 22.22 {
		t.Errorf("Expected volatility 22.22, got %f", finger.Volatility)
	}
}

func TestComputePriceAnalysisEmpty(t *testing.T) {
	got := ComputePriceAnalysis(nil, nil)
	if got.OverallAvgPrice != 0 || len(got.CropPriceTrends) != 0 {
		t.Errorf("Expected zero analysis for no listings, got %+v", got)
	}
}

func TestComputeDemandPatterns(t *testing.T) {
	orders := []types.Order{
		{CreatedAt: time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2026, 3, 6, 9, 30, 0, 0, time.UTC)},
		{CreatedAt: testNow.AddDate(0, 0, 1)}, // future record, dropped
	}

	got := ComputeDemandPatterns(orders, testNow)

	if len(got.PeakHours) != 2 {
		t.Fatalf("Expected 2 peak hours, got %d", len(got.PeakHours))
	}
	if got.PeakHours[0].Hour != 9 || got.PeakHours[0].Orders != 2 {
		t.Errorf("Expected hour 9 with 2 orders on top, got %+v", got.PeakHours[0])
	}

	if len(got.PeakDays) != 1 {
		t.Fatalf("Expected 1 peak day, got %d", len(got.PeakDays))
	}
	if got.PeakDays[0].Day != "Friday" || got.PeakDays[0].Orders != 3 {
		t.Errorf("Expected Friday with 3 orders, got %+v", got.PeakDays[0])
	}

	if len(got.WeeklyTrend) != 12 {
		t.Fatalf("Expected 12 weekly buckets, got %d", len(got.WeeklyTrend))
	}
	if got.WeeklyTrend[0].Week != -11 {
		t.Errorf("Expected oldest bucket first (week -11), got %d", got.WeeklyTrend[0].Week)
	}
	if got.WeeklyTrend[11].Week != 0 || got.WeeklyTrend[11].Orders != 2 {
		t.Errorf("Expected current week with 2 orders, got %+v", got.WeeklyTrend[11])
	}
	if got.WeeklyTrend[10].Orders != 1 {
		t.Errorf("Expected 1 order last week, got %d", got.WeeklyTrend[10].Orders)
	}
}

func TestComputeMarketVolatility(t *testing.T) {
	history := []types.PriceSample{
		{MilletType: "Finger Millet", Price: 40},
		{MilletType: "Finger Millet", Price: 60},
		{MilletType: "Pearl Millet", Price: 50}, // single sample, excluded
		{MilletType: "Kodo Millet", Price: 50},
		{MilletType: "Kodo Millet", Price: 50},
	}

	got := ComputeMarketVolatility(history)

	if len(got.VolatileProducts) != 2 {
		t.Fatalf("Expected 2 ranked products, got %d", len(got.VolatileProducts))
	}
	if got.VolatileProducts[0].Product != "Finger Millet" {
		t.Errorf("Expected Finger Millet most volatile, got %s", got.VolatileProducts[0].Product)
	}
	if got.VolatileProducts[0].Volatility != 20 {
		t.Errorf("Expected volatility 20, got %f", got.VolatileProducts[0].Volatility)
	}
	if got.StableProducts[0].Product != "Kodo Millet" {
		t.Errorf("Expected Kodo Millet most stable, got %s", got.StableProducts[0].Product)
	}
	if got.OverallVolatility != 10 {
		t.Errorf("Expected overall volatility 10, got %f", got.OverallVolatility)
	}
}

func TestComputeMarketVolatilityEmpty(t *testing.T) {
	got := ComputeMarketVolatility(nil)
	if got.OverallVolatility != 0 {
		t.Errorf("Expected 0 overall volatility, got %f", got.OverallVolatility)
	}
	if got.VolatileProducts == nil || got.StableProducts == nil {
		t.Error("Expected empty slices, not nil")
	}
}

func TestTopFarmers(t *testing.T) {
	orders := []types.Order{
		{FarmerID: "f1", MilletType: "Finger Millet", Quantity: 10, PricePerKg: 50},
		{FarmerID: "f1", MilletType: "Pearl Millet", Quantity: 20, PricePerKg: 40},
		{FarmerID: "f2", MilletType: "Finger Millet", Quantity: 5, PricePerKg: 45},
	}
	listings := []types.Listing{
		{FarmerID: "f1", FarmerName: "Manjunath"},
	}

	got := TopFarmers(orders, listings)
	if len(got) != 2 {
		t.Fatalf("Expected 2 farmers, got %d", len(got))
	}

	top := got[0]
	if top.FarmerID != "f1" || top.Rank != 1 {
		t.Errorf("Expected f1 at rank 1, got %+v", top)
	}
	if top.Name != "Manjunath" {
		t.Errorf("Expected listing name, got %q", top.Name)
	}
	if top.TotalRevenue != 1300 {
		t.Errorf("Expected revenue 1300, got %f", top.TotalRevenue)
	}
	if top.UniqueCrops != 2 {
		t.Errorf("Expected 2 unique crops, got %d", top.UniqueCrops)
	}
	if top.AvgOrderValue != 650 {
		t.Errorf("Expected avg order value 650, got %f", top.AvgOrderValue)
	}

	if got[1].Name != "Farmer f2" {
		t.Errorf("Expected fallback name 'Farmer f2', got %q", got[1].Name)
	}
}

func TestRegionalInsights(t *testing.T) {
	listings := []types.Listing{
		{Region: "Mysuru", FarmerID: "f1", MilletType: "Finger Millet"},
		{Region: "Mysuru", FarmerID: "f2", MilletType: "Pearl Millet"},
		{Region: "Hassan", FarmerID: "f3", MilletType: "Finger Millet"},
	}
	orders := []types.Order{
		{Region: "Mysuru", Quantity: 10, PricePerKg: 40},
		{Region: "Hassan", Quantity: 5, PricePerKg: 50},
		{Region: "Hassan", Quantity: 5, PricePerKg: 50},
	}

	got := RegionalInsights(orders, listings)
	if len(got) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(got))
	}
	if got[0].Region != "Hassan" {
		t.Errorf("Expected Hassan first by order count, got %s", got[0].Region)
	}
	if got[0].Orders != 2 || got[0].TotalTradeValue != 500 {
		t.Errorf("Expected 2 orders worth 500, got %+v", got[0])
	}
	if got[1].Listings != 2 || got[1].Farmers != 2 || got[1].Crops != 2 {
		t.Errorf("Expected Mysuru supply 2/2/2, got %+v", got[1])
	}
}

func TestSeasonalTrends(t *testing.T) {
	orders := []types.Order{
		{MilletType: "Finger Millet", Quantity: 10, PricePerKg: 40, CreatedAt: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{MilletType: "Pearl Millet", Quantity: 5, PricePerKg: 50, CreatedAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{MilletType: "Finger Millet", Quantity: 8, PricePerKg: 45, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := SeasonalTrends(orders, testNow)
	if len(got) != 2 {
		t.Fatalf("Expected 2 months, got %d", len(got))
	}
	if got[0].Key != "2026-03" || got[0].Month != "Mar" {
		t.Errorf("Expected 2026-03 first, got %+v", got[0])
	}
	if got[1].Orders != 2 || got[1].UniqueCrops != 2 {
		t.Errorf("Expected February with 2 orders over 2 crops, got %+v", got[1])
	}
	if got[1].Revenue != 650 {
		t.Errorf("Expected February revenue 650, got %f", got[1].Revenue)
	}
}

func TestComputeSummary(t *testing.T) {
	listings := []types.Listing{
		{MilletType: "Finger Millet", Status: types.ListingActive, FarmerID: "f1", PricePerKg: 40},
		{MilletType: "Pearl Millet", Status: types.ListingActive, FarmerID: "f2", PricePerKg: 50},
		{MilletType: "Finger Millet", Status: types.ListingInactive, FarmerID: "f1", PricePerKg: 45},
	}
	orders := []types.Order{
		{Status: types.OrderDelivered, Quantity: 10, PricePerKg: 40, BuyerID: "b1"},
		{Status: types.OrderPlaced, Quantity: 5, PricePerKg: 50, BuyerID: "b2"},
		{Status: types.OrderCancelled, Quantity: 100, PricePerKg: 60, BuyerID: "b1"},
	}

	got := ComputeSummary(orders, listings)

	if got.TotalListings != 3 || got.ActiveListings != 2 {
		t.Errorf("Expected 3 listings with 2 active, got %+v", got)
	}
	if got.TotalOrders != 3 || got.CompletedOrders != 1 || got.ActiveOrders != 2 || got.CancelledOrders != 1 {
		t.Errorf("Unexpected order counts: %+v", got)
	}
	if got.TotalRevenue != 650 {
		t.Errorf("Expected revenue 650 excluding cancelled, got %f", got.TotalRevenue)
	}
	if got.TotalQuantitySold != 15 {
		t.Errorf("Expected quantity 15, got %f", got.TotalQuantitySold)
	}
	if got.AverageOrderValue != 650 {
		t.Errorf("Expected avg order value 650, got %f", got.AverageOrderValue)
	}
	if got.TotalCrops != 2 || got.UniqueFarmers != 2 || got.UniqueConsumers != 2 {
		t.Errorf("Unexpected distinct counts: %+v", got)
	}
	if got.AveragePrice != 45 {
		t.Errorf("Expected average listing price 45, got %f", got.AveragePrice)
	}
}
