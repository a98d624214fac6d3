package insights

import (
	"context"
	"reflect"
	"testing"

	"millet-market-engine/internal/types"
)

func TestComputeMarketInsightsEmptyDataset(t *testing.T) {
	eng := New()

	report, err := eng.ComputeMarketInsights(context.Background(), nil, nil, nil, testNow)
	if err != nil {
		t.Fatalf("Expected no error on empty dataset, got %v", err)
	}

	if !report.GeneratedAt.Equal(testNow) {
		t.Errorf("Expected generatedAt %v, got %v", testNow, report.GeneratedAt)
	}
	if len(report.TrendingCrops) != 0 {
		t.Errorf("Expected no trending crops, got %d", len(report.TrendingCrops))
	}
	if len(report.DemandPatterns.WeeklyTrend) != 12 {
		t.Errorf("Expected zero-filled 12-week trend, got %d buckets", len(report.DemandPatterns.WeeklyTrend))
	}
	if report.Summary.TotalOrders != 0 || report.Summary.TotalRevenue != 0 {
		t.Errorf("Expected zero summary, got %+v", report.Summary)
	}
}

func TestComputeMarketInsightsIdempotent(t *testing.T) {
	orders := []types.Order{
		{ID: "o1", MilletType: "Finger Millet", Quantity: 10, PricePerKg: 45, Status: types.OrderDelivered, BuyerID: "b1", FarmerID: "f1", Region: "Mysuru", CreatedAt: testNow.AddDate(0, 0, -3)},
		{ID: "o2", MilletType: "Pearl Millet", Quantity: 25, PricePerKg: 38, Status: types.OrderPlaced, BuyerID: "b2", FarmerID: "f2", Region: "Hassan", CreatedAt: testNow.AddDate(0, 0, -40)},
	}
	listings := []types.Listing{
		{ID: "l1", MilletType: "Finger Millet", PricePerKg: 45, Status: types.ListingActive, FarmerID: "f1", FarmerName: "Manjunath", Region: "Mysuru"},
	}
	history := []types.PriceSample{
		{MilletType: "Finger Millet", Price: 44, Timestamp: testNow.AddDate(0, 0, -2)},
		{MilletType: "Finger Millet", Price: 46, Timestamp: testNow.AddDate(0, 0, -1)},
	}

	eng := New()
	first, err := eng.ComputeMarketInsights(context.Background(), orders, listings, history, testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := eng.ComputeMarketInsights(context.Background(), orders, listings, history, testNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical reports for identical inputs")
	}
}

func TestNewWithWindowFallsBackToDefault(t *testing.T) {
	eng := NewWithWindow(-1)
	if eng.trendWindowDays != DefaultTrendWindowDays {
		t.Errorf("Expected default window, got %d", eng.trendWindowDays)
	}
}
