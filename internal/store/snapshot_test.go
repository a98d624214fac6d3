package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"millet-market-engine/internal/types"
)

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()

	orders := `[{"id":"o1","cropType":"Finger Millet","quantity":10,"pricePerKg":45,"userId":"b1","district":"Mysuru"}]`
	listings := `[{"id":"l1","milletType":"Pearl Millet","pricePerKg":38,"farmerId":"f1"}]`
	history := `[{"productId":"Finger Millet","price":44}]`
	farmers := `[{"farmerId":"f1","name":"Manjunath","credibilityScore":72}]`

	for name, content := range map[string]string{
		"orders.json":        orders,
		"listings.json":      listings,
		"price_history.json": history,
		"farmers.json":       farmers,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Unexpected error writing %s: %v", name, err)
		}
	}

	snap, err := LoadSnapshot(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snap.Orders) != 1 || snap.Orders[0].MilletType != "Finger Millet" {
		t.Errorf("Expected normalized order, got %+v", snap.Orders)
	}
	if snap.Orders[0].BuyerID != "b1" || snap.Orders[0].Region != "Mysuru" {
		t.Errorf("Expected alias fields resolved, got %+v", snap.Orders[0])
	}
	if len(snap.Listings) != 1 || snap.Listings[0].MilletType != "Pearl Millet" {
		t.Errorf("Expected listing loaded, got %+v", snap.Listings)
	}
	if len(snap.PriceHistory) != 1 || snap.PriceHistory[0].MilletType != "Finger Millet" {
		t.Errorf("Expected price sample with productId resolved, got %+v", snap.PriceHistory)
	}
	if len(snap.Farmers) != 1 || snap.Farmers[0].CredibilityScore != 72 {
		t.Errorf("Expected farmer profile loaded, got %+v", snap.Farmers)
	}
}

func TestLoadSnapshotMissingFiles(t *testing.T) {
	snap, err := LoadSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("Expected missing files to load as empty, got %v", err)
	}
	if len(snap.Orders) != 0 || len(snap.Listings) != 0 || len(snap.PriceHistory) != 0 || len(snap.Farmers) != 0 {
		t.Errorf("Expected empty snapshot, got %+v", snap)
	}
}

func TestLoadSnapshotBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := LoadSnapshot(dir); err == nil {
		t.Fatal("Expected error for malformed orders file")
	}
}

func TestFarmerDirectoryLookup(t *testing.T) {
	dir := NewFarmerDirectory([]types.FarmerProfile{
		{FarmerID: "f1", Name: "Manjunath", CredibilityScore: 72},
	})

	profile, err := dir.Lookup(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if profile == nil || profile.CredibilityScore != 72 {
		t.Errorf("Expected profile with score 72, got %+v", profile)
	}

	profile, err = dir.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if profile != nil {
		t.Errorf("Expected nil profile for unknown farmer, got %+v", profile)
	}
}
