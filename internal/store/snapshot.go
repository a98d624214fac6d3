package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"millet-market-engine/internal/types"
)

// Snapshot is one fully-materialized set of marketplace records. The engines
// only ever see in-memory collections; whatever fetched them (files here,
// a document store in production) stays outside the core.
type Snapshot struct {
	Orders       []types.Order         `json:"orders"`
	Listings     []types.Listing       `json:"listings"`
	PriceHistory []types.PriceSample   `json:"priceHistory"`
	Farmers      []types.FarmerProfile `json:"farmers"`
}

// LoadSnapshot reads orders.json, listings.json, price_history.json and
// farmers.json from dir. Missing files load as empty collections so partial
// datasets still produce well-formed reports.
func LoadSnapshot(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := loadJSON(filepath.Join(dir, "orders.json"), &snap.Orders); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "listings.json"), &snap.Listings); err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "price_history.json"), &snap.PriceHistory); err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "farmers.json"), &snap.Farmers); err != nil {
		return nil, fmt.Errorf("failed to load farmers: %w", err)
	}

	return snap, nil
}

func loadJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// FarmerDirectory answers credibility lookups from a snapshot's farmer
// profiles.
type FarmerDirectory struct {
	byID map[string]types.FarmerProfile
}

// NewFarmerDirectory indexes the given profiles by farmer ID.
func NewFarmerDirectory(profiles []types.FarmerProfile) *FarmerDirectory {
	byID := make(map[string]types.FarmerProfile, len(profiles))
	for _, p := range profiles {
		byID[p.FarmerID] = p
	}
	return &FarmerDirectory{byID: byID}
}

// Lookup returns the profile for farmerID, or nil when unknown.
func (d *FarmerDirectory) Lookup(ctx context.Context, farmerID string) (*types.FarmerProfile, error) {
	if p, ok := d.byID[farmerID]; ok {
		return &p, nil
	}
	return nil, nil
}
