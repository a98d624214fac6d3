package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/pricing"
	"millet-market-engine/internal/store"
	"millet-market-engine/internal/trace"
	"millet-market-engine/internal/types"
)

func main() {
	var (
		op       = flag.String("op", "insights", "operation: insights, forecast, price, match, quality")
		crop     = flag.String("crop", "Finger Millet", "crop for price suggestion")
		quantity = flag.Float64("quantity", 100, "quantity in kg for price suggestion")
		location = flag.String("location", "", "location filter (price, forecast, match)")
		grade    = flag.String("quality", types.QualityStandard, "quality grade (price, match)")
		maxPrice = flag.Float64("max-price", 0, "buyer max price per kg (match)")
		crops    = flag.String("crops", "", "comma-separated crop allow-list (match)")
		minQty   = flag.Float64("min-quantity", 0, "minimum listing quantity (match)")
		batch    = flag.String("batch", "", "path to a batch JSON file (quality)")
	)
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	defer func() {
		_ = trace.Shutdown(ctx)
		_ = logger.Shutdown(ctx)
	}()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	snap, err := store.LoadSnapshot(cfg.DataDir)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load data snapshot", err)
		os.Exit(1)
	}

	now := time.Now()
	history := loadHistory(ctx, cfg, snap, now)

	var out any
	switch *op {
	case "insights":
		out, err = initializeInsights(cfg).ComputeMarketInsights(ctx, snap.Orders, snap.Listings, history, now)

	case "forecast":
		loc := cfg.Forecast.Location
		if *location != "" {
			loc = *location
		}
		out, err = initializeForecaster(cfg).ForecastDemand(ctx, snap.Orders, snap.Listings, history, loc, cfg.Forecast.Period, now)

	case "price":
		eng := pricing.New(pricingTables(cfg))
		out, err = eng.SuggestPrice(pricing.Params{
			MilletType: *crop,
			Quantity:   *quantity,
			Location:   *location,
			Quality:    *grade,
		}, history)

	case "match":
		prefs := types.MatchPreferences{
			MaxPrice:         *maxPrice,
			PreferredQuality: *grade,
			MinQuantity:      *minQty,
			Location:         *location,
		}
		if *crops != "" {
			prefs.MilletTypes = strings.Split(*crops, ",")
		}
		out, err = initializeMatcher(snap).FindMatches(ctx, snap.Listings, prefs, now)

	case "quality":
		var b types.QualityBatch
		if err = readJSONFile(*batch, &b); err == nil {
			out, err = initializeQuality(cfg).CheckBatch(ctx, b, now)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown operation %q\n", *op)
		os.Exit(2)
	}

	if err != nil {
		logger.ErrorWithErr(ctx, "Operation failed", err, "op", *op)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

// loadHistory merges the snapshot's price history with freshly fetched mandi
// samples. Fetch failures fall back to the snapshot alone.
func loadHistory(ctx context.Context, cfg *store.Config, snap *store.Snapshot, now time.Time) []types.PriceSample {
	history := snap.PriceHistory

	crops := cfg.Mandi.Crops
	if len(crops) == 0 {
		return history
	}

	fetcher := initializeFetcher(ctx, cfg, now)
	samples, err := fetcher.FetchPrices(ctx, crops)
	if err != nil {
		logger.Warn(ctx, "Mandi price fetch failed, using snapshot history only", "error", err)
		return history
	}
	return append(history, samples...)
}

func readJSONFile(path string, out any) error {
	if path == "" {
		return fmt.Errorf("missing -batch file")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
