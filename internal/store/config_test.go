package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Unexpected error writing config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "data_dir: ./testdata\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.DataDir != "./testdata" {
		t.Errorf("Expected data dir ./testdata, got %s", cfg.DataDir)
	}
	if cfg.Insights.TrendWindowDays != 30 {
		t.Errorf("Expected default trend window 30, got %d", cfg.Insights.TrendWindowDays)
	}
	if cfg.Forecast.Location != "All India" {
		t.Errorf("Expected default location 'All India', got %s", cfg.Forecast.Location)
	}
	if cfg.Forecast.Period != "monthly" {
		t.Errorf("Expected default period monthly, got %s", cfg.Forecast.Period)
	}
	if cfg.Quality.RecordFile != "quality_checks.jsonl" {
		t.Errorf("Expected default record file, got %s", cfg.Quality.RecordFile)
	}
	if cfg.Mandi.Source != "MOCK" {
		t.Errorf("Expected default mandi source MOCK, got %s", cfg.Mandi.Source)
	}
	if cfg.Mandi.RateLimit != 2 {
		t.Errorf("Expected default rate limit 2, got %d", cfg.Mandi.RateLimit)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
insights:
  trend_window_days: 14
forecast:
  location: Karnataka
  period: weekly
pricing:
  base_prices:
    Finger Millet: 48
mandi:
  source: LIVE
  rate_limit_seconds: 5
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Insights.TrendWindowDays != 14 {
		t.Errorf("Expected trend window 14, got %d", cfg.Insights.TrendWindowDays)
	}
	if cfg.Forecast.Period != "weekly" {
		t.Errorf("Expected weekly period, got %s", cfg.Forecast.Period)
	}
	if cfg.Pricing.BasePrices["Finger Millet"] != 48 {
		t.Errorf("Expected base price override 48, got %v", cfg.Pricing.BasePrices["Finger Millet"])
	}
	if cfg.Mandi.Source != "LIVE" || cfg.Mandi.RateLimit != 5 {
		t.Errorf("Expected LIVE source with rate limit 5, got %+v", cfg.Mandi)
	}
}

func TestLoadConfigInvalidPeriod(t *testing.T) {
	path := writeConfig(t, "forecast:\n  period: fortnightly\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error for unknown period")
	}
	if !strings.Contains(err.Error(), "forecast.period") {
		t.Errorf("Expected period error, got %v", err)
	}
}

func TestLoadConfigInvalidMandiSource(t *testing.T) {
	path := writeConfig(t, "mandi:\n  source: CACHED\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected validation error for unknown mandi source")
	}
}

func TestLoadConfigNegativeBasePrice(t *testing.T) {
	path := writeConfig(t, "pricing:\n  base_prices:\n    Finger Millet: -1\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected validation error for negative base price")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
