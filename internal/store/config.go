package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration loaded from config.yaml. The pricing
// tables default to the compiled-in market baseline and may be overridden
// per deployment; they are never mutated at runtime.
type Config struct {
	DataDir string `yaml:"data_dir"`

	Insights struct {
		TrendWindowDays int `yaml:"trend_window_days"`
	} `yaml:"insights"`

	Forecast struct {
		Location string `yaml:"location"`
		Period   string `yaml:"period"`
	} `yaml:"forecast"`

	Pricing struct {
		BasePrices      map[string]float64 `yaml:"base_prices"`
		FallbackBase    float64            `yaml:"fallback_base"`
		LocationFactors map[string]float64 `yaml:"location_factors"`
		QualityFactors  map[string]float64 `yaml:"quality_factors"`
	} `yaml:"pricing"`

	Quality struct {
		RecordFile string `yaml:"record_file"`
	} `yaml:"quality"`

	Mandi struct {
		Source    string   `yaml:"source"` // MOCK or LIVE
		Crops     []string `yaml:"crops"`
		RateLimit int      `yaml:"rate_limit_seconds"`
	} `yaml:"mandi"`
}

func (c *Config) Validate() error {
	if c.Insights.TrendWindowDays < 0 {
		return fmt.Errorf("insights.trend_window_days must be non-negative, got %d", c.Insights.TrendWindowDays)
	}
	switch c.Forecast.Period {
	case "", "weekly", "monthly", "quarterly":
	default:
		return fmt.Errorf("forecast.period must be 'weekly', 'monthly' or 'quarterly', got '%s'", c.Forecast.Period)
	}
	if c.Mandi.Source != "MOCK" && c.Mandi.Source != "LIVE" {
		return fmt.Errorf("mandi.source must be 'MOCK' or 'LIVE', got '%s'", c.Mandi.Source)
	}
	for crop, price := range c.Pricing.BasePrices {
		if price <= 0 {
			return fmt.Errorf("pricing.base_prices['%s'] must be positive, got %v", crop, price)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Insights.TrendWindowDays == 0 {
		c.Insights.TrendWindowDays = 30
	}
	if c.Forecast.Location == "" {
		c.Forecast.Location = "All India"
	}
	if c.Forecast.Period == "" {
		c.Forecast.Period = "monthly"
	}
	if c.Quality.RecordFile == "" {
		c.Quality.RecordFile = "quality_checks.jsonl"
	}
	if c.Mandi.Source == "" {
		c.Mandi.Source = "MOCK"
	}
	if c.Mandi.RateLimit == 0 {
		c.Mandi.RateLimit = 2
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
