package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Detector
	DetectorType string `envconfig:"DETECTOR_TYPE" default:"mock"`
	DetectorURL  string `envconfig:"DETECTOR_URL" default:"http://localhost:5005"`

	// Matching. The two thresholds belong to different decision rules
	// (Euclidean distance vs cosine similarity) and are configured
	// independently.
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.5"`
	RankThreshold  float64 `envconfig:"RANK_THRESHOLD" default:"0.6"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 1 {
		return nil, fmt.Errorf("MATCH_THRESHOLD must be between 0 and 1, got %v", cfg.MatchThreshold)
	}
	if cfg.RankThreshold < 0 || cfg.RankThreshold > 1 {
		return nil, fmt.Errorf("RANK_THRESHOLD must be between 0 and 1, got %v", cfg.RankThreshold)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
