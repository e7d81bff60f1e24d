// Package config holds the tunable parameters of the detector and server.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "SETCARDS_CONFIG"
	EnvLogLevel   = "SETCARDS_LOG_LEVEL"
)

// MaxPaletteColors bounds MaxClusters: a deck prints symbols in three colors.
const MaxPaletteColors = 3

// Config is the root configuration document.
type Config struct {
	Detection Detection `yaml:"detection"`
	Server    Server    `yaml:"server"`
}

// Server configures the MCP shell.
type Server struct {
	// LogLevel "debug" enables diagnostic output on stderr.
	LogLevel string `yaml:"log_level"`
}

// Detection holds every constant of the detection pipeline.
type Detection struct {
	// Region location
	SearchMargin        float64 `yaml:"search_margin"`
	FallbackMargin      float64 `yaml:"fallback_margin"`
	BlurRadius          float64 `yaml:"blur_radius"`
	AdaptiveRadius      int     `yaml:"adaptive_radius"`
	AdaptiveC           float64 `yaml:"adaptive_c"`
	MinCardAreaFraction float64 `yaml:"min_card_area_fraction"`
	MaxCardAreaFraction float64 `yaml:"max_card_area_fraction"`
	ApproxEpsilon       float64 `yaml:"approx_epsilon"`

	// Dimension validation
	DimensionTolerance float64 `yaml:"dimension_tolerance"`

	// Color sampling and clustering
	SampleStride     int     `yaml:"sample_stride"`
	ColoredThreshold uint8   `yaml:"colored_threshold"`
	CLAHEClipLimit   float64 `yaml:"clahe_clip_limit"`
	CLAHETiles       int     `yaml:"clahe_tiles"`
	MaskDilation     int     `yaml:"mask_dilation"` // pixels the symbol mask grows by before hole filling
	MaxClusters      int     `yaml:"max_clusters"`
	KMeansAttempts   int     `yaml:"kmeans_attempts"`
	KMeansDelta      float64 `yaml:"kmeans_delta"` // stop once fewer points than this fraction change cluster

	// Feature extraction
	SymbolThreshold       uint8   `yaml:"symbol_threshold"`
	MinSymbolArea         float64 `yaml:"min_symbol_area"`
	MaxSymbolAreaFraction float64 `yaml:"max_symbol_area_fraction"`
	ParallelTolerance     float64 `yaml:"parallel_tolerance"`
	SolidRatio            float64 `yaml:"solid_ratio"`
	StripedRatio          float64 `yaml:"striped_ratio"`
}

// Default returns the configuration the detector was tuned with.
func Default() *Config {
	return &Config{
		Detection: DefaultDetection(),
		Server:    Server{LogLevel: "info"},
	}
}

// DefaultDetection returns the default pipeline parameters.
func DefaultDetection() Detection {
	return Detection{
		SearchMargin:        0.15,
		FallbackMargin:      0.05,
		BlurRadius:          1.5,
		AdaptiveRadius:      5,
		AdaptiveC:           2,
		MinCardAreaFraction: 0.15,
		MaxCardAreaFraction: 1.2,
		ApproxEpsilon:       0.02,

		DimensionTolerance: 0.3,

		SampleStride:     3,
		ColoredThreshold: 200,
		CLAHEClipLimit:   2.0,
		CLAHETiles:       8,
		MaskDilation:     1,
		MaxClusters:      3,
		KMeansAttempts:   10,
		KMeansDelta:      0.01,

		SymbolThreshold:       200,
		MinSymbolArea:         100,
		MaxSymbolAreaFraction: 0.8,
		ParallelTolerance:     10,
		SolidRatio:            0.4,
		StripedRatio:          0.15,
	}
}

// Load reads a YAML file and overlays it on Default. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by SETCARDS_CONFIG (if set) and applies
// SETCARDS_LOG_LEVEL on top.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Server.LogLevel = level
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects parameter combinations the pipeline cannot run with.
func (c *Config) Validate() error {
	d := c.Detection
	var errs []error
	if d.SearchMargin < 0 || d.FallbackMargin < 0 || d.FallbackMargin >= 0.5 {
		errs = append(errs, fmt.Errorf("margins out of range: search=%v fallback=%v", d.SearchMargin, d.FallbackMargin))
	}
	if d.MinCardAreaFraction < 0 || d.MaxCardAreaFraction <= d.MinCardAreaFraction {
		errs = append(errs, fmt.Errorf("card area band [%v,%v] is empty", d.MinCardAreaFraction, d.MaxCardAreaFraction))
	}
	if d.ApproxEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("approx_epsilon must be > 0"))
	}
	if d.DimensionTolerance <= 0 || d.DimensionTolerance >= 1 {
		errs = append(errs, fmt.Errorf("dimension_tolerance must be in (0,1), got %v", d.DimensionTolerance))
	}
	if d.SampleStride < 1 {
		errs = append(errs, fmt.Errorf("sample_stride must be >= 1"))
	}
	if d.MaxClusters < 1 || d.MaxClusters > MaxPaletteColors {
		errs = append(errs, fmt.Errorf("max_clusters must be in [1,%d], got %d", MaxPaletteColors, d.MaxClusters))
	}
	if d.KMeansAttempts < 1 {
		errs = append(errs, fmt.Errorf("kmeans_attempts must be >= 1"))
	}
	if d.KMeansDelta <= 0 || d.KMeansDelta >= 1 {
		errs = append(errs, fmt.Errorf("kmeans_delta must be in (0,1), got %v", d.KMeansDelta))
	}
	if d.MaskDilation < 0 {
		errs = append(errs, fmt.Errorf("mask_dilation must be >= 0"))
	}
	if d.CLAHETiles < 1 || d.CLAHEClipLimit <= 0 {
		errs = append(errs, fmt.Errorf("clahe parameters must be positive"))
	}
	if d.StripedRatio >= d.SolidRatio {
		errs = append(errs, fmt.Errorf("striped_ratio %v must be below solid_ratio %v", d.StripedRatio, d.SolidRatio))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
