// Package config provides configuration loading and management for
// starquads. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"starquads/pkg/pipeline"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection parameters
	Detection struct {
		// MaxStars caps how many components are kept after brightness
		// ranking
		MaxStars int `yaml:"maxStars"`

		// MinDistancePercent is the minimum pairwise star separation as
		// a percentage of image width + height; zero disables it
		MinDistancePercent float64 `yaml:"minDistancePercent"`

		// KNeighbors is the number of nearest stars combined with each
		// seed when forming quads
		KNeighbors int `yaml:"kNeighbors"`
	} `yaml:"detection"`

	// Threshold parameters for turning a source image into a mask
	Threshold struct {
		// Sigma is the number of standard deviations above the median
		// luminance a pixel must reach to count as foreground
		Sigma float64 `yaml:"sigma"`

		// BlurRadius is the Gaussian blur radius applied before
		// thresholding; zero skips the blur
		BlurRadius float64 `yaml:"blurRadius"`
	} `yaml:"threshold"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// SaveMask determines whether the intermediate binary mask is
		// written alongside the results
		SaveMask bool `yaml:"saveMask"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	params := pipeline.DefaultParams()
	cfg.Detection.MaxStars = params.MaxStars
	cfg.Detection.MinDistancePercent = params.MinDistancePercent
	cfg.Detection.KNeighbors = params.KNeighbors

	cfg.Threshold.Sigma = 3.0
	cfg.Threshold.BlurRadius = 1.0

	cfg.Output.Verbose = true
	cfg.Output.SaveMask = false

	return cfg
}

// Params converts the detection section into pipeline parameters.
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		MaxStars:           c.Detection.MaxStars,
		MinDistancePercent: c.Detection.MinDistancePercent,
		KNeighbors:         c.Detection.KNeighbors,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
