package sky

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the unified configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate required fields
	if config.SBID <= 0 {
		return nil, fmt.Errorf("sbid is required and must be positive")
	}
	if config.SeparationLimit < 0 {
		return nil, fmt.Errorf("separationLimitArcsec must not be negative")
	}
	if config.Passes < 0 {
		return nil, fmt.Errorf("passes must not be negative")
	}
	if config.IsolationLimit < 0 {
		return nil, fmt.Errorf("isolationLimitArcsec must not be negative")
	}
	if config.MinFluxRatio != 0 && config.MaxFluxRatio != 0 &&
		config.MinFluxRatio >= config.MaxFluxRatio {
		return nil, fmt.Errorf("minFluxRatio (%.2f) must be below maxFluxRatio (%.2f)",
			config.MinFluxRatio, config.MaxFluxRatio)
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
