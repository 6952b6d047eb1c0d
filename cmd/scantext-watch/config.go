package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the daemon settings that go beyond the command line.
type Config struct {
	// Languages are passed to the OCR engine as trained-data hints.
	Languages []string `yaml:"languages"`

	// DPI is the page rasterization resolution, the pipeline default when
	// zero.
	DPI float64 `yaml:"dpi"`

	// Notify enables Pushover notifications for completed conversions.
	Notify bool `yaml:"notify"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Languages: []string{"eng"},
	}
}

// LoadConfig reads the daemon configuration from filename.
func LoadConfig(filename string) (Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("read config failed: %w", err)
	}

	cfg := DefaultConfig()

	err = yaml.UnmarshalStrict(buf, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config failed: %w", err)
	}

	return cfg, nil
}
