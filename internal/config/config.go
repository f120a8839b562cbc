package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/quantityfield/internal/fixture"
	"github.com/banshee-data/quantityfield/internal/units"
)

// Defaults used by the Get* methods when a field is unset.
const (
	DefaultDatabasePath  = "quantityfield.db"
	DefaultFixtureFormat = "json"
	DefaultDisplayUnit   = "kilogram"
	DefaultHistogramBins = 10
)

// Config is the quantityctl configuration file. Every field is optional;
// the Get* methods fall back to the defaults above.
type Config struct {
	DatabasePath    *string `json:"database_path,omitempty"`
	UnitDefinitions *string `json:"unit_definitions,omitempty"` // YAML file added to the application registry
	FixtureFormat   *string `json:"fixture_format,omitempty"`
	DisplayUnit     *string `json:"display_unit,omitempty"`
	HistogramBins   *int    `json:"histogram_bins,omitempty"`
	LogPrefix       *string `json:"log_prefix,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Relative definition paths are resolved against the config file.
	if cfg.UnitDefinitions != nil && *cfg.UnitDefinitions != "" && !filepath.IsAbs(*cfg.UnitDefinitions) {
		cfg.UnitDefinitions = ptrString(filepath.Join(filepath.Dir(cleanPath), *cfg.UnitDefinitions))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.DatabasePath != nil && *c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.FixtureFormat != nil {
		if _, err := fixture.Lookup(*c.FixtureFormat); err != nil {
			return fmt.Errorf("fixture_format: %w", err)
		}
	}
	if c.DisplayUnit != nil {
		if _, err := units.Default().Parse(*c.DisplayUnit); err != nil && c.UnitDefinitions == nil {
			return fmt.Errorf("display_unit: %w", err)
		}
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1, got %d", *c.HistogramBins)
	}
	return nil
}

// LoadUnitDefinitions adds the configured unit definitions file to reg. It
// is a no-op when none is configured.
func (c *Config) LoadUnitDefinitions(reg *units.Registry) error {
	if c.UnitDefinitions == nil || *c.UnitDefinitions == "" {
		return nil
	}
	f, err := os.Open(*c.UnitDefinitions)
	if err != nil {
		return fmt.Errorf("failed to open unit definitions: %w", err)
	}
	defer f.Close()
	if err := reg.LoadDefinitions(f); err != nil {
		return fmt.Errorf("%s: %w", *c.UnitDefinitions, err)
	}
	return nil
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return DefaultDatabasePath
	}
	return *c.DatabasePath
}

func (c *Config) GetFixtureFormat() string {
	if c.FixtureFormat == nil {
		return DefaultFixtureFormat
	}
	return *c.FixtureFormat
}

func (c *Config) GetDisplayUnit() string {
	if c.DisplayUnit == nil {
		return DefaultDisplayUnit
	}
	return *c.DisplayUnit
}

func (c *Config) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return DefaultHistogramBins
	}
	return *c.HistogramBins
}

func (c *Config) GetLogPrefix() string {
	if c.LogPrefix == nil {
		return ""
	}
	return *c.LogPrefix
}
