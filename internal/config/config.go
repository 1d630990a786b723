package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

// MaxConfigFileBytes is the largest config file Load will read (1 MiB).
const MaxConfigFileBytes = 1 << 20

// Defaults applied when the file leaves a field empty.
const (
	DefaultCatalogPath     = "configs/catalog.yaml"
	DefaultHeightM         = 2.2
	DefaultManualDistanceM = 3.0
	DefaultLanguage        = "ja"

	MaxHeightM = 10.0 // sanity bound for mount.height_m
)

// CatalogConfig points at the sensor/scene catalog.
type CatalogConfig struct {
	Path string `yaml:"path"` // e.g., "configs/catalog.yaml"
}

// SelectionConfig is the initial selection. Empty ids pick the first
// catalog entry.
type SelectionConfig struct {
	Sensor     string `yaml:"sensor"`     // catalog sensor id
	Scene      string `yaml:"scene"`      // catalog scene id
	Resolution string `yaml:"resolution"` // depth resolution label, e.g. "848x480"
}

// MountConfig holds the operator's placement inputs.
type MountConfig struct {
	HeightM         float64 `yaml:"height_m"`          // sensor height above floor
	DistanceMode    string  `yaml:"distance_mode"`     // "auto" or "manual"
	ManualDistanceM float64 `yaml:"manual_distance_m"` // used in manual mode only
}

// SearchConfig tunes the auto-distance scan. Zero values keep the engine defaults.
type SearchConfig struct {
	StepM     float64 `yaml:"step_m"`      // default 0.02
	CeilingM  float64 `yaml:"ceiling_m"`   // default 100
	MinStartM float64 `yaml:"min_start_m"` // default 0.3
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	Language   string `yaml:"language"`    // "ja", "en" or "ko" (BCP 47 tags are matched)
	DebugLevel int    `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Selection SelectionConfig `yaml:"selection"`
	Mount     MountConfig     `yaml:"mount"`
	Search    SearchConfig    `yaml:"search"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// ValidateConfigPath rejects paths that are empty, escape upward, are not
// .yaml files or do not live directly under a "configs" directory.
// It does not touch the filesystem.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("config path %q escapes the working directory", path)
	}
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config path %q must have a .yaml extension", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	if err := ValidateConfigPath(path); err != nil {
		return nil, err
	}
	data, err := readLimited(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, MaxConfigFileBytes)
	}
	return data, nil
}

// applyDefaults fills empty fields and validates the rest.
func (c *Config) applyDefaults() error {
	if c.Catalog.Path == "" {
		c.Catalog.Path = DefaultCatalogPath
	}

	// Basic validation
	if math.IsNaN(c.Mount.HeightM) || math.IsInf(c.Mount.HeightM, 0) {
		return fmt.Errorf("mount.height_m must be finite")
	}
	if c.Mount.HeightM < 0 || c.Mount.HeightM > MaxHeightM {
		return fmt.Errorf("mount.height_m must be between 0 and %.0f, got %.2f", MaxHeightM, c.Mount.HeightM)
	}
	if c.Mount.HeightM == 0 {
		c.Mount.HeightM = DefaultHeightM // reasonable default (2.2 m)
	}

	mode, err := geometry.ParseDistanceMode(c.Mount.DistanceMode)
	if err != nil {
		return fmt.Errorf("mount.distance_mode: %w", err)
	}
	c.Mount.DistanceMode = string(mode)

	if c.Mount.ManualDistanceM < 0 || c.Mount.ManualDistanceM > geometry.DefaultCeiling {
		return fmt.Errorf("mount.manual_distance_m must be between 0 and %.0f, got %.2f", geometry.DefaultCeiling, c.Mount.ManualDistanceM)
	}
	if c.Mount.ManualDistanceM == 0 {
		c.Mount.ManualDistanceM = DefaultManualDistanceM
	}

	if c.Search.StepM < 0 || c.Search.CeilingM < 0 || c.Search.MinStartM < 0 {
		return fmt.Errorf("search values must be >= 0 (0 = default)")
	}
	if c.Search.StepM > 1 {
		return fmt.Errorf("search.step_m must be <= 1, got %.3f", c.Search.StepM)
	}
	if c.Search.CeilingM != 0 && c.Search.CeilingM < c.SearchOptions().MinStart {
		return fmt.Errorf("search.ceiling_m (%.2f) must be >= min_start_m", c.Search.CeilingM)
	}
	if err := c.SearchOptions().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if c.Defaults.Language == "" {
		c.Defaults.Language = DefaultLanguage
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// MountingParameters returns the engine inputs from the mount section.
func (c *Config) MountingParameters() geometry.MountingParameters {
	return geometry.MountingParameters{
		HeightM:         c.Mount.HeightM,
		Mode:            geometry.DistanceMode(c.Mount.DistanceMode),
		ManualDistanceM: c.Mount.ManualDistanceM,
	}
}

// SearchOptions returns the engine search options, with defaults for
// every field the file leaves at zero.
func (c *Config) SearchOptions() geometry.SearchOptions {
	return geometry.SearchOptions{
		Step:     c.Search.StepM,
		Ceiling:  c.Search.CeilingM,
		MinStart: c.Search.MinStartM,
	}.WithDefaults()
}

// CatalogPath returns the catalog file path. Relative paths are resolved
// against the directory that holds the config file's configs/ folder.
func (c *Config) CatalogPath(configPath string) string {
	if filepath.IsAbs(c.Catalog.Path) {
		return c.Catalog.Path
	}
	root := filepath.Dir(filepath.Dir(filepath.Clean(configPath)))
	return filepath.Join(root, c.Catalog.Path)
}

// IsManual reports whether the mount section selects manual distance.
func (c *Config) IsManual() bool {
	return c.Mount.DistanceMode == string(geometry.DistanceManual)
}
