package harness

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/glmetrics/internal/export"
	httpexport "github.com/ethpandaops/glmetrics/internal/export/http"
	"github.com/ethpandaops/glmetrics/internal/fps"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/panel"
	"github.com/ethpandaops/glmetrics/internal/scene"
	"github.com/ethpandaops/glmetrics/internal/sink"
)

// MaxTargetFPS bounds the render loop rate.
const MaxTargetFPS = 1000

// Config is the top-level configuration for the headless harness.
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Variant selects the metrics variant (module or standalone).
	Variant string `yaml:"variant"`

	// WindowMs is the frame-rate window in milliseconds. Defaults to 1000.
	WindowMs float64 `yaml:"window_ms"`

	// TargetFPS is the render loop rate, at most MaxTargetFPS. Defaults to 60.
	TargetFPS int `yaml:"target_fps"`

	// Duration stops the run after the given time. Zero runs until
	// interrupted.
	Duration time.Duration `yaml:"duration"`

	// RunID tags exported reports. Generated when empty.
	RunID string `yaml:"run_id"`

	// SegmentLength is the length of a benchmark segment. Defaults to 10s.
	SegmentLength time.Duration `yaml:"segment_length"`

	// Scene configures the synthetic benchmark scene.
	Scene SceneConfig `yaml:"scene"`

	// Display configures the terminal metrics block.
	Display DisplayConfig `yaml:"display"`

	// Health configures the Prometheus health metrics server.
	Health export.HealthConfig `yaml:"health"`

	// Sinks configures report sinks.
	Sinks sink.Config `yaml:"sinks"`
}

// SceneConfig configures the benchmark scene.
type SceneConfig struct {
	NX             int     `yaml:"nx"`
	NY             int     `yaml:"ny"`
	Representation string  `yaml:"representation"`
	LineWidth      float64 `yaml:"line_width"`
	PointSize      float64 `yaml:"point_size"`
	PickType       string  `yaml:"pick_type"`
	EdgeColor      string  `yaml:"edge_color"`

	// ScrollSensitivity is forwarded to the scene for parity with the
	// interactive page. Defaults to 1.
	ScrollSensitivity float64 `yaml:"scroll_sensitivity"`

	// Instancing draws each layer's surfaces with one instanced call.
	Instancing bool `yaml:"instancing"`

	// Resolution is the tessellation resolution. Defaults to 16.
	Resolution int `yaml:"resolution"`

	// HiddenLayers lists layers (cone, sphere, cylinder) not drawn.
	HiddenLayers []string `yaml:"hidden_layers"`
}

// DisplayConfig configures the terminal display.
type DisplayConfig struct {
	Enabled bool `yaml:"enabled"`
	// Clear clears the terminal before each block.
	Clear bool `yaml:"clear"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		Variant:       instrument.VariantModule.String(),
		WindowMs:      fps.DefaultWindowMs,
		TargetFPS:     60,
		SegmentLength: 10 * time.Second,
		Scene: SceneConfig{
			NX:                32,
			NY:                32,
			Representation:    scene.RepresentationSurfaceWithEdges.String(),
			LineWidth:         1,
			PointSize:         1,
			PickType:          scene.PickNone.String(),
			EdgeColor:         "#cccccc",
			ScrollSensitivity: 1,
			Resolution:        scene.DefaultResolution,
		},
		Health: export.HealthConfig{
			Addr: ":9090",
		},
		Sinks: sink.Config{
			Log:     sink.LogConfig{Enabled: true, Every: 60},
			Segment: sink.SegmentConfig{Enabled: true},
			HTTP:    sink.HTTPConfig{Config: httpexport.DefaultConfig()},
		},
	}
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for required fields and consistency.
func (c *Config) Validate() error {
	if _, err := instrument.ParseVariant(c.Variant); err != nil {
		return fmt.Errorf("variant: %w", err)
	}

	if c.WindowMs <= 0 {
		return errors.New("window_ms must be positive")
	}

	if c.TargetFPS <= 0 || c.TargetFPS > MaxTargetFPS {
		return fmt.Errorf("target_fps must be in [1, %d]", MaxTargetFPS)
	}

	if c.Duration < 0 {
		return errors.New("duration must not be negative")
	}

	if c.SegmentLength <= 0 {
		return errors.New("segment_length must be positive")
	}

	if err := c.Scene.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	if err := c.Sinks.HTTP.Validate(); err != nil {
		return fmt.Errorf("sinks.http: %w", err)
	}

	if c.Sinks.ClickHouse.Enabled && c.Sinks.ClickHouse.ClickHouse.Endpoint == "" {
		return errors.New("sinks.clickhouse.endpoint is required when enabled")
	}

	return nil
}

// Validate checks the scene configuration.
func (c *SceneConfig) Validate() error {
	if c.NX < panel.MinGrid || c.NX > panel.MaxGrid {
		return fmt.Errorf("nx must be in [%d, %d]", panel.MinGrid, panel.MaxGrid)
	}

	if c.NY < panel.MinGrid || c.NY > panel.MaxGrid {
		return fmt.Errorf("ny must be in [%d, %d]", panel.MinGrid, panel.MaxGrid)
	}

	if c.LineWidth <= 0 || c.PointSize <= 0 {
		return errors.New("line_width and point_size must be positive")
	}

	_, err := c.Settings()

	return err
}

// Settings converts the scene configuration to control panel settings.
func (c *SceneConfig) Settings() (panel.Settings, error) {
	s := panel.DefaultSettings()

	rep, err := scene.ParseRepresentation(c.Representation)
	if err != nil {
		return s, err
	}

	pick, err := scene.ParsePickType(c.PickType)
	if err != nil {
		return s, err
	}

	if _, err := panel.ParseHexColor(c.EdgeColor); err != nil {
		return s, fmt.Errorf("edge_color: %w", err)
	}

	for _, name := range c.HiddenLayers {
		l, err := scene.ParseLayer(name)
		if err != nil {
			return s, fmt.Errorf("hidden_layers: %w", err)
		}

		s.Layers[l] = false
	}

	s.NX = c.NX
	s.NY = c.NY
	s.Representation = rep
	s.PickType = pick
	s.LineWidth = c.LineWidth
	s.PointSize = c.PointSize
	s.EdgeColor = c.EdgeColor
	s.ScrollSensitivity = c.ScrollSensitivity
	s.ShowManipulator = false

	return s, nil
}
