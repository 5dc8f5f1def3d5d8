// Package config provides configuration loading and access for level set runs.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all run configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Solver    SolverConfig    `yaml:"solver"`
	Shape     ShapeConfig     `yaml:"shape"`
	Mask      MaskConfig      `yaml:"mask"`
	Extension ExtensionConfig `yaml:"extension"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the sampling lattice.
type GridConfig struct {
	Dims    [3]int     `yaml:"dims"`
	Spacing [3]float64 `yaml:"spacing"`
	Origin  [3]float64 `yaml:"origin"` // physical position of node (0,0,0)
}

// SolverConfig holds fast marching parameters.
type SolverConfig struct {
	Order int `yaml:"order"` // spatial discretization order, only 1 is supported
}

// ShapeConfig describes the surface whose signed distance seeds phi.
type ShapeConfig struct {
	Kind   string     `yaml:"kind"` // sphere, box, cylinder, plane, spheres
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
	Size   [3]float64 `yaml:"size"`
	Height float64    `yaml:"height"`
	Round  float64    `yaml:"round"`
	Normal [3]float64 `yaml:"normal"`
	Second [3]float64 `yaml:"second"` // second sphere center for kind spheres
}

// MaskConfig restricts the computation to a sphere. Radius 0 disables it.
type MaskConfig struct {
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
}

// SourceConfig names one field to extend off the interface.
type SourceConfig struct {
	Kind  string  `yaml:"kind"`  // coordinate_x, coordinate_y, coordinate_z, constant, phi
	Value float64 `yaml:"value"` // for constant
}

// ExtensionConfig lists the source fields.
type ExtensionConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // empty disables file output
	Fields bool   `yaml:"fields"` // write the per-point fields CSV
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string `yaml:"level"`    // debug, info, warn, error
	File    string `yaml:"file"`     // rotate into this file instead of stderr
	MaxSize int    `yaml:"max_size"` // megabytes before rotation
	MaxAge  int    `yaml:"max_age"`  // days to keep rotated files
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Points int     // total grid nodes
	MinH   float64 // smallest spacing
	Masked bool
	NumExt int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

var sourceKinds = map[string]bool{
	"coordinate_x": true,
	"coordinate_y": true,
	"coordinate_z": true,
	"constant":     true,
	"phi":          true,
}

// Validate reports the first invalid setting. The solver order is not
// checked here; the solver rejects it with its own error.
func (c *Config) Validate() error {
	for axis := range 3 {
		if c.Grid.Dims[axis] < 1 {
			return fmt.Errorf("%w: grid.dims[%d] = %d", ErrInvalid, axis, c.Grid.Dims[axis])
		}
		if c.Grid.Spacing[axis] <= 0 {
			return fmt.Errorf("%w: grid.spacing[%d] = %g", ErrInvalid, axis, c.Grid.Spacing[axis])
		}
	}
	if c.Mask.Radius < 0 {
		return fmt.Errorf("%w: mask.radius = %g", ErrInvalid, c.Mask.Radius)
	}
	for i, s := range c.Extension.Sources {
		if !sourceKinds[s.Kind] {
			return fmt.Errorf("%w: extension.sources[%d].kind %q", ErrInvalid, i, s.Kind)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Points = c.Grid.Dims[0] * c.Grid.Dims[1] * c.Grid.Dims[2]
	c.Derived.MinH = min(c.Grid.Spacing[0], c.Grid.Spacing[1], c.Grid.Spacing[2])
	c.Derived.Masked = c.Mask.Radius > 0
	c.Derived.NumExt = len(c.Extension.Sources)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
