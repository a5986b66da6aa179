// Package config provides configuration loading and access for the animation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strings"

	css "github.com/mazznoer/csscolorparser"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Boundary policy names.
const (
	BoundarySoft  = "soft"
	BoundaryClamp = "clamp"
)

// Scroll easing mode names.
const (
	ScrollRaw    = "raw"
	ScrollEased  = "eased"
	ScrollSpring = "spring"
)

// Scroll direction names.
const (
	DirectionVertical = "vertical"
	DirectionRandom   = "random"
)

// Render backend names.
const (
	BackendCPU = "cpu"
	BackendGPU = "gpu"
)

// Shading mode names.
const (
	ShadingFlat   = "flat"
	ShadingLit    = "lit"
	ShadingSmooth = "smooth"
)

// Config holds all animation configuration parameters.
type Config struct {
	Variant   string          `yaml:"variant"`
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Boundary  BoundaryConfig  `yaml:"boundary"`
	Scroll    ScrollConfig    `yaml:"scroll"`
	Floor     FloorConfig     `yaml:"floor"`
	Tiers     TiersConfig     `yaml:"tiers"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Variants are partial configs overlaid onto the base when selected.
	Variants map[string]yaml.Node `yaml:"variants,omitempty"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// PhysicsConfig holds integrator parameters.
type PhysicsConfig struct {
	Gravity    float64 `yaml:"gravity"`     // Downward acceleration per frame
	MassScaled bool    `yaml:"mass_scaled"` // Multiply gravity by particle mass
	MassFactor float64 `yaml:"mass_factor"` // mass = radius * this
	Damping    float64 `yaml:"damping"`     // Velocity retained per frame
	DT         float64 `yaml:"dt"`          // Frames per tick (1 = one display refresh)
}

// PointerConfig holds pointer attraction parameters.
type PointerConfig struct {
	Force float64 `yaml:"force"` // Attraction strength
	Range float64 `yaml:"range"` // Attraction radius in viewport pixels (0 = off)
}

// BoundaryConfig holds edge handling parameters.
type BoundaryConfig struct {
	Policy    string  `yaml:"policy"`     // soft | clamp
	EdgeForce float64 `yaml:"edge_force"` // soft: velocity push per pixel of penetration
	Bounce    float64 `yaml:"bounce"`     // clamp: reflected fraction of velocity (0 = stop)
}

// ScrollConfig holds scroll impulse parameters.
type ScrollConfig struct {
	Mode            string  `yaml:"mode"`             // raw | eased | spring
	Damping         float64 `yaml:"damping"`          // Impulse retained per frame
	MaxForce        float64 `yaml:"max_force"`        // Cap of the compressing curve
	Multiplier      float64 `yaml:"multiplier"`       // Scale applied to particle velocity
	Direction       string  `yaml:"direction"`        // vertical | random
	Invert          bool    `yaml:"invert"`           // Scrolling down pushes blobs up
	SpringFrequency float64 `yaml:"spring_frequency"` // spring: angular frequency
	SpringDamping   float64 `yaml:"spring_damping"`   // spring: damping ratio
	WheelStep       float64 `yaml:"wheel_step"`       // Virtual scroll pixels per wheel notch
}

// FloorConfig holds the pinned floor row parameters.
type FloorConfig struct {
	PinSpacing  float64 `yaml:"pin_spacing"`  // Viewport pixels between pinned particles
	PinRadius   float64 `yaml:"pin_radius"`   // Viewport pixels, scaled by render scale
	SpawnMargin float64 `yaml:"spawn_margin"` // Free particles spawn this far above the floor
}

// TiersConfig holds device tier presets.
type TiersConfig struct {
	MobileBreakpoint int        `yaml:"mobile_breakpoint"` // Viewport width below which the mobile tier applies
	Desktop          TierConfig `yaml:"desktop"`
	Mobile           TierConfig `yaml:"mobile"`
}

// TierConfig holds the per-tier particle preset.
type TierConfig struct {
	Count         int     `yaml:"count"`
	MinRadius     float64 `yaml:"min_radius"`     // Viewport pixels
	MaxRadius     float64 `yaml:"max_radius"`     // Viewport pixels
	FloorFraction float64 `yaml:"floor_fraction"` // Floor line as a fraction of height
}

// RenderConfig holds field rendering parameters.
type RenderConfig struct {
	Backend         string     `yaml:"backend"`          // cpu | gpu
	Scale           float64    `yaml:"scale"`            // Simulation/raster resolution relative to the viewport
	Threshold       float64    `yaml:"threshold"`        // Isosurface level
	Epsilon         float64    `yaml:"epsilon"`          // Field denominator guard
	GradientEpsilon float64    `yaml:"gradient_epsilon"` // Gradient denominator guard
	Shading         string     `yaml:"shading"`          // flat | lit | smooth
	LightDir        [2]float64 `yaml:"light_dir"`
	Brightness      float64    `yaml:"brightness"`
	Exponent        float64    `yaml:"exponent"`
	Feather         float64    `yaml:"feather"`     // lit: edge fade rate above threshold
	SmoothBand      float64    `yaml:"smooth_band"` // smooth: field band blended around the threshold
	Background      string     `yaml:"background"`
	Fill            string     `yaml:"fill"`
	FloorColor      string     `yaml:"floor_color"`
	MaxGPUBlobs     int        `yaml:"max_gpu_blobs"`
	Workers         int        `yaml:"workers"` // Raster worker goroutines (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames averaged by the perf collector
	LogInterval int `yaml:"log_interval"` // Frames between stats log lines
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LightX, LightY float64    // Normalized Render.LightDir
	Background     color.RGBA // Parsed Render.Background
	Fill           color.RGBA // Parsed Render.Fill
	FloorColor     color.RGBA // Parsed Render.FloorColor
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// A non-empty variant overrides the variant named in the file.
// Must be called before Cfg().
func Init(path, variant string) error {
	cfg, err := Load(path, variant)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults with no variant applied.
func Default() *Config {
	cfg, err := Load("", "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then overlays the selected variant and validates the result.
// If path is empty, only embedded defaults are used.
func Load(path, variant string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if variant != "" {
		cfg.Variant = variant
	}
	if err := cfg.applyVariant(); err != nil {
		return nil, err
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyVariant overlays the selected variant onto the base config.
func (c *Config) applyVariant() error {
	if c.Variant == "" {
		return nil
	}
	node, ok := c.Variants[c.Variant]
	if !ok {
		return fmt.Errorf("unknown variant %q (available: %s)", c.Variant, strings.Join(c.VariantNames(), ", "))
	}
	// Decoding into the loaded struct keeps every field the variant omits.
	if err := node.Decode(c); err != nil {
		return fmt.Errorf("applying variant %q: %w", c.Variant, err)
	}
	return nil
}

// VariantNames returns the sorted names of the configured variants.
func (c *Config) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for name := range c.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	lx, ly := c.Render.LightDir[0], c.Render.LightDir[1]
	length := math.Sqrt(lx*lx + ly*ly)
	if length == 0 {
		length = 1
	}
	c.Derived.LightX = lx / length
	c.Derived.LightY = ly / length

	var err error
	if c.Derived.Background, err = ParseColor(c.Render.Background); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	if c.Derived.Fill, err = ParseColor(c.Render.Fill); err != nil {
		return fmt.Errorf("render.fill: %w", err)
	}
	if c.Derived.FloorColor, err = ParseColor(c.Render.FloorColor); err != nil {
		return fmt.Errorf("render.floor_color: %w", err)
	}
	return nil
}

// ParseColor parses a CSS colour string into an opaque-aware RGBA value.
func ParseColor(s string) (color.RGBA, error) {
	c, err := css.Parse(s)
	if err != nil {
		return color.RGBA{}, err
	}
	// Premultiply so the value is a valid color.RGBA.
	return color.RGBA{
		R: uint8(255 * c.R * c.A),
		G: uint8(255 * c.G * c.A),
		B: uint8(255 * c.B * c.A),
		A: uint8(255 * c.A),
	}, nil
}

// Tier returns the device tier preset for a viewport width.
func (c *Config) Tier(viewWidth int) TierConfig {
	if c.IsMobile(viewWidth) {
		return c.Tiers.Mobile
	}
	return c.Tiers.Desktop
}

// IsMobile reports whether a viewport width falls in the mobile tier.
func (c *Config) IsMobile(viewWidth int) bool {
	return viewWidth < c.Tiers.MobileBreakpoint
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Screen.Width > 0 && c.Screen.Height > 0, "screen: size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	check(c.Screen.TargetFPS > 0, "screen.target_fps must be positive, got %d", c.Screen.TargetFPS)

	check(c.Physics.Damping > 0 && c.Physics.Damping <= 1, "physics.damping must be in (0, 1], got %v", c.Physics.Damping)
	check(c.Physics.MassFactor > 0, "physics.mass_factor must be positive, got %v", c.Physics.MassFactor)
	check(c.Physics.DT > 0, "physics.dt must be positive, got %v", c.Physics.DT)

	check(c.Pointer.Range >= 0, "pointer.range must not be negative, got %v", c.Pointer.Range)

	check(c.Boundary.Policy == BoundarySoft || c.Boundary.Policy == BoundaryClamp,
		"boundary.policy must be %q or %q, got %q", BoundarySoft, BoundaryClamp, c.Boundary.Policy)
	check(c.Boundary.Bounce >= 0 && c.Boundary.Bounce <= 1, "boundary.bounce must be in [0, 1], got %v", c.Boundary.Bounce)

	switch c.Scroll.Mode {
	case ScrollRaw, ScrollEased, ScrollSpring:
	default:
		errs = append(errs, fmt.Errorf("scroll.mode must be raw, eased or spring, got %q", c.Scroll.Mode))
	}
	check(c.Scroll.Damping > 0 && c.Scroll.Damping < 1, "scroll.damping must be in (0, 1), got %v", c.Scroll.Damping)
	check(c.Scroll.Direction == DirectionVertical || c.Scroll.Direction == DirectionRandom,
		"scroll.direction must be %q or %q, got %q", DirectionVertical, DirectionRandom, c.Scroll.Direction)
	if c.Scroll.Mode == ScrollSpring {
		check(c.Scroll.SpringFrequency > 0, "scroll.spring_frequency must be positive, got %v", c.Scroll.SpringFrequency)
	}

	check(c.Floor.PinSpacing > 0, "floor.pin_spacing must be positive, got %v", c.Floor.PinSpacing)
	check(c.Floor.PinRadius > 0, "floor.pin_radius must be positive, got %v", c.Floor.PinRadius)

	check(c.Tiers.MobileBreakpoint >= 0, "tiers.mobile_breakpoint must not be negative")
	for name, tier := range map[string]TierConfig{"desktop": c.Tiers.Desktop, "mobile": c.Tiers.Mobile} {
		check(tier.Count > 0, "tiers.%s.count must be positive, got %d", name, tier.Count)
		check(tier.MinRadius > 0 && tier.MaxRadius >= tier.MinRadius,
			"tiers.%s: radius range must satisfy 0 < min <= max, got [%v, %v]", name, tier.MinRadius, tier.MaxRadius)
		check(tier.FloorFraction > 0 && tier.FloorFraction <= 1,
			"tiers.%s.floor_fraction must be in (0, 1], got %v", name, tier.FloorFraction)
	}

	check(c.Render.Backend == BackendCPU || c.Render.Backend == BackendGPU,
		"render.backend must be %q or %q, got %q", BackendCPU, BackendGPU, c.Render.Backend)
	check(c.Render.Scale > 0 && c.Render.Scale <= 1, "render.scale must be in (0, 1], got %v", c.Render.Scale)
	check(c.Render.Threshold > 0, "render.threshold must be positive, got %v", c.Render.Threshold)
	check(c.Render.Epsilon > 0 && c.Render.GradientEpsilon > 0, "render: epsilons must be positive")
	switch c.Render.Shading {
	case ShadingFlat, ShadingLit, ShadingSmooth:
	default:
		errs = append(errs, fmt.Errorf("render.shading must be flat, lit or smooth, got %q", c.Render.Shading))
	}
	check(c.Render.MaxGPUBlobs > 0, "render.max_gpu_blobs must be positive, got %d", c.Render.MaxGPUBlobs)
	check(c.Render.Workers >= 0, "render.workers must not be negative, got %d", c.Render.Workers)

	check(c.Telemetry.PerfWindow > 0, "telemetry.perf_window must be positive, got %d", c.Telemetry.PerfWindow)

	return errors.Join(errs...)
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
