package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/projector"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownBackend is returned when renderer.backend names no draw backend.
	ErrUnknownBackend = errors.New("config: unknown renderer backend")
	// ErrUnknownFileType is returned for config files that are neither YAML nor TOML.
	ErrUnknownFileType = errors.New("config: unknown file type")
	// ErrInvalid is returned when a value is out of range.
	ErrInvalid = errors.New("config: invalid value")
)

// Canvas shapes.
const (
	ShapeQuad     = "quad"
	ShapeCylinder = "cylinder"
	ShapeMesh     = "mesh"
)

// Config is the complete runtime configuration of oxy-paint.
type Config struct {
	Window    WindowConfig    `yaml:"window" toml:"window"`
	Renderer  RendererConfig  `yaml:"renderer" toml:"renderer"`
	Run       RunConfig       `yaml:"run" toml:"run"`
	Canvas    CanvasConfig    `yaml:"canvas" toml:"canvas"`
	Paint     PaintConfig     `yaml:"paint" toml:"paint"`
	Projector ProjectorConfig `yaml:"projector" toml:"projector"`
	Capture   CaptureConfig   `yaml:"capture" toml:"capture"`
	Script    []input.Event   `yaml:"script" toml:"script"`
}

// WindowConfig sizes the interactive window. Headless runs use the size as their viewport.
type WindowConfig struct {
	Title    string `yaml:"title" toml:"title"`
	Width    int    `yaml:"width" toml:"width"`
	Height   int    `yaml:"height" toml:"height"`
	Headless bool   `yaml:"headless" toml:"headless"`
}

// RendererConfig selects the draw backend.
type RendererConfig struct {
	Backend       string `yaml:"backend" toml:"backend"`
	DefaultDim    int    `yaml:"default_dim" toml:"default_dim"`
	ForceFallback bool   `yaml:"force_fallback" toml:"force_fallback"`
	Uncapped      bool   `yaml:"uncapped" toml:"uncapped"`
}

// RunConfig bounds the frame loop.
type RunConfig struct {
	MaxFrames  uint64  `yaml:"max_frames" toml:"max_frames"`
	FrameLimit float64 `yaml:"frame_limit" toml:"frame_limit"`
	Profiling  bool    `yaml:"profiling" toml:"profiling"`
}

// CanvasConfig describes the painted surface. Width and Height apply to quads, Path to glTF meshes,
// the rest to cylinders.
type CanvasConfig struct {
	Shape        string  `yaml:"shape" toml:"shape"`
	Width        float32 `yaml:"width" toml:"width"`
	Height       float32 `yaml:"height" toml:"height"`
	Radius       float32 `yaml:"radius" toml:"radius"`
	Length       float32 `yaml:"length" toml:"length"`
	Degrees      float32 `yaml:"degrees" toml:"degrees"`
	Subdivisions int     `yaml:"subdivisions" toml:"subdivisions"`
	Path         string  `yaml:"path" toml:"path"`
}

// PaintConfig is the brush and the starting texture.
type PaintConfig struct {
	BaseTexture string     `yaml:"base_texture" toml:"base_texture"`
	BrushColor  [4]float32 `yaml:"brush_color" toml:"brush_color"`
	BrushRadius [2]float32 `yaml:"brush_radius" toml:"brush_radius"`
}

// ProjectorConfig is the projector geometry plus the decal it projects and where the projector stands.
// A zero rotation_difference would collapse the projected rectangle to a line, so it defaults to 30.
type ProjectorConfig struct {
	projector.Params `yaml:",inline"`
	Decal            string     `yaml:"decal" toml:"decal"`
	Position         [3]float32 `yaml:"position" toml:"position"`
}

// CaptureConfig is where and how textures are persisted.
type CaptureConfig struct {
	Dir     string `yaml:"dir" toml:"dir"`
	Format  string `yaml:"format" toml:"format"`
	Workers int    `yaml:"workers" toml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file, fills unset values with defaults and validates the result.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes config data of the given file type, fills defaults and validates.
//
// Parameters:
//   - data: the encoded config
//   - ext: the file extension selecting the decoder, with or without the leading dot
//
// Returns:
//   - *Config: the decoded configuration
//   - error: ErrUnknownFileType, a decode error, or a validation error
func Parse(data []byte, ext string) (*Config, error) {
	c := &Config{}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFileType, ext)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Window.Title = common.Coalesce(c.Window.Title, "oxy-paint")
	c.Window.Width = common.Coalesce(c.Window.Width, 1280)
	c.Window.Height = common.Coalesce(c.Window.Height, 720)

	c.Renderer.Backend = common.Coalesce(c.Renderer.Backend, renderer.BackendTypeSoftware.String())
	c.Renderer.DefaultDim = common.Coalesce(c.Renderer.DefaultDim, 1024)

	c.Canvas.Shape = common.Coalesce(c.Canvas.Shape, ShapeQuad)
	c.Canvas.Width = common.Coalesce(c.Canvas.Width, 3)
	c.Canvas.Height = common.Coalesce(c.Canvas.Height, 3)
	c.Canvas.Radius = common.Coalesce(c.Canvas.Radius, 1)
	c.Canvas.Length = common.Coalesce(c.Canvas.Length, 2)
	c.Canvas.Degrees = common.Coalesce(c.Canvas.Degrees, 360)
	c.Canvas.Subdivisions = common.Coalesce(c.Canvas.Subdivisions, 32)

	c.Paint.BrushColor = common.Coalesce(c.Paint.BrushColor, [4]float32(shader.DefaultBrushColor))
	c.Paint.BrushRadius = common.Coalesce(c.Paint.BrushRadius, [2]float32{shader.DefaultBrushRadius[0], shader.DefaultBrushRadius[1]})

	def := projector.DefaultParams()
	p := &c.Projector.Params
	p.Radius = common.Coalesce(p.Radius, def.Radius)
	p.Width = common.Coalesce(p.Width, def.Width)
	p.RotationDifference = common.Coalesce(p.RotationDifference, 30)
	p.Delta = common.Coalesce(p.Delta, def.Delta)
	p.MaxDistance = common.Coalesce(p.MaxDistance, def.MaxDistance)
	c.Projector.Position = common.Coalesce(c.Projector.Position, [3]float32{0, 0, 1.25})

	c.Capture.Dir = common.Coalesce(c.Capture.Dir, "captures")
	c.Capture.Format = common.Coalesce(c.Capture.Format, string(capture.FormatPNG))
	c.Capture.Workers = common.Coalesce(c.Capture.Workers, 2)
}

// Validate checks every value the run depends on.
//
// Returns:
//   - error: the first problem found, wrapping ErrUnknownBackend, capture.ErrUnsupportedFormat or ErrInvalid
func (c *Config) Validate() error {
	if _, err := c.Backend(); err != nil {
		return err
	}
	if _, err := c.CaptureFormat(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Renderer.DefaultDim <= 0 {
		return fmt.Errorf("%w: renderer.default_dim %d", ErrInvalid, c.Renderer.DefaultDim)
	}
	switch c.Canvas.Shape {
	case ShapeQuad, ShapeCylinder:
	case ShapeMesh:
		if c.Canvas.Path == "" {
			return fmt.Errorf("%w: canvas.path is required for mesh canvases", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: canvas.shape %q", ErrInvalid, c.Canvas.Shape)
	}
	if c.Projector.Radius <= 0 || c.Projector.Width <= 0 || c.Projector.MaxDistance <= 0 {
		return fmt.Errorf("%w: projector radius, width and max_distance must be positive", ErrInvalid)
	}
	if c.Capture.Workers < 1 {
		return fmt.Errorf("%w: capture.workers %d", ErrInvalid, c.Capture.Workers)
	}
	if _, err := input.NewScript(c.Script); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Backend resolves renderer.backend.
//
// Returns:
//   - renderer.BackendType: the backend type
//   - error: ErrUnknownBackend if the name is not "software" or "wgpu"
func (c *Config) Backend() (renderer.BackendType, error) {
	switch strings.ToLower(c.Renderer.Backend) {
	case renderer.BackendTypeSoftware.String():
		return renderer.BackendTypeSoftware, nil
	case renderer.BackendTypeWGPU.String():
		return renderer.BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Renderer.Backend)
	}
}

// CaptureFormat resolves capture.format.
func (c *Config) CaptureFormat() (capture.Format, error) {
	return capture.ParseFormat(c.Capture.Format)
}
