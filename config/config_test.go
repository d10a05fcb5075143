package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
renderer:
  backend: software
  default_dim: 256
canvas:
  shape: cylinder
  subdivisions: 12
paint:
  brush_color: [0, 0, 1, 1]
projector:
  radius: 2.5
  rotation: 15
  rotation_difference: 5
  decal: decal.png
capture:
  dir: out
  format: tiff
script:
  - frame: 2
    kind: press
    x: 10
    y: 20
  - frame: 1
    kind: key
    key: space
`

const tomlConfig = `
[renderer]
backend = "wgpu"

[projector]
width = 3.0
max_distance = 40.0

[capture]
format = "bmp"
workers = 4

[[script]]
frame = 0
kind = "move"
x = 5.0
y = 6.0
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "oxy-paint", c.Window.Title)
	assert.Equal(t, 1024, c.Renderer.DefaultDim)
	assert.Equal(t, ShapeQuad, c.Canvas.Shape)
	assert.Equal(t, float32(20), c.Projector.MaxDistance)
	assert.Equal(t, float32(0.5), c.Projector.Delta)
	assert.Equal(t, "captures", c.Capture.Dir)

	b, err := c.Backend()
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeSoftware, b)
}

func TestLoadYAML(t *testing.T) {
	c, err := Load(writeFile(t, "oxy.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, 256, c.Renderer.DefaultDim)
	assert.Equal(t, ShapeCylinder, c.Canvas.Shape)
	assert.Equal(t, 12, c.Canvas.Subdivisions)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, c.Paint.BrushColor)
	assert.Equal(t, float32(2.5), c.Projector.Radius)
	assert.Equal(t, float32(15), c.Projector.Rotation)
	assert.Equal(t, float32(5), c.Projector.RotationDifference)
	assert.Equal(t, float32(1), c.Projector.Width, "unset values take defaults")
	assert.Equal(t, "decal.png", c.Projector.Decal)

	f, err := c.CaptureFormat()
	require.NoError(t, err)
	assert.Equal(t, capture.FormatTIFF, f)

	require.Len(t, c.Script, 2)
	assert.Equal(t, input.EventPress, c.Script[0].Kind)
	assert.Equal(t, float32(20), c.Script[0].Y)
	assert.Equal(t, "space", c.Script[1].Key)
}

func TestLoadTOML(t *testing.T) {
	c, err := Load(writeFile(t, "oxy.toml", tomlConfig))
	require.NoError(t, err)

	b, err := c.Backend()
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeWGPU, b)
	assert.Equal(t, float32(3), c.Projector.Width)
	assert.Equal(t, float32(40), c.Projector.MaxDistance)
	assert.Equal(t, 4, c.Capture.Workers)
	require.Len(t, c.Script, 1)
	assert.Equal(t, input.EventMove, c.Script[0].Kind)
	assert.Equal(t, float32(6), c.Script[0].Y)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		data   string
		target error
	}{
		{"unknown file type", "oxy.json", "{}", ErrUnknownFileType},
		{"unknown backend", "oxy.yaml", "renderer:\n  backend: vulkan\n", ErrUnknownBackend},
		{"lossy capture format", "oxy.yaml", "capture:\n  format: jpeg\n", capture.ErrUnsupportedFormat},
		{"bad shape", "oxy.yaml", "canvas:\n  shape: sphere\n", ErrInvalid},
		{"mesh without path", "oxy.yaml", "canvas:\n  shape: mesh\n", ErrInvalid},
		{"negative radius", "oxy.toml", "[projector]\nradius = -1.0\n", ErrInvalid},
		{"bad script key", "oxy.yaml", "script:\n  - kind: key\n    key: f13\n", ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "oxy.yaml", "projector:\n  radius: 1\n")

	var mu sync.Mutex
	var radius float32
	w, err := NewWatcher(path, func(c *Config) {
		mu.Lock()
		defer mu.Unlock()
		radius = c.Projector.Radius
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("projector:\n  radius: 3\n"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return radius == 3
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcherSkipsInvalidFiles(t *testing.T) {
	path := writeFile(t, "oxy.yaml", "projector:\n  radius: 1\n")

	var mu sync.Mutex
	var reloads []float32
	w, err := NewWatcher(path, func(c *Config) {
		mu.Lock()
		defer mu.Unlock()
		reloads = append(reloads, c.Projector.Radius)
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("renderer:\n  backend: vulkan\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("projector:\n  radius: 4\n"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloads) > 0 && reloads[len(reloads)-1] == 4
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, r := range reloads {
		assert.Contains(t, []float32{1, 4}, r, "only valid files are delivered")
	}
}
