package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blue  = [4]uint8{0, 0, 255, 255}
	white = [4]uint8{255, 255, 255, 255}
)

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { common.SetLogger(nil) })

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "oxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "oxy-paint", cmd.Use)

	for _, name := range []string{"paint", "project"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	for _, name := range []string{"backend", "headless", "frames"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	project, _, err := cmd.Find([]string{"project"})
	require.NoError(t, err)
	assert.NotNil(t, project.Flags().Lookup("watch"))
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(&RootOptions{Backend: "wgpu", Headless: true, MaxFrames: 7})
	require.NoError(t, err)
	assert.Equal(t, "wgpu", cfg.Renderer.Backend)
	assert.True(t, cfg.Window.Headless)
	assert.Equal(t, uint64(7), cfg.Run.MaxFrames)

	_, err = loadConfig(&RootOptions{Backend: "metal"})
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestPaintHeadlessReplaysScript(t *testing.T) {
	dir := t.TempDir()
	captures := filepath.Join(dir, "captures")
	path := writeConfig(t, dir, `
window:
  width: 100
  height: 100
renderer:
  backend: software
  default_dim: 32
paint:
  brush_color: [0, 0, 1, 1]
  brush_radius: [0.2, 0.5]
capture:
  dir: `+captures+`
script:
  - frame: 1
    kind: press
    x: 50
    y: 50
  - frame: 2
    kind: release
`)

	out, err := executeCLI(t, "--config", path, "paint")
	require.NoError(t, err)
	assert.Contains(t, out, "painted 1 strokes from 1 triggers")

	tex, err := common.LoadTexture(filepath.Join(captures, "paintCapture.png"))
	require.NoError(t, err)
	assert.Equal(t, 32, tex.Width())
	assert.Equal(t, 32, tex.Height())
	assert.Equal(t, blue, tex.At(16, 16), "stroke at the canvas centre")
	assert.Equal(t, white, tex.At(0, 0))
}

func TestProjectHeadlessProjectsOnce(t *testing.T) {
	dir := t.TempDir()
	captures := filepath.Join(dir, "captures")
	path := writeConfig(t, dir, `
renderer:
  backend: software
  default_dim: 32
paint:
  brush_color: [0, 0, 1, 1]
capture:
  dir: `+captures+`
`)

	out, err := executeCLI(t, "--config", path, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "projected 1 times")

	tex, err := common.LoadTexture(filepath.Join(captures, "projectCapture.png"))
	require.NoError(t, err)
	assert.Equal(t, 32, tex.Width())
	assert.Equal(t, blue, tex.At(19, 15), "inside the projected rectangle")
	assert.Equal(t, white, tex.At(2, 16), "left of the projected rectangle")
}

func TestPaintRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "renderer:\n  backend: opengl\n")

	_, err := executeCLI(t, "--config", path, "paint")
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}
