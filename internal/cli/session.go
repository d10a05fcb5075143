package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/config"
	"github.com/Carmen-Shannon/oxy-paint/engine"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/loader"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/preview"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/renderpass"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-paint/engine/scene"
	"github.com/Carmen-Shannon/oxy-paint/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene object names.
const (
	canvasName  = "canvas"
	previewName = "preview"
	shellName   = "projector"
)

// session is everything a paint or project run shares: the draw stack, the scene and the capture writer.
type session struct {
	cfg      *config.Config
	log      *slog.Logger
	window   window.Window
	renderer renderer.Renderer
	feature  renderpass.Feature
	cam      camera.Camera
	scene    scene.Scene
	input    *input.State
	canvas   game_object.GameObject
	preview  game_object.GameObject
	writer   capture.Writer
	base     *common.Texture
}

// newSession builds the window (unless headless), the renderer with the paint render feature, the camera,
// and a scene holding the canvas and its flat preview card.
func newSession(cfg *config.Config, mode string) (*session, error) {
	s := &session{
		cfg:   cfg,
		log:   common.ComponentLogger("cli").With("mode", mode),
		input: input.NewState(),
	}

	if cfg.Paint.BaseTexture != "" {
		base, err := common.LoadTexture(cfg.Paint.BaseTexture)
		if err != nil {
			return nil, err
		}
		s.base = base
	}

	if err := s.buildRenderer(); err != nil {
		return nil, err
	}

	s.cam = camera.NewCamera(
		camera.WithAspect(float32(cfg.Window.Width)/float32(cfg.Window.Height)),
	)
	if s.window != nil {
		s.cam.SetController(camera.NewOrbitController(
			camera.WithRadius(5),
			camera.WithElevation(0),
			camera.WithRadiusBounds(1.5, 50),
		))
	}

	canvasMesh, meshBase, err := canvasModel(cfg.Canvas)
	if err != nil {
		s.close()
		return nil, err
	}
	if s.base == nil {
		s.base = meshBase
	}
	s.canvas = game_object.NewGameObject(
		game_object.WithName(canvasName),
		game_object.WithModel(canvasMesh),
		game_object.WithMaterial(material.NewMaterial(
			material.WithName("canvas display"),
			material.WithShader(shader.KeyDisplay),
		)),
	)
	s.preview = game_object.NewGameObject(
		game_object.WithName(previewName),
		game_object.WithModel(model.NewQuad(previewName, 1, 1)),
		game_object.WithPosition(previewOffset(canvasMesh), 0, 0),
	)
	s.scene = scene.NewScene(mode, s.cam, scene.WithObjects(s.canvas, s.preview))

	format, err := cfg.CaptureFormat()
	if err != nil {
		s.close()
		return nil, err
	}
	s.writer = capture.NewWriter(
		capture.WithDir(cfg.Capture.Dir),
		capture.WithFormat(format),
		capture.WithWorkers(cfg.Capture.Workers),
	)
	return s, nil
}

func (s *session) buildRenderer() error {
	backend, err := s.cfg.Backend()
	if err != nil {
		return err
	}

	s.feature = renderpass.NewFeature()
	options := []renderer.RendererBuilderOption{renderer.WithFeature(s.feature)}

	if !s.cfg.Window.Headless && backend == renderer.BackendTypeWGPU {
		win, err := window.NewWindow(
			window.WithTitle(s.cfg.Window.Title),
			window.WithSize(s.cfg.Window.Width, s.cfg.Window.Height),
		)
		if err != nil {
			return fmt.Errorf("failed to open window: %w", err)
		}
		s.window = win
		width, height := win.Size()
		options = append(options, renderer.WithSurfaceDescriptor(win.SurfaceDescriptor(), width, height))
	} else if !s.cfg.Window.Headless {
		s.log.Info("software backend has no display surface, running headless")
		s.cfg.Window.Headless = true
	}

	if s.cfg.Renderer.Uncapped {
		options = append(options, renderer.WithPresentMode(renderer.PresentModeUncapped))
	}
	options = append(options, renderer.WithForceFallbackAdapter(s.cfg.Renderer.ForceFallback))

	r, err := renderer.NewRenderer(backend, options...)
	if err != nil {
		if s.window != nil {
			s.window.Close()
		}
		return err
	}
	s.renderer = r
	return nil
}

// canvasModel builds the painted surface described by the canvas config. Mesh canvases also return
// the base colour texture of the file, if any.
func canvasModel(c config.CanvasConfig) (model.Model, *common.Texture, error) {
	switch c.Shape {
	case config.ShapeCylinder:
		m, err := model.NewCylinder(canvasName, c.Radius, c.Length, c.Degrees, c.Subdivisions)
		return m, nil, err
	case config.ShapeMesh:
		asset, err := loader.NewLoader(loader.BackendTypeGLTF).Load(c.Path)
		if err != nil {
			return nil, nil, err
		}
		return asset.Model, asset.BaseTexture, nil
	default:
		return model.NewQuad(canvasName, c.Width, c.Height), nil, nil
	}
}

// previewOffset places the preview card to the right of the canvas bounds.
func previewOffset(m model.Model) float32 {
	var maxX float32
	for _, p := range m.Positions() {
		maxX = max(maxX, p.X())
	}
	return maxX + 1.5
}

// brushMaterial returns the paint draw material configured with the brush.
func (s *session) brushMaterial() material.Material {
	color := s.cfg.Paint.BrushColor
	radius := s.cfg.Paint.BrushRadius
	return material.NewMaterial(
		material.WithName("paint draw"),
		material.WithShader(shader.KeyPaint),
		material.WithVector(shader.UniformBrushColor, mgl32.Vec4(color)),
		material.WithVector(shader.UniformBrushRadius, mgl32.Vec4{radius[0], radius[1], 0, 0}),
	)
}

// decal loads the configured projector decal, or a solid brush-coloured texture when none is set.
func (s *session) decal() (*common.Texture, error) {
	if s.cfg.Projector.Decal != "" {
		return common.LoadTexture(s.cfg.Projector.Decal)
	}
	return common.NewSolidTexture("decal", 64, 64, common.PackColor(mgl32.Vec4(s.cfg.Paint.BrushColor))), nil
}

// projectorShell builds the projector surface: a quad Radius in front of the projector origin, facing
// along its forward axis, so corner rays cross it on their way in.
func (s *session) projectorShell(decal *common.Texture) game_object.GameObject {
	p := s.cfg.Projector
	hw := 1.25 * max(p.Width, p.Radius)
	hh := 1.25 * p.Width
	z := -p.Radius
	mesh := model.NewModel(
		model.WithName(shellName),
		model.WithPositions([]mgl32.Vec3{
			{-hw, -hh, z},
			{hw, -hh, z},
			{-hw, hh, z},
			{hw, hh, z},
		}),
		model.WithUVs([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}),
		model.WithIndices([]uint32{0, 1, 2, 2, 1, 3}),
	)
	return game_object.NewGameObject(
		game_object.WithName(shellName),
		game_object.WithModel(mesh),
		game_object.WithPosition(p.Position[0], p.Position[1], p.Position[2]),
		game_object.WithMaterial(material.NewMaterial(
			material.WithName("projector display"),
			material.WithShader(shader.KeyDisplay),
			material.WithTexture(shader.UniformBaseMap, decal),
		)),
	)
}

// run drives the engine until the window closes, the script finishes, the frame budget is spent or ctx
// is cancelled, then waits for pending captures.
func (s *session) run(ctx context.Context, behaviors ...engine.Behavior) error {
	options := []engine.EngineBuilderOption{
		engine.WithRenderer(s.renderer),
		engine.WithScene(s.scene),
		engine.WithInput(s.input),
		engine.WithProfiling(s.cfg.Run.Profiling),
		engine.WithFrameLimit(s.cfg.Run.FrameLimit),
		engine.WithMaxFrames(s.cfg.Run.MaxFrames),
		engine.WithBehaviors(append(behaviors, preview.NewPreview(s.canvas, s.preview))...),
	}
	if s.window != nil {
		options = append(options, engine.WithWindow(s.window))
		if ctrl := s.cam.Controller(); ctrl != nil {
			s.window.SetScrollCallback(ctrl.Zoom)
			options = append(options, engine.WithBehaviors(newOrbitBehavior(s.cam, s.input)))
		}
	}
	if s.window == nil || len(s.cfg.Script) > 0 {
		script, err := input.NewScript(s.cfg.Script)
		if err != nil {
			s.close()
			return err
		}
		options = append(options, engine.WithScript(script))
	}

	eng := engine.NewEngine(options...)
	s.log.Info("session started", "backend", s.renderer.BackendType().String(), "headless", s.window == nil)
	runErr := eng.Run(ctx)

	if err := s.writer.Close(); err != nil {
		s.log.Error("captures failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	s.log.Info("session ended", "frames", eng.Frame(), "captures", s.writer.Dir())
	return runErr
}

// close releases what newSession created when the engine never ran.
func (s *session) close() {
	if s.writer != nil {
		s.writer.Close()
	}
	if s.renderer != nil {
		s.renderer.Release()
	}
	if s.window != nil {
		s.window.Close()
	}
}
