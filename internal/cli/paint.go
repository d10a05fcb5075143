package cli

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/paint"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/spf13/cobra"
)

// NewPaintCommand creates the paint command.
func NewPaintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paint",
		Short: "Paint strokes onto the canvas with the left mouse button",
		Long: `Paint strokes onto the canvas. While the left mouse button is held, the pointer is cast into the
scene and a stroke is drawn at the hit surface coordinate. Each stroke is saved to the capture
directory as paintCapture.

When projector.decal is set, a projector surface carrying the decal is placed in front of the canvas
and strokes through it take their colour from the decal.

Headless runs replay the script section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaint(cmd, rootOpts)
		},
	}
	return cmd
}

func runPaint(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, "paint")
	if err != nil {
		return err
	}

	draw := s.brushMaterial()
	if cfg.Projector.Decal != "" {
		decal, err := s.decal()
		if err != nil {
			s.close()
			return err
		}
		draw.SetTexture(shader.UniformDecalTex, decal)
		shell := s.projectorShell(decal)
		shell.SetRole(surface.RoleProjector)
		s.scene.Add(shell)
	}

	acc := paint.NewAccumulator(
		paint.WithRenderer(s.renderer),
		paint.WithCamera(s.cam),
		paint.WithInput(s.input),
		paint.WithSurfaceQuery(s.scene),
		paint.WithTargetObject(s.canvas),
		paint.WithDrawMaterial(draw),
		paint.WithBaseTexture(s.base),
		paint.WithCaptureWriter(s.writer),
		paint.WithDefaultDim(cfg.Renderer.DefaultDim),
		paint.WithViewport(cfg.Window.Width, cfg.Window.Height),
	)
	if err := s.run(cmd.Context(), acc); err != nil {
		return err
	}
	cmd.Printf("painted %d strokes from %d triggers, captures in %s\n", acc.Strokes(), acc.Triggers(), s.writer.Dir())
	return nil
}
