package cli

import (
	"github.com/Carmen-Shannon/oxy-paint/config"
	"github.com/Carmen-Shannon/oxy-paint/engine/projector"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/spf13/cobra"
)

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a decal onto the canvas through the projector",
		Long: `Project projector.decal onto the canvas. The projector casts its corner rays once at start,
maps the rectangle it covers on its own surface onto the rectangle it covers on the canvas and draws
the decal there. The result is saved to the capture directory as projectCapture.

Space restores the projector to its starting pose and projects again. With --watch, edits to the
projector section of the config file are applied on the next frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, rootOpts, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload projector parameters when the config file changes")
	return cmd
}

func runProject(cmd *cobra.Command, opts *RootOptions, watch bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, "project")
	if err != nil {
		return err
	}

	decal, err := s.decal()
	if err != nil {
		s.close()
		return err
	}
	shell := s.projectorShell(decal)
	s.scene.Add(shell)

	proj := projector.NewProjector(
		projector.WithRenderer(s.renderer),
		projector.WithSurfaceQuery(s.scene),
		projector.WithInput(s.input),
		projector.WithProjectorObject(shell),
		projector.WithTargetObject(s.canvas),
		projector.WithDrawMaterial(material.NewMaterial(
			material.WithName("projection draw"),
			material.WithShader(shader.KeyUVProject),
			material.WithTexture(shader.UniformDecalTex, decal),
		)),
		projector.WithBaseTexture(s.base),
		projector.WithParams(cfg.Projector.Params),
		projector.WithCaptureWriter(s.writer),
		projector.WithDefaultDim(cfg.Renderer.DefaultDim),
		projector.WithProjectOnStart(true),
	)

	if watch && opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, func(c *config.Config) {
			proj.SetParams(c.Projector.Params)
		})
		if err != nil {
			s.close()
			return err
		}
		defer w.Close()
	}

	if err := s.run(cmd.Context(), proj); err != nil {
		return err
	}
	rect := proj.Rect()
	cmd.Printf("projected %d times, projector uv %v, target uv %v, captures in %s\n",
		proj.Projections(), rect.Projector, rect.Target, s.writer.Dir())
	return nil
}
