package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Backend    string
	Headless   bool
	MaxFrames  uint64
}

// NewRootCommand creates the root command for the oxy-paint CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "oxy-paint",
		Short: "oxy-paint - paint and project textures onto meshes",
		Long: `Paint strokes onto a mesh by pointing at it, or project a decal onto it through a projector.

Every stroke or projection is drawn by a GPU pass into an accumulation texture that is read back,
reused as the base for the next draw and saved to the capture directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "draw backend override (software|wgpu)")
	cmd.PersistentFlags().BoolVar(&opts.Headless, "headless", false, "run without a window")
	cmd.PersistentFlags().Uint64Var(&opts.MaxFrames, "frames", 0, "stop after this many frames (0 = no limit)")

	cmd.AddCommand(NewPaintCommand(opts))
	cmd.AddCommand(NewProjectCommand(opts))

	return cmd
}

// configureLogging installs the process logger. Verbose output includes per-stroke debug lines.
func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file, or the defaults when none is given, and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Backend != "" {
		cfg.Renderer.Backend = opts.Backend
	}
	if opts.Headless {
		cfg.Window.Headless = true
	}
	if opts.MaxFrames > 0 {
		cfg.Run.MaxFrames = opts.MaxFrames
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
