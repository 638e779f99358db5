package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/scene"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/terminal"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

func (a *app) windowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Animate in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.window == nil {
				return errors.New("this build has no window support")
			}
			opts, err := a.options()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			updates, stopWatch := a.watch(ctx, cmd, a.logger)
			defer stopWatch()
			return a.window(ctx, a.cfg, opts, updates, a.logger)
		},
	}
}

func (a *app) termCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Animate in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			// stderr shares the screen, only log when sent to a file
			log := a.logger
			if a.logFile == "" {
				log = zap.NewNop()
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("terminal: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			updates, stopWatch := a.watch(ctx, cmd, log)
			defer stopWatch()
			return terminal.Run(ctx, screen, a.cfg, opts, updates, log)
		},
	}
}

func (a *app) snapshotCmd() *cobra.Command {
	var (
		frames int
		output string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a number of frames and write the last one as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 {
				width = a.cfg.Window.Width
			}
			if height <= 0 {
				height = a.cfg.Window.Height
			}
			opts, err := a.options()
			if err != nil {
				return err
			}
			raster := render.NewRaster(width, height)
			stats, err := snapshot(raster, opts, frames, a.logger)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			if err := raster.EncodePNG(f); err != nil {
				f.Close()
				return fmt.Errorf("snapshot: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			fmt.Fprintf(out(cmd), "wrote %s (%dx%d, %d frames, %d particles, %d lines)\n",
				output, width, height, stats.Frames, stats.Particles, stats.Last.Lines)
			return nil
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 120, "Frames to simulate before capturing")
	cmd.Flags().StringVarP(&output, "out", "o", "meshfield.png", "Output PNG file")
	cmd.Flags().IntVar(&width, "width", 0, "Image width (default: window width)")
	cmd.Flags().IntVar(&height, "height", 0, "Image height (default: window height)")
	return cmd
}

// snapshot steps a view frames times on a fake clock, so the learning
// overlay angle matches what a live view shows after the same time.
func snapshot(raster *render.Raster, opts scene.Options, frames int, log *zap.Logger) (scene.Stats, error) {
	if frames < 0 {
		return scene.Stats{}, fmt.Errorf("snapshot: frames must not be negative, got %d", frames)
	}
	clock := loop.NewFakeClock(time.Unix(0, 0))
	opts.Clock = clock
	opts.Loop = false
	if opts.Interval <= 0 {
		opts.Interval = loop.DefaultInterval
	}
	view := scene.Mount(func() (render.Surface, error) { return raster, nil }, opts, log)
	defer view.Unmount()

	for i := 0; i < frames; i++ {
		clock.Advance(opts.Interval)
		view.Frame(clock.Now())
	}
	if frames == 0 {
		view.Render(clock.Now())
	}
	return view.Stats(), nil
}
