package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/script"
)

func (a *app) scriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Play the built-in twin dialogues",
	}
	cmd.AddCommand(a.scriptListCmd())
	cmd.AddCommand(a.scriptPlayCmd())
	cmd.AddCommand(a.scriptStagesCmd())
	return cmd
}

func (a *app) scriptListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range script.Names() {
				s, _ := script.Lookup(name)
				fmt.Fprintf(out(cmd), "%-12s %s (%d lines, %s)\n", name, s.Title, len(s.Lines), s.Duration())
			}
			return nil
		},
	}
}

func (a *app) scriptPlayCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "play NAME",
		Short: "Play a script with its original timing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Lookup(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return play(ctx, cmd, script.NewPlayer(a.clock()), s, width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 72, "Wrap lines at this width (0 disables wrapping)")
	return cmd
}

func play(ctx context.Context, cmd *cobra.Command, p *script.Player, s script.Script, width int) error {
	w := out(cmd)
	fmt.Fprintln(w, script.FormatTitle(s))
	err := p.Play(ctx, s, func(l script.Line) {
		fmt.Fprintln(w, script.Format(l, width))
	})
	if errors.Is(err, context.Canceled) {
		// interrupted by the user
		return nil
	}
	return err
}

func (a *app) scriptStagesCmd() *cobra.Command {
	var (
		rounds   int
		interval = script.StageInterval
	)
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Rotate the twin demo stage indicator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return stages(ctx, cmd, a.clock(), interval, rounds)
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 1, "Full rotations before exiting (0 runs until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", interval, "Time on each stage")
	return cmd
}

func stages(ctx context.Context, cmd *cobra.Command, clock loop.Clock, interval time.Duration, rounds int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := out(cmd)
	limit := rounds * len(script.TwinStages)
	shown := 0
	err := script.Cycle(ctx, clock, interval, script.TwinStages, func(i int, label string) {
		fmt.Fprintln(w, script.FormatStages(script.TwinStages, i))
		shown++
		if limit > 0 && shown >= limit {
			cancel()
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) clock() loop.Clock {
	if a.clk != nil {
		return a.clk
	}
	return loop.RealClock{}
}
