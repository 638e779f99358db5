package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/script"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/tui"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/waitlist"
)

func (a *app) waitlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Join or inspect the waitlist",
	}
	cmd.AddCommand(a.waitlistJoinCmd())
	cmd.AddCommand(a.waitlistFormCmd())
	cmd.AddCommand(a.waitlistCountCmd())
	return cmd
}

// openService wires the configured store, if any, behind the registrar.
func (a *app) openService(ctx context.Context) (*waitlist.Service, func(), error) {
	var (
		ins   waitlist.Inserter
		store *waitlist.Store
	)
	if path := a.cfg.Waitlist.Database; path != "" {
		var err error
		if store, err = waitlist.Open(path); err != nil {
			return nil, nil, err
		}
		ins = store
	}
	svc, err := waitlist.NewService(ctx, ins, a.logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}
	closeAll := func() {
		if err := svc.Close(context.Background()); err != nil {
			a.logger.Warn("waitlist shutdown", zap.Error(err))
		}
		if store != nil {
			store.Close()
		}
	}
	return svc, closeAll, nil
}

func (a *app) waitlistJoinCmd() *cobra.Command {
	var useCase string
	cmd := &cobra.Command{
		Use:   "join EMAIL",
		Short: "Add an email address to the waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll()

			res := svc.Join(cmd.Context(), args[0], useCase)
			if !res.OK() {
				return errors.New(res.Message)
			}
			fmt.Fprintln(out(cmd), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&useCase, "use-case", "u", "", fmt.Sprintf("Main use, one of %q", waitlist.UseCases))
	return cmd
}

func (a *app) waitlistFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Fill in the waitlist form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll()

			final, err := tui.Run(svc, tea.WithContext(cmd.Context()), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(out(cmd)))
			if err != nil {
				return err
			}
			a.logger.Debug("waitlist form closed", zap.Stringer("status", final.Status()))
			return nil
		},
	}
}

func (a *app) waitlistCountCmd() *cobra.Command {
	var animate time.Duration
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print how many people joined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll()

			n, err := svc.Count(cmd.Context())
			if err != nil {
				return err
			}
			if animate > 0 {
				return countUp(cmd, a.clock(), n, animate)
			}
			fmt.Fprintln(out(cmd), n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&animate, "animate", 0, "Count up to the total over this duration")
	return cmd
}

// countUp redraws the eased counter in place at the frame rate.
func countUp(cmd *cobra.Command, clock loop.Clock, n int, d time.Duration) error {
	w := out(cmd)
	start := clock.Now()
	t := clock.NewTicker(loop.DefaultInterval)
	defer t.Stop()
	for {
		elapsed := clock.Now().Sub(start)
		v := script.Counter(float64(n), elapsed, d)
		fmt.Fprintf(w, "\r%d", int(v))
		if elapsed >= d {
			fmt.Fprintln(w)
			return nil
		}
		select {
		case <-cmd.Context().Done():
			fmt.Fprintln(w)
			return cmd.Context().Err()
		case <-t.C():
		}
	}
}
