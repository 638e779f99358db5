// Package cli builds the meshfield command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/scene"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

// WindowFunc opens the desktop window. It is injected by main so this package
// stays free of the graphics driver.
type WindowFunc func(ctx context.Context, cfg *config.Config, opts scene.Options, updates <-chan *config.Config, log *zap.Logger) error

type app struct {
	// Global flags
	configFile    string
	verbose       bool
	logFile       string
	reducedMotion bool
	seed          uint64
	variant       string

	window WindowFunc
	lookup func(string) (string, bool)
	clk    loop.Clock // nil is the real clock

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd returns the meshfield command. window may be nil, in which case
// the window subcommand reports that no display is available.
func NewRootCmd(window WindowFunc) *cobra.Command {
	a := &app{window: window, lookup: os.LookupEnv}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meshfield",
		Short: "meshfield - animated particle mesh backgrounds",
		Long: `meshfield animates a field of drifting particles joined by proximity lines.

It renders in a desktop window, in the terminal or to a PNG snapshot, and
ships the waitlist signup and scripted twin dialogues of the landing page.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (JSON or YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Write logs to this file instead of stderr")
	root.PersistentFlags().BoolVar(&a.reducedMotion, "reduced-motion", false, "Show the static placeholder instead of animating")
	root.PersistentFlags().Uint64Var(&a.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	root.PersistentFlags().StringVar(&a.variant, "variant", "", "Preset: "+strings.Join(render.PresetNames(), ", "))

	root.AddCommand(a.windowCmd())
	root.AddCommand(a.termCmd())
	root.AddCommand(a.snapshotCmd())
	root.AddCommand(a.waitlistCmd())
	root.AddCommand(a.scriptCmd())
	return root
}

// loadConfig layers file, environment and flags, in that order.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if a.configFile != "" {
		var err error
		if cfg, err = config.LoadConfig(a.configFile); err != nil {
			return err
		}
	}
	if err := a.finish(cmd)(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// finish returns the override step shared by startup and hot reload.
func (a *app) finish(cmd *cobra.Command) func(*config.Config) error {
	flags := cmd.Flags()
	return func(cfg *config.Config) error {
		if err := cfg.ApplyEnv(a.lookup); err != nil {
			return err
		}
		if flags.Changed("reduced-motion") {
			cfg.ReducedMotion = a.reducedMotion
		}
		if flags.Changed("seed") {
			cfg.Seed = a.seed
		}
		if flags.Changed("variant") {
			cfg.Variant = a.variant
		}
		return cfg.Validate()
	}
}

func (a *app) initLogger() error {
	zc := zap.NewProductionConfig()
	if a.cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if a.logFile != "" {
		zc.OutputPaths = []string{a.logFile}
		zc.ErrorOutputPaths = []string{a.logFile}
	}
	if a.logger, err = zc.Build(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// watch starts a config watcher when a file was given. The returned stop
// function is always safe to call.
func (a *app) watch(ctx context.Context, cmd *cobra.Command, log *zap.Logger) (<-chan *config.Config, func()) {
	if a.configFile == "" {
		return nil, func() {}
	}
	w, err := config.NewWatcher(a.configFile, a.finish(cmd), log)
	if err != nil {
		log.Warn("config hot reload disabled", zap.Error(err))
		return nil, func() {}
	}
	if err := w.Start(ctx); err != nil {
		log.Warn("config hot reload disabled", zap.Error(err))
		w.Stop()
		return nil, func() {}
	}
	return w.Updates(), w.Stop
}

func (a *app) options() (scene.Options, error) {
	return scene.OptionsFromConfig(a.cfg)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
