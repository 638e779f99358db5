package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/scene"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

// Run animates on screen until ctx is cancelled or the user presses Esc, q or
// Ctrl-C. It initializes and finalizes the screen itself. updates may be nil.
func Run(ctx context.Context, screen tcell.Screen, cfg *config.Config, opts scene.Options, updates <-chan *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	surface := NewSurface(screen, cfg.Terminal.CellWidth, cfg.Terminal.CellHeight)
	opts.Loop = true
	view := scene.Mount(func() (render.Surface, error) {
		if w, h := surface.Size(); w <= 0 || h <= 0 {
			return nil, scene.ErrSurfaceUnavailable
		}
		return surface, nil
	}, opts, log)
	defer view.Unmount()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-updates:
			style, err := cfg.Style()
			if err != nil {
				log.Warn("ignoring reloaded style", zap.Error(err))
				continue
			}
			view.SetStyle(style)

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				w, h := surface.Size()
				view.Resize(w, h)
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			}
		}
	}
}
