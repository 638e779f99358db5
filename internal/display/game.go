// Package display hosts the animation in a desktop window driven by ebiten.
package display

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/scene"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/ui"
)

type Game struct {
	ctx     context.Context
	cfg     *config.Config
	opts    scene.Options
	log     *zap.Logger
	updates <-chan *config.Config

	view        *scene.View
	surface     *Surface
	placeholder *render.Renderer
	quit        bool

	outsideW, outsideH int

	// Control panel, hidden until C is pressed
	panel           *ui.Panel
	widgetThreshold *ui.Slider
	widgetLineAlpha *ui.Slider
	widgetLearning  *ui.Checkbox
	widgetStats     *ui.Checkbox
	pointer         ui.Pointer

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // Rolling average in ms
	drawAvg            float64 // Rolling average in ms
}

// NewGame mounts the animation on a window-sized surface. Cancelling ctx
// closes the window. updates may be nil.
func NewGame(ctx context.Context, cfg *config.Config, opts scene.Options, updates <-chan *config.Config, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		ctx:         ctx,
		cfg:         cfg,
		opts:        opts,
		log:         log,
		updates:     updates,
		placeholder: render.NewRenderer(opts.Style),
		outsideW:    cfg.Window.Width,
		outsideH:    cfg.Window.Height,
	}

	panel := ui.NewPanel(10, 10, 240, 260, "Controls (C to hide)")
	panel.Visible = false
	panel.AddSection("Links")
	g.widgetThreshold = panel.AddSlider("Threshold", 20, 300, opts.Style.Threshold)
	g.widgetLineAlpha = panel.AddSlider("Line opacity", 0, 1, opts.Style.LineAlpha)
	panel.EndSection()
	panel.AddSection("Overlay")
	g.widgetLearning = panel.AddCheckbox("Preference vector", opts.Style.Learning)
	g.widgetStats = panel.AddCheckbox("Show stats", cfg.Window.ShowStats)
	panel.AddButton("Reseed", g.reseed)
	panel.EndSection()
	g.panel = panel

	g.mount()
	return g
}

func (g *Game) mount() {
	g.surface = NewSurface(g.outsideW, g.outsideH)
	g.view = scene.Mount(func() (render.Surface, error) {
		if g.outsideW <= 0 || g.outsideH <= 0 {
			return nil, scene.ErrSurfaceUnavailable
		}
		return g.surface, nil
	}, g.opts, g.log)
}

func (g *Game) reseed() {
	g.opts.Seed = uint64(time.Now().UnixNano())
	g.view.Unmount()
	g.mount()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	if g.quit {
		return ebiten.Termination
	}
	select {
	case <-g.ctx.Done():
		g.view.Unmount()
		g.quit = true
		return ebiten.Termination
	default:
	}
	if g.view.Finished() {
		// degraded mount, nothing will ever be drawn
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.view.Unmount()
		g.quit = true
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.panel.Visible = !g.panel.Visible
	}

	mx, my := ebiten.CursorPosition()
	g.pointer = ui.Pointer{X: mx, Y: my, Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)}
	_, wheel := ebiten.Wheel()
	if g.panel.Update(g.pointer, wheel) {
		g.applyWidgets()
	}

	select {
	case cfg := <-g.updates:
		g.applyConfig(cfg)
	default:
	}

	g.view.Step()
	return nil
}

func (g *Game) applyWidgets() {
	s := g.opts.Style
	s.Threshold = g.widgetThreshold.Value
	s.LineAlpha = g.widgetLineAlpha.Value
	if s.Clusters >= 2 {
		s.ClusterThreshold = s.Threshold
		s.ClusterLineAlpha = s.LineAlpha
	}
	s.Learning = g.widgetLearning.Value
	g.opts.Style = s
	g.view.SetStyle(s)
}

func (g *Game) applyConfig(cfg *config.Config) {
	s, err := cfg.Style()
	if err != nil {
		g.log.Warn("ignoring reloaded style", zap.Error(err))
		return
	}
	g.cfg = cfg
	g.opts.Style = s
	g.placeholder.Style = s
	g.widgetThreshold.Value = s.Threshold
	g.widgetLineAlpha.Value = s.LineAlpha
	g.widgetLearning.Value = s.Learning
	g.widgetStats.Value = cfg.Window.ShowStats
	g.view.SetStyle(s)
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	g.surface.Bind(screen)
	defer g.surface.Unbind()
	stats := g.view.Stats()
	if stats.Placeholder {
		// ebiten clears the screen every frame, so the static glow is repainted
		g.placeholder.DrawPlaceholder(g.surface)
	} else {
		g.view.Render(time.Now())
	}

	drawPanel(screen, g.panel, g.pointer)

	if !g.widgetStats.Value {
		return
	}
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms\n\nParticles: %d\nLines:     %d\nBridges:   %d\nFrames:    %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg,
		stats.Particles,
		stats.Last.Lines,
		stats.Last.Bridges,
		stats.Frames)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-170, 10)
}

// Layout keeps one logical pixel per device-independent pixel and tells the
// view about window resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outsideW || outsideHeight != g.outsideH {
		g.outsideW, g.outsideH = outsideWidth, outsideHeight
		g.view.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Close unmounts the view.
func (g *Game) Close() {
	g.view.Unmount()
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, opts scene.Options, updates <-chan *config.Config, log *zap.Logger) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FrameRate)

	g := NewGame(ctx, cfg, opts, updates, log)
	defer g.Close()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}
