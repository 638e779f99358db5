// Package scene mounts a particle animation on a host surface and owns its
// lifecycle: seeding, the frame loop, resizes and teardown.
package scene

import (
	"errors"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/particle"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

// ErrSurfaceUnavailable is what acquire functions return when the host has
// nothing to draw on.
var ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

// Options configure one mount.
type Options struct {
	Style         render.Style
	Seed          uint64
	ReducedMotion bool
	ResizePolicy  particle.ResizePolicy

	// Loop attaches an internal frame loop. Hosts that already get a frame
	// callback (ebiten) leave it false and call Step and Render themselves.
	Loop     bool
	Clock    loop.Clock
	Interval time.Duration
}

// OptionsFromConfig resolves the style and timing of a config. A zero seed is
// replaced by one taken from the clock.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	style, err := cfg.Style()
	if err != nil {
		return Options{}, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	interval := loop.DefaultInterval
	if cfg.FrameRate > 0 {
		interval = time.Second / time.Duration(cfg.FrameRate)
	}
	return Options{
		Style:         style,
		Seed:          seed,
		ReducedMotion: cfg.ReducedMotion,
		ResizePolicy:  cfg.Resize(),
		Interval:      interval,
	}, nil
}

// Stats is a snapshot of a view.
type Stats struct {
	State       loop.State
	Placeholder bool
	Frames      uint64
	Particles   int
	Width       float64
	Height      float64
	Last        render.FrameStats
}

// View is one mounted animation.
type View struct {
	mu sync.Mutex

	log      *zap.Logger
	surface  render.Surface
	renderer *render.Renderer
	field    *particle.Field
	rng      *rand.Rand
	policy   particle.ResizePolicy

	clock     loop.Clock
	loop      *loop.Loop
	mountedAt time.Time

	state       loop.State
	placeholder bool
	unmounted   bool
	last        render.FrameStats

	resizePending bool
	pendingW      float64
	pendingH      float64
}

// Mount acquires a surface and starts the animation. It never fails: when the
// surface cannot be acquired the view stays Stopped and draws nothing, and
// when reduced motion is requested a static placeholder is drawn once.
func Mount(acquire func() (render.Surface, error), opts Options, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = loop.RealClock{}
	}
	v := &View{
		log:      log,
		renderer: render.NewRenderer(opts.Style),
		policy:   opts.ResizePolicy,
		clock:    clock,
		state:    loop.Stopped,
	}

	surface, err := acquire()
	if err == nil && surface == nil {
		err = ErrSurfaceUnavailable
	}
	if err != nil {
		log.Debug("animation disabled", zap.Error(err))
		return v
	}
	v.surface = surface
	w, h := surface.Size()

	if opts.ReducedMotion {
		v.placeholder = true
		v.field = &particle.Field{Width: w, Height: h}
		v.renderer.DrawPlaceholder(surface)
		log.Info("reduced motion, showing placeholder", zap.Float64("width", w), zap.Float64("height", h))
		return v
	}

	st := opts.Style
	v.rng = particle.NewRand(opts.Seed)
	v.field = particle.NewField(st.Count, w, h, st.Spawn, st.Motion, st.Clusters, v.rng)
	v.mountedAt = clock.Now()
	v.state = loop.Running
	log.Info("animation mounted",
		zap.Int("particles", len(v.field.Particles)),
		zap.Int("clusters", len(v.field.Clusters)),
		zap.Float64("width", w),
		zap.Float64("height", h),
		zap.Uint64("seed", opts.Seed))

	if opts.Loop {
		v.loop = loop.New(clock, opts.Interval, v.Frame)
		v.loop.Start()
	}
	return v
}

// Frame advances the field one step and renders the result.
func (v *View) Frame(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != loop.Running {
		return
	}
	v.step()
	v.render(now)
}

// Step advances the field without drawing.
func (v *View) Step() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != loop.Running {
		return
	}
	v.step()
}

// Render draws the current field.
func (v *View) Render(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != loop.Running {
		return
	}
	v.render(now)
}

func (v *View) step() {
	if v.resizePending {
		v.resizePending = false
		v.field.Resize(v.pendingW, v.pendingH, v.policy, v.rng)
		v.log.Debug("resized",
			zap.Float64("width", v.pendingW),
			zap.Float64("height", v.pendingH),
			zap.String("policy", string(v.policy)))
	}
	v.field.Step()
}

func (v *View) render(now time.Time) {
	v.last = v.renderer.Render(v.surface, v.field, now.Sub(v.mountedAt))
}

// Resize records new surface dimensions; the next frame applies them.
// Non-positive sizes are ignored.
func (v *View) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.surface == nil {
		return
	}
	if v.placeholder {
		v.field.Width, v.field.Height = width, height
		v.renderer.DrawPlaceholder(v.surface)
		return
	}
	if v.state != loop.Running {
		return
	}
	v.resizePending = true
	v.pendingW, v.pendingH = width, height
}

// SetStyle swaps the drawing constants of a running view. Particle count,
// spawn and motion settings only take effect on the next mount.
func (v *View) SetStyle(s render.Style) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderer.Style = s
}

// Unmount stops the frame loop and then releases the surface. It is safe to
// call more than once.
func (v *View) Unmount() {
	if v.loop != nil {
		v.loop.Stop()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	v.unmounted = true
	v.state = loop.Stopped

	var frames uint64
	if v.field != nil {
		frames = v.field.Frames()
	}
	if c, ok := v.surface.(io.Closer); ok {
		if err := c.Close(); err != nil {
			v.log.Warn("releasing surface", zap.Error(err))
		}
	}
	v.surface = nil
	if frames > 0 || v.placeholder {
		v.log.Info("animation unmounted", zap.Uint64("frames", frames))
	}
}

// State reports whether frames are being produced.
func (v *View) State() loop.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Finished reports that the view will never draw again: it was unmounted,
// or the mount degraded because no surface was available. A reduced-motion
// placeholder is not finished.
func (v *View) Finished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unmounted || (v.state == loop.Stopped && !v.placeholder)
}

// Stats returns a snapshot of the view.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Stats{State: v.state, Placeholder: v.placeholder, Last: v.last}
	if v.field != nil {
		s.Frames = v.field.Frames()
		s.Particles = len(v.field.Particles)
		s.Width, s.Height = v.field.Width, v.field.Height
	}
	return s
}

// Particles copies the current particle state.
func (v *View) Particles() []particle.Particle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.field == nil {
		return nil
	}
	return append([]particle.Particle(nil), v.field.Particles...)
}
