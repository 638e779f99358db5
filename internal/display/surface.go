package display

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

const haloRings = 8

// Surface draws onto whatever ebiten screen image was bound last.
type Surface struct {
	screen *ebiten.Image
	w, h   float64
}

// NewSurface reports the given size until a screen is bound.
func NewSurface(w, h int) *Surface {
	return &Surface{w: float64(w), h: float64(h)}
}

// Bind targets the screen passed to Game.Draw.
func (s *Surface) Bind(screen *ebiten.Image) {
	s.screen = screen
	b := screen.Bounds()
	s.w, s.h = float64(b.Dx()), float64(b.Dy())
}

// Unbind forgets the screen once Draw returns; drawing calls made outside
// Draw become no-ops. The last size is kept.
func (s *Surface) Unbind() {
	s.screen = nil
}

func (s *Surface) Size() (float64, float64) { return s.w, s.h }

func (s *Surface) Clear() {
	if s.screen == nil {
		return
	}
	s.screen.Fill(render.Background)
}

func (s *Surface) StrokeLine(from, to geometry.Vector2D, width float64, p render.Paint) {
	if s.screen == nil {
		return
	}
	vector.StrokeLine(s.screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), float32(width), p.NRGBA(), true)
}

func (s *Surface) FillCircle(center geometry.Vector2D, radius float64, p render.Paint) {
	if s.screen == nil || radius <= 0 {
		return
	}
	vector.FillCircle(s.screen, float32(center.X), float32(center.Y), float32(radius), p.NRGBA(), true)
}

// FillHalo approximates the radial gradient with stacked translucent discs.
func (s *Surface) FillHalo(center geometry.Vector2D, radius float64, p render.Paint) {
	if s.screen == nil || radius <= 0 {
		return
	}
	ring := p.WithAlpha(p.Alpha / haloRings).NRGBA()
	for i := 0; i < haloRings; i++ {
		r := radius * float64(haloRings-i) / haloRings
		vector.FillCircle(s.screen, float32(center.X), float32(center.Y), float32(r), ring, true)
	}
}

// Close drops the screen reference.
func (s *Surface) Close() error {
	s.screen = nil
	return nil
}
