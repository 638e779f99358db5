package render

import (
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/particle"
)

// FrameStats counts what one Render call drew.
type FrameStats struct {
	Lines     int
	Bridges   int
	Particles int
}

// Renderer paints a particle field with a fixed Style.
type Renderer struct {
	Style Style
}

// NewRenderer creates a renderer for the given style.
func NewRenderer(s Style) *Renderer {
	return &Renderer{Style: s}
}

// Connection applies the proximity law: a line exists iff d < threshold and
// its opacity falls linearly from k at distance 0 to 0 at the threshold.
func Connection(a, b geometry.Vector2D, threshold, k float64) (float64, bool) {
	d := a.DistanceTo(b)
	if d >= threshold {
		return 0, false
	}
	return (1 - d/threshold) * k, true
}

// Render draws one frame: clear, links, particles, then the optional overlay.
// elapsed is the time since mount and only drives the learning overlay.
func (r *Renderer) Render(s Surface, f *particle.Field, elapsed time.Duration) FrameStats {
	var stats FrameStats
	s.Clear()

	if f.Clustered() {
		stats.Lines = r.drawClusterLinks(s, f)
		stats.Bridges = r.drawBridges(s, f)
	} else {
		stats.Lines = r.drawLinks(s, f.Particles)
	}

	for i := range f.Particles {
		r.drawParticle(s, &f.Particles[i])
	}
	stats.Particles = len(f.Particles)

	if r.Style.Learning {
		w, h := s.Size()
		r.drawPreferenceVector(s, geometry.Vector2D{X: w / 2, Y: h / 2}, elapsed)
	}

	if p, ok := s.(Presenter); ok {
		p.Present()
	}
	return stats
}

func (r *Renderer) drawLinks(s Surface, ps []particle.Particle) int {
	st := r.Style
	n := 0
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			alpha, ok := Connection(ps[i].Pos, ps[j].Pos, st.Threshold, st.LineAlpha)
			if !ok {
				continue
			}
			s.StrokeLine(ps[i].Pos, ps[j].Pos, st.LineWidth, st.LinePaint.WithAlpha(alpha))
			n++
		}
	}
	return n
}

func (r *Renderer) drawClusterLinks(s Surface, f *particle.Field) int {
	st := r.Style
	n := 0
	for _, c := range f.Clusters {
		for a := 0; a < len(c.Members); a++ {
			for b := a + 1; b < len(c.Members); b++ {
				p1, p2 := f.Particles[c.Members[a]].Pos, f.Particles[c.Members[b]].Pos
				alpha, ok := Connection(p1, p2, st.ClusterThreshold, st.ClusterLineAlpha)
				if !ok {
					continue
				}
				s.StrokeLine(p1, p2, st.LineWidth, st.LinePaint.WithAlpha(alpha))
				n++
			}
		}
	}
	return n
}

// drawBridges links the first BridgeCount members of every cluster pair,
// regardless of distance.
func (r *Renderer) drawBridges(s Surface, f *particle.Field) int {
	st := r.Style
	n := 0
	for i := 0; i < len(f.Clusters); i++ {
		for j := i + 1; j < len(f.Clusters); j++ {
			left := firstN(f.Clusters[i].Members, st.BridgeCount)
			right := firstN(f.Clusters[j].Members, st.BridgeCount)
			for _, a := range left {
				for _, b := range right {
					s.StrokeLine(f.Particles[a].Pos, f.Particles[b].Pos, st.BridgeWidth, st.BridgePaint)
					n++
				}
			}
		}
	}
	return n
}

func firstN(xs []int, n int) []int {
	if len(xs) < n {
		return xs
	}
	return xs[:n]
}

// ParticleRadius is the drawn radius after pulse modulation.
func (r *Renderer) ParticleRadius(p *particle.Particle) float64 {
	radius := p.Radius
	if r.Style.PulseAmplitude != 0 {
		radius += math.Sin(p.Phase) * r.Style.PulseAmplitude
	}
	return math.Max(radius, 0)
}

func (r *Renderer) drawParticle(s Surface, p *particle.Particle) {
	st := r.Style
	paint := PaintOf(p.Color)
	if st.ParticlePaint != nil {
		paint = *st.ParticlePaint
	}
	radius := r.ParticleRadius(p)

	if st.Halo {
		s.FillHalo(p.Pos, radius*st.HaloScale, paint.WithAlpha(st.HaloAlpha))
	}
	s.FillCircle(p.Pos, radius, paint)
}

// PreferenceAngle is the direction of the learning overlay after elapsed time.
func (r *Renderer) PreferenceAngle(elapsed time.Duration) float64 {
	if r.Style.VectorPeriod <= 0 {
		return 0
	}
	return float64(elapsed) / float64(r.Style.VectorPeriod)
}

func (r *Renderer) drawPreferenceVector(s Surface, center geometry.Vector2D, elapsed time.Duration) {
	st := r.Style
	angle := r.PreferenceAngle(elapsed)
	tip := center.Add(geometry.NewVectorPolar(st.VectorLength, angle))
	s.StrokeLine(center, tip, st.VectorWidth, st.VectorPaint)

	back := geometry.NewVectorPolar(st.ArrowSize, angle)
	s.StrokeLine(tip, tip.Sub(back.Rotate(-math.Pi/6)), st.VectorWidth, st.VectorPaint)
	s.StrokeLine(tip, tip.Sub(back.Rotate(math.Pi/6)), st.VectorWidth, st.VectorPaint)
}

// DrawPlaceholder paints the static glow shown instead of the animation when
// reduced motion is requested.
func (r *Renderer) DrawPlaceholder(s Surface) {
	w, h := s.Size()
	s.Clear()
	radius := math.Min(r.Style.PlaceholderRadius, math.Min(w, h)/2)
	s.FillHalo(geometry.Vector2D{X: w / 2, Y: h / 2}, radius, r.Style.PlaceholderPaint)
	if p, ok := s.(Presenter); ok {
		p.Present()
	}
}
