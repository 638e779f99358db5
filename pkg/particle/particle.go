// Package particle holds the state of a particle field and the integrator that
// advances it one display frame at a time.
package particle

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
)

// NoCluster marks a particle that was not captured by any cluster anchor.
const NoCluster = -1

// Particle is one decorative point of the field.
type Particle struct {
	Pos    geometry.Vector2D
	Vel    geometry.Vector2D
	Radius float64
	Color  color.NRGBA
	// Phase drives the pulse modulation, always in [0, 2π).
	Phase float64
	// Cluster is the index into Field.Clusters, or NoCluster.
	Cluster int
}

// Spawn controls how Initialize seeds particles.
type Spawn struct {
	// MaxSpeed is the full width of the velocity range: each component is
	// drawn uniformly from [-MaxSpeed/2, MaxSpeed/2] px/frame.
	MaxSpeed  float64
	RadiusMin float64
	RadiusMax float64
	Palette   []color.NRGBA
	Pulse     bool
}

// Initialize creates count particles spread uniformly over the surface.
// The result depends only on the arguments and the state of rng.
func Initialize(count int, width, height float64, s Spawn, rng *rand.Rand) []Particle {
	if count <= 0 {
		return nil
	}
	particles := make([]Particle, count)
	for i := range particles {
		p := Particle{
			Pos: geometry.Vector2D{
				X: rng.Float64() * width,
				Y: rng.Float64() * height,
			},
			Vel: geometry.Vector2D{
				X: (rng.Float64() - 0.5) * s.MaxSpeed,
				Y: (rng.Float64() - 0.5) * s.MaxSpeed,
			},
			Radius:  s.RadiusMin + rng.Float64()*(s.RadiusMax-s.RadiusMin),
			Cluster: NoCluster,
		}
		if len(s.Palette) > 0 {
			p.Color = s.Palette[rng.IntN(len(s.Palette))]
		}
		if s.Pulse {
			p.Phase = rng.Float64() * 2 * math.Pi
		}
		particles[i] = p
	}
	return particles
}

// NewRand returns the generator used for seeding. A zero seed still yields a
// fixed sequence; callers wanting variety pass a time-derived seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
