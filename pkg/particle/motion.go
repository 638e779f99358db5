package particle

import "math"

// Motion configures the integrator.
type Motion struct {
	// Clamp pulls a particle back inside the surface on the frame it crosses an
	// edge. Without it the particle may sit outside for one frame.
	Clamp bool
	// PulseStep is added to Phase every frame; zero disables the pulse.
	PulseStep float64
}

// Step advances every particle by exactly one frame: explicit Euler with a
// constant frame time, then an elastic reflection on each axis.
func Step(particles []Particle, width, height float64, m Motion) {
	for i := range particles {
		p := &particles[i]
		p.Pos = p.Pos.Add(p.Vel)

		if p.Pos.X < 0 || p.Pos.X > width {
			p.Vel.X = -p.Vel.X
		}
		if p.Pos.Y < 0 || p.Pos.Y > height {
			p.Vel.Y = -p.Vel.Y
		}
		if m.Clamp {
			p.Pos = p.Pos.Clamp(width, height)
		}

		if m.PulseStep != 0 {
			p.Phase = math.Mod(p.Phase+m.PulseStep, 2*math.Pi)
		}
	}
}

// Reproject rescales positions from the old surface size to the new one so
// every particle keeps its relative place. Velocities are untouched.
func Reproject(particles []Particle, oldW, oldH, newW, newH float64) {
	if oldW <= 0 || oldH <= 0 {
		for i := range particles {
			particles[i].Pos = particles[i].Pos.Clamp(newW, newH)
		}
		return
	}
	sx, sy := newW/oldW, newH/oldH
	for i := range particles {
		particles[i].Pos = particles[i].Pos.Scale(sx, sy).Clamp(newW, newH)
	}
}
