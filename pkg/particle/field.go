package particle

import (
	"fmt"
	"math/rand/v2"
)

// ResizePolicy decides what happens to existing particles when the drawing
// surface changes size.
type ResizePolicy string

const (
	// ResizeReproject scales positions into the new bounds and keeps
	// velocities, phases and cluster membership.
	ResizeReproject ResizePolicy = "reproject"
	// ResizeReseed discards the particles and seeds a fresh set for the new
	// bounds, recomputing clusters.
	ResizeReseed ResizePolicy = "reseed"
)

// ParseResizePolicy accepts the config spelling of a policy.
func ParseResizePolicy(s string) (ResizePolicy, error) {
	switch ResizePolicy(s) {
	case ResizeReproject, "":
		return ResizeReproject, nil
	case ResizeReseed:
		return ResizeReseed, nil
	}
	return "", fmt.Errorf("unknown resize policy %q", s)
}

// Field owns the particles of one mounted animation. It is not safe for
// concurrent use; the frame loop that owns it is the only writer.
type Field struct {
	Particles []Particle
	Clusters  []Cluster
	Width     float64
	Height    float64

	count        int
	spawn        Spawn
	motion       Motion
	clusterCount int
	frames       uint64
}

// NewField seeds count particles on a width x height surface. When
// clusterCount is at least 2 the static cluster grouping is computed once.
func NewField(count int, width, height float64, spawn Spawn, motion Motion, clusterCount int, rng *rand.Rand) *Field {
	f := &Field{
		Width:        width,
		Height:       height,
		count:        count,
		spawn:        spawn,
		motion:       motion,
		clusterCount: clusterCount,
	}
	f.seed(rng)
	return f
}

func (f *Field) seed(rng *rand.Rand) {
	f.Particles = Initialize(f.count, f.Width, f.Height, f.spawn, rng)
	f.Clusters = nil
	if f.clusterCount >= 2 {
		f.Clusters = AssignClusters(f.Particles, f.clusterCount, f.Width, f.Height)
	}
}

// Step advances the field by one frame.
func (f *Field) Step() {
	Step(f.Particles, f.Width, f.Height, f.motion)
	f.frames++
}

// Frames is the number of integrator steps taken so far.
func (f *Field) Frames() uint64 {
	return f.frames
}

// Clustered reports whether lines are restricted to cluster members.
func (f *Field) Clustered() bool {
	return len(f.Clusters) >= 2
}

// Resize applies a new surface size. rng is only consulted by ResizeReseed.
func (f *Field) Resize(width, height float64, policy ResizePolicy, rng *rand.Rand) {
	if width == f.Width && height == f.Height {
		return
	}
	oldW, oldH := f.Width, f.Height
	f.Width, f.Height = width, height

	if policy == ResizeReseed && rng != nil {
		f.seed(rng)
		return
	}
	Reproject(f.Particles, oldW, oldH, width, height)
}
