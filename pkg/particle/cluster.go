package particle

import (
	"math"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
)

// Cluster is a static group of particles captured by a fixed anchor.
type Cluster struct {
	Anchor geometry.Vector2D
	// Members are particle indices in ascending order.
	Members []int
}

// CaptureRadius is the distance under which a particle joins an anchor when
// n anchors share a surface of the given width.
func CaptureRadius(n int, width float64) float64 {
	return width / float64(n+1) / 2
}

// AssignClusters places n anchors evenly along the horizontal midline and puts
// every particle into the nearest anchor strictly within the capture radius.
// Particles are mutated in place (Cluster field). The grouping is computed from
// the current positions only and is never refreshed as the particles move.
func AssignClusters(particles []Particle, n int, width, height float64) []Cluster {
	for i := range particles {
		particles[i].Cluster = NoCluster
	}
	if n <= 0 {
		return nil
	}

	clusters := make([]Cluster, n)
	spacing := width / float64(n+1)
	for i := range clusters {
		clusters[i].Anchor = geometry.Vector2D{X: spacing * float64(i+1), Y: height / 2}
	}

	capture := CaptureRadius(n, width)
	captureSq := capture * capture
	for idx := range particles {
		best := NoCluster
		bestSq := math.MaxFloat64
		for ci, c := range clusters {
			dSq := particles[idx].Pos.DistanceSquaredTo(c.Anchor)
			if dSq < captureSq && dSq < bestSq {
				best, bestSq = ci, dSq
			}
		}
		if best != NoCluster {
			particles[idx].Cluster = best
			clusters[best].Members = append(clusters[best].Members, idx)
		}
	}
	return clusters
}
