package script

import (
	"math"
	"time"
)

// Counter is the value a count-up animation towards end shows after elapsed,
// easing out cubically over duration.
func Counter(end float64, elapsed, duration time.Duration) float64 {
	if duration <= 0 || elapsed >= duration {
		return end
	}
	if elapsed <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(duration)
	return end * (1 - math.Pow(1-p, 3))
}
