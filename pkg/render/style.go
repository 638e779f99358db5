package render

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/particle"
)

// Style holds the constants of one visual variant.
type Style struct {
	// Seeding and motion.
	Count  int
	Spawn  particle.Spawn
	Motion particle.Motion
	// Clusters >= 2 switches to intra-cluster links plus bridges.
	Clusters int

	// Proximity links.
	Threshold float64
	LineAlpha float64
	LineWidth float64
	LinePaint Paint

	// Cluster variant links.
	ClusterThreshold float64
	ClusterLineAlpha float64
	BridgeCount      int
	BridgeWidth      float64
	BridgePaint      Paint

	// Particles. A nil ParticlePaint means each particle uses its own color.
	ParticlePaint  *Paint
	PulseAmplitude float64
	Halo           bool
	HaloScale      float64
	HaloAlpha      float64

	// Learning overlay.
	Learning     bool
	VectorLength float64
	VectorPeriod time.Duration
	VectorWidth  float64
	ArrowSize    float64
	VectorPaint  Paint

	// Reduced-motion placeholder.
	PlaceholderRadius float64
	PlaceholderPaint  Paint
}

var (
	cyan   = color.NRGBA{R: 0x58, G: 0xFF, B: 0xE0, A: 0xFF}
	violet = color.NRGBA{R: 0xA7, G: 0x8B, B: 0xFA, A: 0xFF}
	amber  = color.NRGBA{R: 0xFB, G: 0xBF, B: 0x24, A: 0xFF}
)

// Preset names.
const (
	PresetMesh         = "mesh"
	PresetTwin         = "twin"
	PresetTwinConnect  = "twin-connect"
	PresetTwinLearning = "twin-learning"
)

func meshStyle() Style {
	dot := PaintOf(cyan).WithAlpha(0.6)
	return Style{
		Count: 50,
		Spawn: particle.Spawn{
			MaxSpeed:  0.3,
			RadiusMin: 1,
			RadiusMax: 3,
		},
		Threshold:         120,
		LineAlpha:         0.3,
		LineWidth:         1,
		LinePaint:         PaintOf(violet),
		ParticlePaint:     &dot,
		PlaceholderRadius: 128,
		PlaceholderPaint:  PaintOf(violet).WithAlpha(0.35),
	}
}

func twinStyle() Style {
	return Style{
		Count: 30,
		Spawn: particle.Spawn{
			MaxSpeed:  0.2,
			RadiusMin: 3,
			RadiusMax: 7,
			Palette:   []color.NRGBA{cyan, violet, amber},
			Pulse:     true,
		},
		Motion:            particle.Motion{Clamp: true, PulseStep: 0.05},
		Threshold:         120,
		LineAlpha:         0.2,
		LineWidth:         1,
		LinePaint:         PaintOf(violet),
		ClusterThreshold:  100,
		ClusterLineAlpha:  0.3,
		BridgeCount:       3,
		BridgeWidth:       2,
		BridgePaint:       PaintOf(cyan).WithAlpha(0.4),
		PulseAmplitude:    2,
		Halo:              true,
		HaloScale:         3,
		HaloAlpha:         float64(0x80) / 255,
		VectorLength:      80,
		VectorPeriod:      2 * time.Second,
		VectorWidth:       3,
		ArrowSize:         10,
		VectorPaint:       PaintOf(cyan),
		PlaceholderRadius: 128,
		PlaceholderPaint:  PaintOf(violet).WithAlpha(0.35),
	}
}

var presets = map[string]func() Style{
	PresetMesh: meshStyle,
	PresetTwin: twinStyle,
	PresetTwinConnect: func() Style {
		s := twinStyle()
		s.Clusters = 2
		return s
	},
	PresetTwinLearning: func() Style {
		s := twinStyle()
		s.Learning = true
		return s
	},
}

// Preset returns a fresh copy of the named variant.
func Preset(name string) (Style, error) {
	build, ok := presets[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown variant %q (known: %v)", name, PresetNames())
	}
	return build(), nil
}

// PresetNames lists the variants in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
