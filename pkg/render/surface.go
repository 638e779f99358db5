// Package render turns particle field state into drawing operations on a
// Surface. Surfaces exist for ebiten windows, terminals, in-memory images and
// test recorders.
package render

import (
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
)

// Paint is an RGB base color with a separate opacity in [0, 1].
type Paint struct {
	R, G, B uint8
	Alpha   float64
}

// PaintOf converts a non-premultiplied color into a Paint.
func PaintOf(c color.NRGBA) Paint {
	return Paint{R: c.R, G: c.G, B: c.B, Alpha: float64(c.A) / 255}
}

// WithAlpha returns the same color at opacity a.
func (p Paint) WithAlpha(a float64) Paint {
	p.Alpha = a
	return p
}

// NRGBA converts to a standard library color.
func (p Paint) NRGBA() color.NRGBA {
	a := math.Max(0, math.Min(1, p.Alpha))
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: uint8(math.Round(a * 255))}
}

// Surface is a 2D drawing target measured in logical pixels.
type Surface interface {
	Size() (width, height float64)
	Clear()
	StrokeLine(from, to geometry.Vector2D, width float64, p Paint)
	FillCircle(center geometry.Vector2D, radius float64, p Paint)
	// FillHalo paints a radial gradient from p.Alpha at the center to fully
	// transparent at radius.
	FillHalo(center geometry.Vector2D, radius float64, p Paint)
}

// Presenter is implemented by surfaces that buffer a frame until told to show
// it.
type Presenter interface {
	Present()
}
