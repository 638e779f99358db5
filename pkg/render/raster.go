package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
)

const (
	circleSegments = 32
	haloRings      = 12
)

// Background is the color every surface clears to.
var Background = color.NRGBA{R: 0x0B, G: 0x0D, B: 0x17, A: 0xFF}

// Raster is an anti-aliased in-memory Surface backed by an *image.RGBA.
type Raster struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewRaster allocates a width x height pixel surface.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

// Image exposes the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

// Size implements Surface.
func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear implements Surface.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

// StrokeLine implements Surface by filling the quad around the segment.
func (r *Raster) StrokeLine(from, to geometry.Vector2D, width float64, p Paint) {
	dir := to.Sub(from)
	if dir.LenSqr() < geometry.Epsilon {
		return
	}
	half := math.Max(width, 1) / 2
	n := geometry.Vector2D{X: -dir.Y, Y: dir.X}.Normalize().Mul(half)

	r.begin()
	r.moveTo(from.Add(n))
	r.lineTo(to.Add(n))
	r.lineTo(to.Sub(n))
	r.lineTo(from.Sub(n))
	r.fill(p)
}

// FillCircle implements Surface.
func (r *Raster) FillCircle(center geometry.Vector2D, radius float64, p Paint) {
	if radius <= 0 {
		return
	}
	r.begin()
	r.disc(center, radius)
	r.fill(p)
}

// FillHalo implements Surface with concentric discs whose alpha accumulates
// toward the center.
func (r *Raster) FillHalo(center geometry.Vector2D, radius float64, p Paint) {
	if radius <= 0 {
		return
	}
	ring := p.WithAlpha(p.Alpha / haloRings)
	for i := 0; i < haloRings; i++ {
		rr := radius * float64(haloRings-i) / haloRings
		r.begin()
		r.disc(center, rr)
		r.fill(ring)
	}
}

// EncodePNG writes the current frame as a PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) begin() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *Raster) disc(center geometry.Vector2D, radius float64) {
	for i := 0; i <= circleSegments; i++ {
		pt := center.Add(geometry.NewVectorPolar(radius, 2*math.Pi*float64(i)/circleSegments))
		if i == 0 {
			r.moveTo(pt)
			continue
		}
		r.lineTo(pt)
	}
}

func (r *Raster) moveTo(v geometry.Vector2D) { r.z.MoveTo(float32(v.X), float32(v.Y)) }
func (r *Raster) lineTo(v geometry.Vector2D) { r.z.LineTo(float32(v.X), float32(v.Y)) }

func (r *Raster) fill(p Paint) {
	r.z.ClosePath()
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(p.NRGBA()), image.Point{})
}
