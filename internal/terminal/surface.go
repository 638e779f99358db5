// Package terminal hosts the animation in a character terminal using tcell.
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

const (
	lineGlyph     = '·'
	particleGlyph = '●'
)

// Surface maps logical pixels onto terminal cells. Each cell covers
// cellW x cellH pixels, so the field keeps its proportions on screen.
type Surface struct {
	screen       tcell.Screen
	cellW, cellH float64
	bg           colorful.Color
}

// NewSurface wraps an initialized screen.
func NewSurface(screen tcell.Screen, cellW, cellH int) *Surface {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	bg, _ := colorful.MakeColor(render.Background)
	return &Surface{screen: screen, cellW: float64(cellW), cellH: float64(cellH), bg: bg}
}

func (s *Surface) Size() (float64, float64) {
	cols, rows := s.screen.Size()
	return float64(cols) * s.cellW, float64(rows) * s.cellH
}

func (s *Surface) Clear() {
	s.screen.Fill(' ', tcell.StyleDefault.Background(toTcell(s.bg)))
}

// cell converts a pixel position to a cell coordinate; ok is false off screen.
func (s *Surface) cell(p geometry.Vector2D) (int, int, bool) {
	x, y := int(math.Floor(p.X/s.cellW)), int(math.Floor(p.Y/s.cellH))
	cols, rows := s.screen.Size()
	return x, y, x >= 0 && y >= 0 && x < cols && y < rows
}

// StrokeLine walks the cells between the end points (DDA) and dots them in
// the paint color blended over whatever background the cell already has.
func (s *Surface) StrokeLine(from, to geometry.Vector2D, _ float64, p render.Paint) {
	fx, fy := from.X/s.cellW, from.Y/s.cellH
	tx, ty := to.X/s.cellW, to.Y/s.cellH
	steps := int(math.Ceil(math.Max(math.Abs(tx-fx), math.Abs(ty-fy))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := geometry.Vector2D{X: (fx + (tx-fx)*t) * s.cellW, Y: (fy + (ty-fy)*t) * s.cellH}
		x, y, ok := s.cell(pt)
		if !ok {
			continue
		}
		bg := s.backgroundAt(x, y)
		s.screen.SetContent(x, y, lineGlyph, nil, tcell.StyleDefault.
			Background(toTcell(bg)).
			Foreground(toTcell(blend(bg, p))))
	}
}

// FillCircle marks the cell under the center; particles are smaller than a cell.
func (s *Surface) FillCircle(center geometry.Vector2D, radius float64, p render.Paint) {
	x, y, ok := s.cell(center)
	if !ok || radius <= 0 {
		return
	}
	bg := s.backgroundAt(x, y)
	s.screen.SetContent(x, y, particleGlyph, nil, tcell.StyleDefault.
		Background(toTcell(bg)).
		Foreground(toTcell(blend(bg, p))))
}

// FillHalo tints cell backgrounds with opacity falling off linearly to zero at
// radius, keeping whatever glyph is already in the cell.
func (s *Surface) FillHalo(center geometry.Vector2D, radius float64, p render.Paint) {
	if radius <= 0 {
		return
	}
	x0, y0, _ := s.cell(center.Sub(geometry.Vector2D{X: radius, Y: radius}))
	x1, y1, _ := s.cell(center.Add(geometry.Vector2D{X: radius, Y: radius}))
	cols, rows := s.screen.Size()
	for y := max(y0, 0); y <= min(y1, rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, cols-1); x++ {
			mid := geometry.Vector2D{X: (float64(x) + 0.5) * s.cellW, Y: (float64(y) + 0.5) * s.cellH}
			d := mid.DistanceTo(center)
			if d >= radius {
				continue
			}
			r, comb, style, _ := s.screen.GetContent(x, y)
			fg, bg, _ := style.Decompose()
			tinted := blend(fromTcell(bg, s.bg), p.WithAlpha(p.Alpha*(1-d/radius)))
			s.screen.SetContent(x, y, r, comb, tcell.StyleDefault.Foreground(fg).Background(toTcell(tinted)))
		}
	}
}

// Present flushes the frame to the terminal.
func (s *Surface) Present() {
	s.screen.Show()
}

func (s *Surface) backgroundAt(x, y int) colorful.Color {
	_, _, style, _ := s.screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return fromTcell(bg, s.bg)
}

func blend(base colorful.Color, p render.Paint) colorful.Color {
	top := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
	a := math.Max(0, math.Min(1, p.Alpha))
	return base.BlendRgb(top, a).Clamped()
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func fromTcell(c tcell.Color, fallback colorful.Color) colorful.Color {
	if c == tcell.ColorDefault || !c.Valid() {
		return fallback
	}
	r, g, b := c.RGB()
	if r < 0 {
		return fallback
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
