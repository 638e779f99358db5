package display

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/ui"
)

var (
	panelBG     = color.RGBA{R: 40, G: 40, B: 45, A: 230}
	panelBorder = color.RGBA{R: 100, G: 100, B: 110, A: 255}
	sectionBG   = color.RGBA{R: 60, G: 60, B: 70, A: 255}
	widgetLine  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	sliderTrack = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	checkedFill = color.RGBA{R: 88, G: 255, B: 224, A: 255}
	buttonBG    = color.RGBA{R: 80, G: 70, B: 140, A: 255}
	buttonHover = color.RGBA{R: 110, G: 95, B: 190, A: 255}
)

func drawPanel(screen *ebiten.Image, p *ui.Panel, ptr ui.Pointer) {
	if !p.Visible {
		return
	}
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), panelBG, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, panelBorder, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for _, row := range p.Layout() {
		if row.Y < p.Y+20 || row.Y > p.Y+p.Height-20 {
			continue
		}
		if row.Header != "" {
			vector.FillRect(screen, float32(p.X+5), float32(row.Y), float32(p.Width-10), 20, sectionBG, true)
			ebitenutil.DebugPrintAt(screen, row.Header, int(p.X+10), int(row.Y+5))
			continue
		}
		switch w := row.Widget.(type) {
		case *ui.Slider:
			ebitenutil.DebugPrintAt(screen, w.Label, int(p.X+10), int(row.Y))
			drawSlider(screen, w)
		case *ui.Checkbox:
			drawCheckbox(screen, w)
		case *ui.Button:
			drawButton(screen, w, ptr)
		}
	}
}

func drawSlider(screen *ebiten.Image, s *ui.Slider) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), sliderTrack, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), widgetLine, true)
}

func drawCheckbox(screen *ebiten.Image, c *ui.Checkbox) {
	vector.StrokeRect(screen, float32(c.X), float32(c.Y), float32(c.Size), float32(c.Size), 2, widgetLine, true)
	if c.Value {
		vector.FillRect(screen, float32(c.X+2), float32(c.Y+2), float32(c.Size-4), float32(c.Size-4), checkedFill, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(c.Y))
}

func drawButton(screen *ebiten.Image, b *ui.Button, ptr ui.Pointer) {
	bg := buttonBG
	if b.Hover(ptr) {
		bg = buttonHover
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Size), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Size), 2, widgetLine, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+8), int(b.Y+3))
}
