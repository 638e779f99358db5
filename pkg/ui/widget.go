// Package ui holds the state of the window control panel widgets. Drawing
// lives with the host so this package stays free of graphics dependencies.
package ui

// Pointer is the mouse state sampled once per update.
type Pointer struct {
	X, Y    int
	Pressed bool
}

func (p Pointer) inside(x, y, w, h float64) bool {
	return float64(p.X) >= x && float64(p.X) <= x+w &&
		float64(p.Y) >= y && float64(p.Y) <= y+h
}

// Widget is anything the panel can lay out.
type Widget interface {
	// Update applies pointer input and reports whether the value changed.
	Update(p Pointer) bool
	Height() float64
	moveTo(y float64)
}

// Slider picks a value in [Min, Max] by clicking or dragging.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider with the default bar height.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{Label: label, Value: value, Min: min, Max: max, X: x, Y: y, W: w, H: 10}
}

func (s *Slider) Update(p Pointer) bool {
	if !p.Pressed || !p.inside(s.X, s.Y, s.W, s.H) {
		return false
	}
	v := s.Min + (float64(p.X)-s.X)/s.W*(s.Max-s.Min)
	v = max(s.Min, min(s.Max, v))
	if v == s.Value {
		return false
	}
	s.Value = v
	return true
}

// Ratio is the filled fraction of the bar.
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Height() float64 { return s.H + 25 }
func (s *Slider) moveTo(y float64) { s.Y = y }

// Checkbox toggles once per press.
type Checkbox struct {
	Label   string
	Value   bool
	X, Y    float64
	Size    float64
	clicked bool
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{Label: label, Value: value, X: x, Y: y, Size: 16}
}

func (c *Checkbox) Update(p Pointer) bool {
	if p.Pressed && p.inside(c.X, c.Y, c.Size, c.Size) {
		if !c.clicked {
			c.Value = !c.Value
			c.clicked = true
			return true
		}
		return false
	}
	c.clicked = false
	return false
}

func (c *Checkbox) Height() float64 { return c.Size + 5 }
func (c *Checkbox) moveTo(y float64) { c.Y = y }

// Button fires OnClick once per press.
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	Size    float64
	OnClick func()
	clicked bool
}

func NewButton(x, y, width float64, label string, onClick func()) *Button {
	return &Button{Label: label, X: x, Y: y, Width: width, Size: 20, OnClick: onClick}
}

func (b *Button) Update(p Pointer) bool {
	if p.Pressed && p.inside(b.X, b.Y, b.Width, b.Size) {
		if !b.clicked {
			b.clicked = true
			if b.OnClick != nil {
				b.OnClick()
			}
			return true
		}
		return false
	}
	b.clicked = false
	return false
}

// Hover reports whether the pointer is over the button.
func (b *Button) Hover(p Pointer) bool { return p.inside(b.X, b.Y, b.Width, b.Size) }

func (b *Button) Height() float64 { return b.Size + 5 }
func (b *Button) moveTo(y float64) { b.Y = y }
