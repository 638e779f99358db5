package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlider_Update(t *testing.T) {
	s := NewSlider(10, 10, 100, "Threshold", 0, 200, 120)

	assert.False(t, s.Update(Pointer{X: 60, Y: 15}), "hover without press")
	assert.True(t, s.Update(Pointer{X: 60, Y: 15, Pressed: true}))
	assert.InDelta(t, 100, s.Value, 1e-9)
	assert.InDelta(t, 0.5, s.Ratio(), 1e-9)

	assert.False(t, s.Update(Pointer{X: 60, Y: 15, Pressed: true}), "same value is not a change")
	assert.False(t, s.Update(Pointer{X: 300, Y: 15, Pressed: true}), "outside the bar")

	s.Update(Pointer{X: 110, Y: 15, Pressed: true})
	assert.Equal(t, 200.0, s.Value)
}

func TestCheckbox_TogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(0, 0, "Learning", false)
	press := Pointer{X: 5, Y: 5, Pressed: true}

	assert.True(t, c.Update(press))
	assert.False(t, c.Update(press), "holding the button does not toggle again")
	assert.True(t, c.Value)

	c.Update(Pointer{X: 5, Y: 5})
	assert.True(t, c.Update(press))
	assert.False(t, c.Value)
}

func TestButton_Click(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 50, "Reseed", func() { clicks++ })
	press := Pointer{X: 10, Y: 10, Pressed: true}

	b.Update(press)
	b.Update(press)
	b.Update(Pointer{})
	b.Update(press)
	assert.Equal(t, 2, clicks)
	assert.True(t, b.Hover(Pointer{X: 49, Y: 19}))
	assert.False(t, b.Hover(Pointer{X: 51, Y: 0}))
}

func TestPanel_Layout(t *testing.T) {
	p := NewPanel(10, 10, 200, 300, "Controls")
	p.AddSection("Links")
	th := p.AddSlider("Threshold", 40, 240, 120)
	p.EndSection()
	p.AddSection("Overlay")
	learn := p.AddCheckbox("Learning vector", false)
	p.EndSection()

	rows := p.Layout()
	require.Len(t, rows, 4)
	assert.Equal(t, "Links", rows[0].Header)
	assert.Equal(t, 40.0, rows[0].Y)
	assert.Same(t, th, rows[1].Widget)
	assert.Equal(t, 65.0, rows[1].Y)
	assert.Equal(t, 80.0, th.Y, "widget sits below its label")
	assert.Equal(t, "Overlay", rows[2].Header)
	assert.Equal(t, 100.0, rows[2].Y)
	assert.Same(t, learn, rows[3].Widget)
	assert.Equal(t, 140.0, learn.Y)

	assert.Equal(t, 30+2*25+35+21.0, p.ContentHeight())
}

func TestPanel_UpdateAndScroll(t *testing.T) {
	p := NewPanel(0, 0, 200, 100, "Controls")
	p.AddSection("Overlay")
	c := p.AddCheckbox("Stats", false)
	for i := 0; i < 10; i++ {
		p.AddCheckbox("filler", false)
	}
	p.EndSection()

	assert.True(t, p.Update(Pointer{X: int(c.X) + 2, Y: int(c.Y) + 2, Pressed: true}, 0))
	assert.True(t, c.Value)

	p.Update(Pointer{}, -100)
	assert.Equal(t, p.ContentHeight()-p.Height+40, p.ScrollOffset, "scroll is clamped")
	p.Update(Pointer{}, 100)
	assert.Zero(t, p.ScrollOffset)

	p.Visible = false
	assert.False(t, p.Update(Pointer{X: 1, Y: 1, Pressed: true}, 0))
	assert.False(t, p.Contains(Pointer{X: 1, Y: 1}))
}
