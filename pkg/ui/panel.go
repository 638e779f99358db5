package ui

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
	margin        = 10.0
)

// Section groups consecutive widgets under a header.
type Section struct {
	Title      string
	StartIndex int
	EndIndex   int
}

// Panel stacks widgets vertically in a scrollable box.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	Widgets       []Widget
	ScrollOffset  float64
	Visible       bool

	sections []Section
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{X: x, Y: y, Width: width, Height: height, Title: title, Visible: true}
}

func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, Section{Title: title, StartIndex: len(p.Widgets), EndIndex: len(p.Widgets)})
}

// EndSection closes the current section.
func (p *Panel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].EndIndex = len(p.Widgets)
	}
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.Width-2*margin, label, min, max, value)
	p.add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	p.Widgets = append(p.Widgets, w)
	p.Layout()
}

// Row is one visible line of the laid-out panel.
type Row struct {
	Y      float64
	Header string // set for section headers
	Widget Widget
}

// Layout positions every widget for the current scroll offset and returns the
// rows in drawing order.
func (p *Panel) Layout() []Row {
	var rows []Row
	y := p.Y + titleHeight - p.ScrollOffset
	placed := 0
	place := func(end int) {
		for ; placed < end && placed < len(p.Widgets); placed++ {
			w := p.Widgets[placed]
			w.moveTo(y + labelHeight)
			rows = append(rows, Row{Y: y, Widget: w})
			y += w.Height()
		}
	}
	for i, s := range p.sections {
		place(s.StartIndex)
		rows = append(rows, Row{Y: y, Header: s.Title})
		y += sectionHeight
		end := s.EndIndex
		if i == len(p.sections)-1 && end < len(p.Widgets) {
			end = len(p.Widgets)
		}
		place(end)
	}
	place(len(p.Widgets))
	return rows
}

// ContentHeight is the unscrolled height of everything in the panel.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight + float64(len(p.sections))*sectionHeight
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

// Contains reports whether the pointer is over the panel.
func (p *Panel) Contains(ptr Pointer) bool {
	return p.Visible && ptr.inside(p.X, p.Y, p.Width, p.Height)
}

// Update scrolls by wheel notches and feeds the pointer to every widget. It
// reports whether any widget value changed.
func (p *Panel) Update(ptr Pointer, wheel float64) bool {
	if !p.Visible {
		return false
	}
	if wheel != 0 {
		p.ScrollOffset -= wheel * 20
		maxScroll := max(0, p.ContentHeight()-p.Height+40)
		p.ScrollOffset = max(0, min(maxScroll, p.ScrollOffset))
	}
	p.Layout()
	changed := false
	for _, w := range p.Widgets {
		if w.Update(ptr) {
			changed = true
		}
	}
	return changed
}
