package render

import (
	"sync"

	"github.com/lao-tseu-is-alive/go-meshfield/pkg/geometry"
)

// OpKind identifies a recorded drawing call.
type OpKind string

const (
	OpClear   OpKind = "clear"
	OpLine    OpKind = "line"
	OpCircle  OpKind = "circle"
	OpHalo    OpKind = "halo"
	OpPresent OpKind = "present"
)

// Op is one recorded drawing call.
type Op struct {
	Kind   OpKind
	From   geometry.Vector2D
	To     geometry.Vector2D
	Radius float64
	Width  float64
	Paint  Paint
}

// Recorder is a Surface that keeps every call for inspection. It is safe for
// use from the frame loop goroutine and a test goroutine at the same time.
type Recorder struct {
	mu     sync.Mutex
	width  float64
	height float64
	ops    []Op
	closed bool
}

// NewRecorder creates a recording surface of the given logical size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Size implements Surface.
func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// SetSize changes the reported size, as a host resize would.
func (r *Recorder) SetSize(width, height float64) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
}

// Clear implements Surface.
func (r *Recorder) Clear() { r.record(Op{Kind: OpClear}) }

// StrokeLine implements Surface.
func (r *Recorder) StrokeLine(from, to geometry.Vector2D, width float64, p Paint) {
	r.record(Op{Kind: OpLine, From: from, To: to, Width: width, Paint: p})
}

// FillCircle implements Surface.
func (r *Recorder) FillCircle(center geometry.Vector2D, radius float64, p Paint) {
	r.record(Op{Kind: OpCircle, From: center, Radius: radius, Paint: p})
}

// FillHalo implements Surface.
func (r *Recorder) FillHalo(center geometry.Vector2D, radius float64, p Paint) {
	r.record(Op{Kind: OpHalo, From: center, Radius: radius, Paint: p})
}

// Present implements Presenter.
func (r *Recorder) Present() { r.record(Op{Kind: OpPresent}) }

// Close marks the surface as released.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Ops returns a copy of everything recorded so far.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets all recorded ops.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = r.ops[:0]
	r.mu.Unlock()
}
