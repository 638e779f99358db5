package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval approximates a 60 Hz display refresh
const DefaultInterval = time.Second / 60

// State of a loop
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// FrameFunc is called once per tick with the clock time of the tick
type FrameFunc func(now time.Time)

// Loop calls a FrameFunc on every tick of a Clock.
// A Loop may be restarted after Stop.
type Loop struct {
	clock    Clock
	interval time.Duration
	frame    FrameFunc

	mu       sync.Mutex
	running  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	frames atomic.Uint64
}

// New creates a stopped loop. A nil clock means RealClock and a
// non-positive interval means DefaultInterval.
func New(clock Clock, interval time.Duration, frame FrameFunc) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{clock: clock, interval: interval, frame: frame}
}

// Start begins ticking. It returns false if the loop was already running.
func (l *Loop) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running.CompareAndSwap(false, true) {
		return false
	}
	l.stopChan = make(chan struct{})
	ticker := l.clock.NewTicker(l.interval)
	l.wg.Add(1)
	go l.run(ticker, l.stopChan)
	return true
}

// Stop halts the loop and waits for an in-flight frame to finish. No frame
// runs after Stop returns. Stop must not be called from inside the frame.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	close(l.stopChan)
	l.wg.Wait()
}

// State reports whether the loop is ticking
func (l *Loop) State() State {
	if l.running.Load() {
		return Running
	}
	return Stopped
}

// Frames counts frames delivered since New
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

func (l *Loop) run(ticker Ticker, stop <-chan struct{}) {
	defer l.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			// select picks randomly when both are ready
			select {
			case <-stop:
				return
			default:
			}
			l.frame(now)
			l.frames.Add(1)
		}
	}
}
