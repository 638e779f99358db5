package script

import (
	"context"
	"errors"
	"time"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
)

// Player emits script lines on a clock.
type Player struct {
	clock loop.Clock
}

// NewPlayer uses the real clock when clock is nil.
func NewPlayer(clock loop.Clock) *Player {
	if clock == nil {
		clock = loop.RealClock{}
	}
	return &Player{clock: clock}
}

// Play calls emit for each line once its delay has elapsed, in order, from
// the calling goroutine. It returns ctx.Err() if cancelled before the last
// line and nil once every line was emitted.
func (p *Player) Play(ctx context.Context, s Script, emit func(Line)) error {
	for _, l := range s.Lines {
		if l.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(l.Delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		emit(l)
	}
	return nil
}

// Cycle emits stage 0 at once and then (stage+1) mod len(stages) every
// interval until ctx is cancelled, which is the only way it returns.
func Cycle(ctx context.Context, clock loop.Clock, interval time.Duration, stages []string, emit func(i int, label string)) error {
	if len(stages) == 0 {
		return errors.New("script: no stages to cycle")
	}
	if clock == nil {
		clock = loop.RealClock{}
	}
	if interval <= 0 {
		interval = StageInterval
	}
	t := clock.NewTicker(interval)
	defer t.Stop()

	stage := 0
	emit(stage, stages[stage])
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			stage = (stage + 1) % len(stages)
			emit(stage, stages[stage])
		}
	}
}
