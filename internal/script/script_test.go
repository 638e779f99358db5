package script

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"check-in", "group-plan", "relaxation", "twin-demo"}, Names())
	for _, name := range Names() {
		s, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name)
		require.NotEmpty(t, s.Lines)
		assert.Zero(t, s.Lines[0].Delay, "%s starts immediately", name)
	}
	_, err := Lookup("nope")
	assert.Error(t, err)
}

func TestConversationPauses(t *testing.T) {
	s := conversation("x", "X", "a", "b", "c")
	require.Len(t, s.Lines, 3)
	assert.Equal(t, []time.Duration{0, UserPause, TwinPause}, []time.Duration{s.Lines[0].Delay, s.Lines[1].Delay, s.Lines[2].Delay})
	assert.Equal(t, SpeakerTwin, s.Lines[1].Speaker)
	assert.Equal(t, UserPause+TwinPause, s.Duration())
}

func TestPlay_CumulativeDelays(t *testing.T) {
	clock := loop.NewFakeClock(epoch)
	p := NewPlayer(clock)
	s := Script{Name: "t", Lines: []Line{
		{Speaker: SpeakerUser, Text: "one"},
		{Speaker: SpeakerTwin, Text: "two", Delay: time.Second},
		{Speaker: SpeakerUser, Text: "three", Delay: 2 * time.Second},
	}}

	type stamp struct {
		text string
		at   time.Duration
	}
	got := make(chan stamp, len(s.Lines))
	done := make(chan error, 1)
	go func() {
		done <- p.Play(context.Background(), s, func(l Line) {
			got <- stamp{l.Text, clock.Now().Sub(epoch)}
		})
	}()

	assert.Equal(t, stamp{"one", 0}, <-got)

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	clock.Advance(999 * time.Millisecond)
	select {
	case l := <-got:
		t.Fatalf("line %q emitted early", l.text)
	case <-time.After(20 * time.Millisecond):
	}
	clock.Advance(time.Millisecond)
	assert.Equal(t, stamp{"two", time.Second}, <-got)

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	clock.Advance(2 * time.Second)
	assert.Equal(t, stamp{"three", 3 * time.Second}, <-got)

	require.NoError(t, <-done)
}

func TestPlay_CancelMidPlayback(t *testing.T) {
	clock := loop.NewFakeClock(epoch)
	p := NewPlayer(clock)
	s, err := Lookup("check-in")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var emitted []string
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, s, func(l Line) { emitted = append(emitted, l.Text) })
	}()

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{s.Lines[0].Text}, emitted)

	// nothing more is emitted once cancelled
	clock.Advance(time.Minute)
	assert.Len(t, emitted, 1)
}

func TestPlay_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	err := NewPlayer(loop.NewFakeClock(epoch)).Play(ctx, Script{Lines: []Line{{Text: "x"}}}, func(Line) { n++ })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestCycle(t *testing.T) {
	clock := loop.NewFakeClock(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	stages := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- Cycle(ctx, clock, StageInterval, TwinStages, func(i int, label string) {
			assert.Equal(t, TwinStages[i], label)
			stages <- i
		})
	}()

	assert.Equal(t, 0, <-stages)
	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, time.Second, time.Millisecond)
	for _, want := range []int{1, 2, 3, 0, 1} {
		clock.Advance(StageInterval)
		assert.Equal(t, want, <-stages)
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, clock.Tickers())
}

func TestCycle_NoStages(t *testing.T) {
	err := Cycle(context.Background(), nil, 0, nil, func(int, string) {})
	assert.Error(t, err)
}

func TestCounter(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"start", 0, 0},
		{"before start", -time.Second, 0},
		{"half", time.Second, 87.5},
		{"done", 2 * time.Second, 100},
		{"after", 5 * time.Second, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Counter(100, tt.elapsed, 2*time.Second), 1e-9)
		})
	}
	assert.Equal(t, 42.0, Counter(42, 0, 0))

	prev := 0.0
	for ms := 0; ms <= 2000; ms += 100 {
		v := Counter(10000, time.Duration(ms)*time.Millisecond, 2*time.Second)
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 10000.0)
		prev = v
	}
}

func TestFormat(t *testing.T) {
	out := Format(Line{Speaker: SpeakerTwin, Text: "hello there"}, 0)
	assert.Contains(t, out, SpeakerTwin)
	assert.Contains(t, out, "hello there")
	assert.Equal(t, 2, len(strings.Split(out, "\n")))

	wrapped := Format(Line{Speaker: SpeakerUser, Text: strings.Repeat("word ", 20)}, 20)
	assert.Greater(t, len(strings.Split(wrapped, "\n")), 2)

	bar := FormatStages(TwinStages, 2)
	for _, s := range TwinStages {
		assert.Contains(t, bar, s)
	}
}
