package cli

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/scene"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/waitlist"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

// syncBuffer is written by command goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newApp(t *testing.T, env map[string]string) *app {
	t.Helper()
	return &app{lookup: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := a.rootCmd()
	out := &syncBuffer{}
	root.SetOut(out)
	root.SetErr(out)
	logFile := filepath.Join(t.TempDir(), "meshfield.log")
	root.SetArgs(append([]string{"--log-file", logFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestConfigLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meshfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: twin\nseed: 5\nlog:\n  level: warn\n"), 0o644))

	a := newApp(t, map[string]string{config.EnvVariant: "twin-learning"})
	_, err := execute(t, a, "--config", path, "--seed", "9", "script", "list")
	require.NoError(t, err)
	assert.Equal(t, "twin-learning", a.cfg.Variant, "environment beats the file")
	assert.EqualValues(t, 9, a.cfg.Seed, "flags beat the file")
	assert.False(t, a.logger.Core().Enabled(zapcore.InfoLevel))

	a = newApp(t, map[string]string{config.EnvVariant: "twin-learning"})
	_, err = execute(t, a, "--config", path, "--variant", "twin-connect", "-v", "script", "list")
	require.NoError(t, err)
	assert.Equal(t, "twin-connect", a.cfg.Variant, "flags beat the environment")
	assert.True(t, a.logger.Core().Enabled(zapcore.DebugLevel))
}

func TestConfigErrors(t *testing.T) {
	_, err := execute(t, newApp(t, nil), "--variant", "confetti", "script", "list")
	assert.Error(t, err)

	_, err = execute(t, newApp(t, nil), "--config", filepath.Join(t.TempDir(), "missing.json"), "script", "list")
	assert.Error(t, err)

	_, err = execute(t, newApp(t, map[string]string{config.EnvReducedMotion: "sometimes"}), "script", "list")
	assert.Error(t, err)
}

func TestSnapshotCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	msg, err := execute(t, newApp(t, nil), "--seed", "3", "snapshot", "-n", "5", "--width", "96", "--height", "64", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, msg, "5 frames")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestSnapshot(t *testing.T) {
	style, err := render.Preset(render.PresetMesh)
	require.NoError(t, err)

	stats, err := snapshot(render.NewRaster(200, 120), scene.Options{Style: style, Seed: 1}, 10, zap.NewNop())
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats.Frames)
	assert.Equal(t, style.Count, stats.Particles)

	stats, err = snapshot(render.NewRaster(200, 120), scene.Options{Style: style, ReducedMotion: true}, 10, nil)
	require.NoError(t, err)
	assert.True(t, stats.Placeholder)
	assert.Zero(t, stats.Frames)

	_, err = snapshot(render.NewRaster(10, 10), scene.Options{Style: style}, -1, nil)
	assert.Error(t, err)
}

func TestWaitlistJoin(t *testing.T) {
	db := filepath.Join(t.TempDir(), "waitlist.db")
	env := map[string]string{config.EnvWaitlistDB: db}

	msg, err := execute(t, newApp(t, env), "waitlist", "join", "Ada@Example.com", "-u", "Travel")
	require.NoError(t, err)
	assert.Contains(t, msg, waitlist.MsgSuccess)

	_, err = execute(t, newApp(t, env), "waitlist", "join", "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, waitlist.MsgDuplicate, err.Error())

	_, err = execute(t, newApp(t, env), "waitlist", "join", "nope")
	require.Error(t, err)
	assert.Equal(t, waitlist.MsgInvalid, err.Error())

	msg, err = execute(t, newApp(t, env), "waitlist", "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", msg)
}

func TestWaitlistUnconfigured(t *testing.T) {
	_, err := execute(t, newApp(t, nil), "waitlist", "join", "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, waitlist.MsgUnconfigured, err.Error())
}

func TestScriptList(t *testing.T) {
	msg, err := execute(t, newApp(t, nil), "script", "list")
	require.NoError(t, err)
	for _, name := range []string{"check-in", "group-plan", "relaxation", "twin-demo"} {
		assert.Contains(t, msg, name)
	}

	_, err = execute(t, newApp(t, nil), "script", "play", "nope")
	assert.Error(t, err)
}

func TestScriptPlay(t *testing.T) {
	clock := loop.NewFakeClock(time.Unix(0, 0))
	a := newApp(t, nil)
	a.clk = clock

	done := make(chan struct{})
	var (
		msg string
		err error
	)
	go func() {
		defer close(done)
		msg, err = execute(t, a, "script", "play", "check-in", "--width", "0")
	}()

	// four lines, three pauses
	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool { return clock.Waiters() == 1 }, 2*time.Second, time.Millisecond)
		clock.Advance(5 * time.Second)
	}
	<-done
	require.NoError(t, err)
	assert.Contains(t, msg, "Ask your twin")
	assert.Contains(t, msg, "Where did I spend most time this month?")
	assert.Contains(t, msg, "Bar Kindred")
}

func TestScriptStages(t *testing.T) {
	clock := loop.NewFakeClock(time.Unix(0, 0))
	a := newApp(t, nil)
	a.clk = clock
	root := a.rootCmd()
	out := &syncBuffer{}
	root.SetOut(out)
	root.SetArgs([]string{"--log-file", filepath.Join(t.TempDir(), "log"), "script", "stages", "--interval", "1s"})

	done := make(chan error, 1)
	go func() { done <- root.Execute() }()

	lines := func() int { return strings.Count(out.String(), "\n") }
	require.Eventually(t, func() bool { return lines() == 1 }, 2*time.Second, time.Millisecond)
	for want := 2; want <= 4; want++ {
		clock.Advance(time.Second)
		require.Eventually(t, func() bool { return lines() == want }, 2*time.Second, time.Millisecond)
	}
	require.NoError(t, <-done)
	assert.Zero(t, clock.Tickers())
}

func TestWindowStopsOnInterrupt(t *testing.T) {
	a := newApp(t, nil)
	a.window = func(ctx context.Context, cfg *config.Config, opts scene.Options, updates <-chan *config.Config, log *zap.Logger) error {
		if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("window kept running after SIGINT")
		}
	}
	_, err := execute(t, a, "window")
	require.NoError(t, err)

	_, err = execute(t, newApp(t, nil), "window")
	assert.Error(t, err, "no window support compiled in")
}

func TestVariantHelpListsPresets(t *testing.T) {
	msg, err := execute(t, newApp(t, nil), "--help")
	require.NoError(t, err)
	for _, name := range render.PresetNames() {
		assert.Contains(t, msg, name)
	}
}
