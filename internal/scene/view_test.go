package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/config"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/loop"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/particle"
	"github.com/lao-tseu-is-alive/go-meshfield/pkg/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func options(t *testing.T, variant string) Options {
	t.Helper()
	style, err := render.Preset(variant)
	require.NoError(t, err)
	return Options{Style: style, Seed: 3, ResizePolicy: particle.ResizeReproject}
}

func recorderOf(r *render.Recorder) func() (render.Surface, error) {
	return func() (render.Surface, error) { return r, nil }
}

func TestMount_Running(t *testing.T) {
	rec := render.NewRecorder(640, 360)
	v := Mount(recorderOf(rec), options(t, render.PresetMesh), nil)
	defer v.Unmount()

	s := v.Stats()
	assert.Equal(t, loop.Running, s.State)
	assert.Equal(t, 50, s.Particles)
	assert.Equal(t, 640.0, s.Width)
	assert.Zero(t, s.Frames)
	assert.Empty(t, rec.Ops(), "nothing is drawn before the first frame")
}

func TestMount_SurfaceUnavailable(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	v := Mount(func() (render.Surface, error) { return nil, ErrSurfaceUnavailable }, options(t, render.PresetMesh), zap.New(core))

	assert.Equal(t, loop.Stopped, v.State())
	v.Frame(epoch)
	v.Resize(10, 10)
	v.Unmount()
	assert.Zero(t, v.Stats().Frames)
	assert.Equal(t, 1, logs.FilterMessage("animation disabled").Len())

	nilSurface := Mount(func() (render.Surface, error) { return nil, nil }, options(t, render.PresetMesh), nil)
	assert.Equal(t, loop.Stopped, nilSurface.State())
}

func TestMount_ReducedMotion(t *testing.T) {
	rec := render.NewRecorder(800, 600)
	opts := options(t, render.PresetTwin)
	opts.ReducedMotion = true
	opts.Loop = true
	clock := loop.NewFakeClock(epoch)
	opts.Clock = clock
	v := Mount(recorderOf(rec), opts, nil)

	assert.Equal(t, loop.Stopped, v.State())
	s := v.Stats()
	assert.True(t, s.Placeholder)
	assert.Zero(t, s.Particles)
	assert.Equal(t, 1, rec.Count(render.OpHalo))
	assert.Zero(t, rec.Count(render.OpCircle))
	assert.Zero(t, clock.Tickers(), "no loop is scheduled")

	v.Frame(epoch)
	assert.Zero(t, v.Stats().Frames)

	rec.SetSize(400, 300)
	v.Resize(400, 300)
	assert.Equal(t, 2, rec.Count(render.OpHalo), "placeholder is redrawn on resize")

	v.Unmount()
	assert.True(t, rec.Closed())
}

func TestFrame_StepsThenRenders(t *testing.T) {
	rec := render.NewRecorder(300, 200)
	opts := options(t, render.PresetMesh)
	v := Mount(recorderOf(rec), opts, nil)
	defer v.Unmount()

	// the same seed without a view, stepped once, must match what frame 1 draws
	style := opts.Style
	want := particle.NewField(style.Count, 300, 200, style.Spawn, style.Motion, style.Clusters, particle.NewRand(opts.Seed))
	want.Step()

	v.Frame(epoch)

	var circles []render.Op
	for _, op := range rec.Ops() {
		if op.Kind == render.OpCircle {
			circles = append(circles, op)
		}
	}
	require.Len(t, circles, len(want.Particles))
	for i, op := range circles {
		assert.True(t, op.From.Eq(want.Particles[i].Pos), "particle %d", i)
	}
	assert.Equal(t, uint64(1), v.Stats().Frames)
	assert.Equal(t, 50, v.Stats().Last.Particles)
}

func TestLoop_DrivesFrames(t *testing.T) {
	rec := render.NewRecorder(300, 200)
	clock := loop.NewFakeClock(epoch)
	opts := options(t, render.PresetTwinLearning)
	opts.Loop = true
	opts.Clock = clock
	opts.Interval = 16 * time.Millisecond

	v := Mount(recorderOf(rec), opts, nil)
	for i := 1; i <= 3; i++ {
		clock.Advance(16 * time.Millisecond)
		want := uint64(i)
		require.Eventually(t, func() bool { return v.Stats().Frames == want }, time.Second, time.Millisecond)
	}
	assert.Equal(t, 3, rec.Count(render.OpPresent))

	v.Unmount()
	assert.Equal(t, loop.Stopped, v.State())
	assert.True(t, rec.Closed())

	for i := 0; i < 5; i++ {
		clock.Advance(16 * time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, uint64(3), v.Stats().Frames, "no frame after unmount")
	assert.Equal(t, 3, rec.Count(render.OpPresent))
}

func TestUnmount_Idempotent(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	opts := options(t, render.PresetMesh)
	opts.Loop = true
	opts.Clock = loop.NewFakeClock(epoch)
	v := Mount(recorderOf(rec), opts, nil)

	v.Unmount()
	v.Unmount()
	assert.Equal(t, loop.Stopped, v.State())
}

func TestResize_Reproject(t *testing.T) {
	rec := render.NewRecorder(200, 100)
	v := Mount(recorderOf(rec), options(t, render.PresetMesh), nil)
	defer v.Unmount()

	before := v.Particles()
	v.Resize(400, 200)
	assert.Equal(t, 200.0, v.Stats().Width, "resize waits for the next frame")

	v.Step()
	s := v.Stats()
	assert.Equal(t, 400.0, s.Width)
	assert.Equal(t, 200.0, s.Height)

	after := v.Particles()
	require.Len(t, after, len(before))
	for i := range after {
		assert.True(t, after[i].Pos.Inside(400, 200), "particle %d escaped: %v", i, after[i].Pos)
		assert.Equal(t, before[i].Vel, after[i].Vel, "velocities survive reprojection")
	}

	// degenerate sizes are ignored rather than crashing the loop
	v.Resize(0, 50)
	v.Resize(-1, -1)
	v.Step()
	assert.Equal(t, 400.0, v.Stats().Width)
}

func TestResize_Reseed(t *testing.T) {
	rec := render.NewRecorder(600, 400)
	opts := options(t, render.PresetTwinConnect)
	opts.ResizePolicy = particle.ResizeReseed
	v := Mount(recorderOf(rec), opts, nil)
	defer v.Unmount()

	v.Resize(300, 300)
	v.Step()

	for _, p := range v.Particles() {
		assert.True(t, p.Pos.Inside(300, 300))
	}
	assert.Equal(t, 30, v.Stats().Particles, "count is fixed for the mount")
}

func TestSetStyle(t *testing.T) {
	rec := render.NewRecorder(400, 200)
	opts := options(t, render.PresetTwin)
	v := Mount(recorderOf(rec), opts, nil)
	defer v.Unmount()

	learning := opts.Style
	learning.Learning = true
	v.SetStyle(learning)
	v.Frame(epoch)

	var vectorStrokes int
	for _, op := range rec.Ops() {
		if op.Kind == render.OpLine && op.Width == learning.VectorWidth {
			vectorStrokes++
		}
	}
	assert.Equal(t, 3, vectorStrokes)
	assert.Equal(t, 30, v.Stats().Particles)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Variant = render.PresetTwinConnect
	cfg.FrameRate = 30
	cfg.Seed = 9
	cfg.ReducedMotion = true
	cfg.ResizePolicy = "reseed"

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Style.Clusters)
	assert.Equal(t, uint64(9), opts.Seed)
	assert.True(t, opts.ReducedMotion)
	assert.Equal(t, particle.ResizeReseed, opts.ResizePolicy)
	assert.Equal(t, time.Second/30, opts.Interval)

	cfg.Seed = 0
	opts, err = OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.NotZero(t, opts.Seed)

	cfg.Variant = "nope"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestAcquireError(t *testing.T) {
	boom := errors.New("no gpu")
	v := Mount(func() (render.Surface, error) { return nil, boom }, options(t, render.PresetMesh), nil)
	assert.Equal(t, Stats{State: loop.Stopped}, v.Stats())
	assert.Nil(t, v.Particles())
}

func TestFinished(t *testing.T) {
	running := Mount(recorderOf(render.NewRecorder(100, 100)), options(t, render.PresetMesh), nil)
	assert.False(t, running.Finished())
	running.Unmount()
	assert.True(t, running.Finished())

	degraded := Mount(func() (render.Surface, error) { return nil, ErrSurfaceUnavailable }, options(t, render.PresetMesh), nil)
	assert.True(t, degraded.Finished(), "nothing to draw on")

	opts := options(t, render.PresetTwin)
	opts.ReducedMotion = true
	still := Mount(recorderOf(render.NewRecorder(100, 100)), opts, nil)
	assert.False(t, still.Finished(), "placeholder stays on screen")
	still.Unmount()
	assert.True(t, still.Finished())
}
