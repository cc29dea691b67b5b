package playback

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a controllable time source.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// mockBackend records transport calls and simulates the busy flag.
type mockBackend struct {
	loadErr error
	playErr error

	busy        bool
	paused      bool
	volume      float64
	loadedPath  string
	playOffsets []float64
	pauseCalls  int
	resumeCalls int
	stopCalls   int
}

func (m *mockBackend) Load(path string) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loadedPath = path
	return nil
}

func (m *mockBackend) PlayFromOffset(seconds float64) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.playOffsets = append(m.playOffsets, seconds)
	m.busy = true
	m.paused = false
	return nil
}

func (m *mockBackend) Pause() {
	m.pauseCalls++
	m.paused = true
}

func (m *mockBackend) Resume() {
	m.resumeCalls++
	m.paused = false
}

func (m *mockBackend) Stop() {
	m.stopCalls++
	m.busy = false
}

func (m *mockBackend) SetVolume(v float64)    { m.volume = v }
func (m *mockBackend) CurrentVolume() float64 { return m.volume }
func (m *mockBackend) IsBusy() bool           { return m.busy }

// stubProbe returns a fixed length.
type stubProbe struct {
	length float64
}

func (s stubProbe) Probe(string) float64 { return s.length }

func newTestClock(t *testing.T, length float64) (*Clock, *mockBackend, *fakeClock) {
	t.Helper()
	backend := &mockBackend{}
	fc := newFakeClock()
	c := NewClock(backend, stubProbe{length: length})
	c.SetNowFunc(fc.Now)
	return c, backend, fc
}

func TestClock_LoadAndPlay(t *testing.T) {
	c, backend, _ := newTestClock(t, 180)

	require.NoError(t, c.LoadAndPlay("song.mp3"))

	assert.Equal(t, PhasePlaying, c.Phase())
	assert.Equal(t, 180.0, c.TrackLength())
	assert.Equal(t, "song.mp3", backend.loadedPath)
	assert.Equal(t, []float64{0}, backend.playOffsets)
	assert.Equal(t, 0.0, c.Elapsed())
}

func TestClock_LoadAndPlay_LoadError(t *testing.T) {
	c, backend, _ := newTestClock(t, 180)
	backend.loadErr = errors.New("corrupt file")

	err := c.LoadAndPlay("bad.mp3")

	assert.Error(t, err)
	assert.Equal(t, PhaseStopped, c.Phase())
	assert.Equal(t, 0.0, c.TrackLength())
	assert.Empty(t, backend.playOffsets)
}

func TestClock_LoadAndPlay_UnknownLength(t *testing.T) {
	c, _, fc := newTestClock(t, 0)

	require.NoError(t, c.LoadAndPlay("mystery.ogg"))

	assert.Equal(t, 0.0, c.TrackLength())

	// Elapsed still counts open-endedly.
	fc.Advance(5 * time.Second)
	assert.InDelta(t, 5.0, c.Elapsed(), 0.001)

	// Seeking is disabled without a known length.
	c.Seek(30)
	assert.InDelta(t, 5.0, c.Elapsed(), 0.001)
}

func TestClock_ElapsedMonotonicWhilePlaying(t *testing.T) {
	c, _, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	prev := c.Elapsed()
	for i := 0; i < 10; i++ {
		fc.Advance(317 * time.Millisecond)
		cur := c.Elapsed()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.InDelta(t, 3.17, prev, 0.001)
}

func TestClock_PauseFreezesElapsed(t *testing.T) {
	c, backend, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	fc.Advance(3 * time.Second)
	c.Pause()

	assert.Equal(t, PhasePaused, c.Phase())
	assert.Equal(t, 1, backend.pauseCalls)
	assert.InDelta(t, 3.0, c.Elapsed(), 0.001)

	// Repeated samples while paused return the identical value.
	fc.Advance(2 * time.Second)
	assert.InDelta(t, 3.0, c.Elapsed(), 0.001)
	fc.Advance(10 * time.Second)
	assert.InDelta(t, 3.0, c.Elapsed(), 0.001)
}

func TestClock_ResumeContinuesFromPausePoint(t *testing.T) {
	c, backend, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	fc.Advance(3 * time.Second)
	c.Pause()
	fc.Advance(2 * time.Second)
	c.Resume()

	assert.Equal(t, PhasePlaying, c.Phase())
	assert.Equal(t, 1, backend.resumeCalls)
	assert.InDelta(t, 3.0, c.Elapsed(), 0.001)

	fc.Advance(4 * time.Second)
	assert.InDelta(t, 7.0, c.Elapsed(), 0.001)
}

func TestClock_MultiplePauseCycles(t *testing.T) {
	c, _, fc := newTestClock(t, 300)
	require.NoError(t, c.LoadAndPlay("song.flac"))

	fc.Advance(10 * time.Second)
	c.Pause()
	fc.Advance(5 * time.Second)
	c.Resume()
	fc.Advance(10 * time.Second)
	c.Pause()
	fc.Advance(30 * time.Second)
	c.Resume()
	fc.Advance(1 * time.Second)

	assert.InDelta(t, 21.0, c.Elapsed(), 0.001)
}

func TestClock_InvalidTransitionsAreNoOps(t *testing.T) {
	c, backend, _ := newTestClock(t, 180)

	// Stopped: pause/resume/seek do nothing.
	c.Pause()
	c.Resume()
	c.Seek(10)
	assert.Equal(t, PhaseStopped, c.Phase())
	assert.Equal(t, 0, backend.pauseCalls)
	assert.Equal(t, 0, backend.resumeCalls)
	assert.Empty(t, backend.playOffsets)

	require.NoError(t, c.LoadAndPlay("song.mp3"))

	// Playing: resume does nothing.
	c.Resume()
	assert.Equal(t, 0, backend.resumeCalls)

	// Paused: pause again does nothing.
	c.Pause()
	c.Pause()
	assert.Equal(t, 1, backend.pauseCalls)
}

func TestClock_SeekWhilePlaying(t *testing.T) {
	c, backend, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	fc.Advance(30 * time.Second)
	c.Seek(90)

	assert.Equal(t, PhasePlaying, c.Phase())
	assert.Equal(t, []float64{0, 90}, backend.playOffsets)
	assert.InDelta(t, 90.0, c.Elapsed(), 0.001)

	fc.Advance(5 * time.Second)
	assert.InDelta(t, 95.0, c.Elapsed(), 0.001)
}

func TestClock_SeekWhilePaused(t *testing.T) {
	c, backend, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	fc.Advance(30 * time.Second)
	c.Pause()
	c.Seek(60)

	// Phase is preserved and the backend is re-paused so the seek is silent.
	assert.Equal(t, PhasePaused, c.Phase())
	assert.True(t, backend.paused)
	assert.Equal(t, 2, backend.pauseCalls)
	assert.InDelta(t, 60.0, c.Elapsed(), 0.001)

	// Still frozen.
	fc.Advance(10 * time.Second)
	assert.InDelta(t, 60.0, c.Elapsed(), 0.001)

	// Resume continues from the seek target.
	c.Resume()
	fc.Advance(3 * time.Second)
	assert.InDelta(t, 63.0, c.Elapsed(), 0.001)
}

func TestClock_SeekClamped(t *testing.T) {
	c, backend, _ := newTestClock(t, 100)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	c.Seek(500)
	assert.Equal(t, 100.0, backend.playOffsets[len(backend.playOffsets)-1])

	c.Seek(-5)
	assert.Equal(t, 0.0, backend.playOffsets[len(backend.playOffsets)-1])
}

func TestClock_SeekResetsPauseAccounting(t *testing.T) {
	c, _, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))

	fc.Advance(10 * time.Second)
	c.Pause()
	fc.Advance(5 * time.Second)
	c.Resume()

	c.Seek(20)
	fc.Advance(2 * time.Second)
	assert.InDelta(t, 22.0, c.Elapsed(), 0.001)
}

func TestClock_Stop(t *testing.T) {
	c, backend, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))
	fc.Advance(30 * time.Second)

	c.Stop()

	assert.Equal(t, PhaseStopped, c.Phase())
	assert.Equal(t, 1, backend.stopCalls)
	assert.Equal(t, 0.0, c.Elapsed())
	assert.Equal(t, 0.0, c.TrackLength())
}

func TestClock_StopWhilePaused(t *testing.T) {
	c, _, fc := newTestClock(t, 180)
	require.NoError(t, c.LoadAndPlay("song.mp3"))
	fc.Advance(3 * time.Second)
	c.Pause()

	c.Stop()

	assert.Equal(t, PhaseStopped, c.Phase())
	assert.Equal(t, 0.0, c.Elapsed())
}

func TestClock_PollForCompletion(t *testing.T) {
	c, backend, _ := newTestClock(t, 180)

	// Stopped: never complete.
	assert.False(t, c.PollForCompletion())

	require.NoError(t, c.LoadAndPlay("song.mp3"))
	assert.False(t, c.PollForCompletion())

	// Backend went idle: the track ended, no matter what elapsed says.
	backend.busy = false
	assert.True(t, c.PollForCompletion())

	// Paused tracks never report completion.
	backend.busy = true
	c.Pause()
	backend.busy = false
	assert.False(t, c.PollForCompletion())
}
