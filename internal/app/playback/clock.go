package playback

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Clock owns the transport phase and the wall-clock anchor that elapsed time
// is derived from. The backend exposes only coarse transport primitives, so
// the clock keeps its own accounting:
//
//   - startAnchor marks when position zero began (shifted back on seeks)
//   - pauseAccum is the total seconds spent paused since the last anchor reset
//   - lastPauseAt is when the current pause began (zero while not paused)
//
// Elapsed time is always derived from these, never stored.
//
// The clock assumes serialized access; the owning player provides the
// mutual-exclusion boundary.
type Clock struct {
	backend Backend
	probe   DurationProbe

	phase       Phase
	trackLength float64
	startAnchor time.Time
	pauseAccum  float64
	lastPauseAt time.Time

	now func() time.Time
}

// NewClock creates a stopped clock driving the given backend. The probe may
// be nil, in which case every track length is unknown.
func NewClock(backend Backend, probe DurationProbe) *Clock {
	return &Clock{
		backend: backend,
		probe:   probe,
		phase:   PhaseStopped,
		now:     time.Now,
	}
}

// SetNowFunc replaces the time source. Used by tests.
func (c *Clock) SetNowFunc(now func() time.Time) {
	c.now = now
}

// LoadAndPlay probes the track length, loads the track and starts playback
// from position zero. On failure the clock stays Stopped and the error is
// returned for the caller to surface; the playlist cursor is not touched
// here.
func (c *Clock) LoadAndPlay(path string) error {
	length := 0.0
	if c.probe != nil {
		length = c.probe.Probe(path)
	}

	if err := c.backend.Load(path); err != nil {
		c.reset()
		return errors.Wrapf(err, "load %s", path)
	}
	if err := c.backend.PlayFromOffset(0); err != nil {
		c.reset()
		return errors.Wrapf(err, "play %s", path)
	}

	c.phase = PhasePlaying
	c.trackLength = length
	c.startAnchor = c.now()
	c.pauseAccum = 0
	c.lastPauseAt = time.Time{}

	zlog.Debug().Msgf("playback: started: track=%s length=%.1fs", path, length)
	return nil
}

// Pause suspends playback. A no-op unless currently Playing.
func (c *Clock) Pause() {
	if c.phase != PhasePlaying {
		return
	}
	c.backend.Pause()
	c.phase = PhasePaused
	c.lastPauseAt = c.now()
}

// Resume continues paused playback, folding the pause span into pauseAccum
// so elapsed time picks up where it froze. A no-op unless currently Paused.
func (c *Clock) Resume() {
	if c.phase != PhasePaused {
		return
	}
	c.backend.Resume()
	c.phase = PhasePlaying
	c.pauseAccum += c.now().Sub(c.lastPauseAt).Seconds()
	c.lastPauseAt = time.Time{}
}

// Stop halts the backend and resets the clock to Stopped defaults,
// regardless of the prior phase.
func (c *Clock) Stop() {
	c.backend.Stop()
	c.reset()
}

// Seek restarts playback at the given offset in seconds. The backend has no
// in-place position primitive, so a seek is always "play again from offset";
// when the clock was Paused the backend is immediately re-paused so the seek
// is not audible. A no-op while Stopped or when the track length is unknown.
func (c *Clock) Seek(offset float64) {
	if c.phase == PhaseStopped || c.trackLength <= 0 {
		return
	}

	if offset < 0 {
		offset = 0
	} else if offset > c.trackLength {
		offset = c.trackLength
	}

	wasPaused := c.phase == PhasePaused
	if err := c.backend.PlayFromOffset(offset); err != nil {
		zlog.Warn().Msgf("playback: seek restart failed: offset=%.1fs error=%v", offset, err)
		return
	}
	if wasPaused {
		c.backend.Pause()
	}

	now := c.now()
	c.startAnchor = now.Add(-time.Duration(offset * float64(time.Second)))
	c.pauseAccum = 0
	if wasPaused {
		c.lastPauseAt = now
	} else {
		c.lastPauseAt = time.Time{}
	}

	zlog.Debug().Msgf("playback: seek: offset=%.1fs paused=%t", offset, wasPaused)
}

// Elapsed returns the derived playback position in seconds: 0 while Stopped,
// frozen at the pause instant while Paused, and monotonically non-decreasing
// while Playing.
func (c *Clock) Elapsed() float64 {
	switch c.phase {
	case PhasePaused:
		return max(0, c.lastPauseAt.Sub(c.startAnchor).Seconds()-c.pauseAccum)
	case PhasePlaying:
		return max(0, c.now().Sub(c.startAnchor).Seconds()-c.pauseAccum)
	default:
		return 0
	}
}

// PollForCompletion reports whether the current track has ended. Called once
// per tick while Playing; completion is detected from the backend's busy
// flag with up to one tick of latency. The caller decides whether to advance
// the playlist or reload the same track.
func (c *Clock) PollForCompletion() bool {
	if c.phase != PhasePlaying {
		return false
	}
	return !c.backend.IsBusy()
}

// Phase returns the current transport phase.
func (c *Clock) Phase() Phase {
	return c.phase
}

// TrackLength returns the probed track length in seconds, 0 when unknown.
func (c *Clock) TrackLength() float64 {
	return c.trackLength
}

func (c *Clock) reset() {
	c.phase = PhaseStopped
	c.trackLength = 0
	c.startAnchor = time.Time{}
	c.pauseAccum = 0
	c.lastPauseAt = time.Time{}
}
