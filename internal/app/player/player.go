// Package player ties the playlist store and the playback clock together
// and exposes the intent surface a UI shell drives.
package player

import (
	"errors"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/ohmeg/vinylbox/internal/app/notification"
	"github.com/ohmeg/vinylbox/internal/app/playback"
	"github.com/ohmeg/vinylbox/internal/domain/playlist"
	"github.com/ohmeg/vinylbox/internal/domain/track"
)

// Errors
var (
	ErrPlaylistEmpty   = errors.New("playlist is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Player coordinates the playlist cursor with the playback clock and
// broadcasts events to subscribers.
//
// All operations, including Tick, take the player mutex: hosts may call
// them from any goroutine.
type Player struct {
	mu sync.Mutex

	store   *playlist.Store
	clock   *playback.Clock
	backend playback.Backend
	events  *notification.Manager
}

// New creates a player over the given collaborators. events may be nil when
// no one listens.
func New(store *playlist.Store, clock *playback.Clock, backend playback.Backend, events *notification.Manager) *Player {
	return &Player{
		store:   store,
		clock:   clock,
		backend: backend,
		events:  events,
	}
}

// Status is the snapshot the host polls each tick to render state.
type Status struct {
	Phase       playback.Phase
	Elapsed     float64 // Seconds into the current track
	TrackLength float64 // Seconds, 0 when unknown
	TrackName   string  // Empty when no track is selected
	TrackIndex  int     // -1 when no track is selected
	TrackCount  int
	Volume      float64
	Shuffle     bool
	Repeat      playlist.RepeatMode
}

// Status returns a snapshot of the observable player state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{
		Phase:       p.clock.Phase(),
		Elapsed:     p.clock.Elapsed(),
		TrackLength: p.clock.TrackLength(),
		TrackIndex:  p.store.CurrentIndex(),
		TrackCount:  p.store.Len(),
		Volume:      p.backend.CurrentVolume(),
		Shuffle:     p.store.ShuffleMode(),
		Repeat:      p.store.RepeatMode(),
	}
	if t, ok := p.store.CurrentTrack(); ok {
		s.TrackName = t.Name()
	}
	return s
}

// Tick runs one iteration of the time-dependent logic. The host drives it at
// a fixed period (nominally 60 Hz); completion of a track is therefore
// detected with up to one tick of latency.
func (p *Player) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.clock.PollForCompletion() {
		return
	}

	endedName := ""
	if t, ok := p.store.CurrentTrack(); ok {
		endedName = t.Name()
	}
	p.publish(playback.Event{
		Type:  playback.EventTrackEnded,
		Track: endedName,
		Phase: p.clock.Phase(),
	})
	p.handleTrackEnd()
}

// handleTrackEnd reloads the current track under RepeatOne, otherwise
// advances to the next one. Caller holds the mutex.
func (p *Player) handleTrackEnd() {
	if p.store.IsEmpty() {
		p.clock.Stop()
		return
	}

	if p.store.RepeatMode() == playlist.RepeatOne {
		_ = p.loadAndPlayCurrent()
		return
	}

	p.store.SetCurrentIndex(p.store.NextIndex())
	_ = p.loadAndPlayCurrent()
}

// PlayPause is the play/pause toggle: pauses while playing, resumes while
// paused, and otherwise starts the selected track (the first one when
// nothing is selected). Returns ErrPlaylistEmpty when there is nothing to
// play so the caller can prompt the user.
func (p *Player) PlayPause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store.IsEmpty() {
		return ErrPlaylistEmpty
	}

	switch p.clock.Phase() {
	case playback.PhasePlaying:
		p.clock.Pause()
		p.publishStateChanged()
		return nil
	case playback.PhasePaused:
		p.clock.Resume()
		p.publishStateChanged()
		return nil
	default:
		if p.store.CurrentIndex() == -1 {
			p.store.SetCurrentIndex(0)
		}
		return p.loadAndPlayCurrent()
	}
}

// Stop halts playback and resets the clock.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clock.Stop()
	p.publishStateChanged()
}

// Next advances the cursor per the repeat policy and plays the target track.
// A no-op on an empty playlist.
func (p *Player) Next() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store.IsEmpty() {
		return nil
	}
	p.store.SetCurrentIndex(p.store.NextIndex())
	return p.loadAndPlayCurrent()
}

// Previous moves the cursor back per the repeat policy and plays the target
// track. A no-op on an empty playlist.
func (p *Player) Previous() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store.IsEmpty() {
		return nil
	}
	p.store.SetCurrentIndex(p.store.PrevIndex())
	return p.loadAndPlayCurrent()
}

// PlayAt selects the track at index and plays it.
func (p *Player) PlayAt(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= p.store.Len() {
		return ErrIndexOutOfRange
	}
	p.store.SetCurrentIndex(index)
	return p.loadAndPlayCurrent()
}

// Seek restarts playback at the given offset in seconds. No-op while
// stopped or when the track length is unknown.
func (p *Player) Seek(offsetSeconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clock.Seek(offsetSeconds)
}

// SetVolume sets the output level, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.backend.SetVolume(clampVolume(v))
}

// AdjustVolume shifts the output level by delta, clamped to [0, 1], and
// returns the new level.
func (p *Player) AdjustVolume(delta float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := clampVolume(p.backend.CurrentVolume() + delta)
	p.backend.SetVolume(v)
	return v
}

// ToggleShuffle flips shuffle mode and returns the new setting.
func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.ToggleShuffle()
	return p.store.ShuffleMode()
}

// ToggleRepeat cycles the repeat mode and returns the new setting.
func (p *Player) ToggleRepeat() playlist.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.ToggleRepeat()
}

// AddTracks appends the supported paths to the playlist and returns the
// number added. When nothing was selected before, the cursor moves to the
// first track without starting playback.
func (p *Player) AddTracks(paths []string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := p.store.AddTracks(paths)
	p.selectFirstIfUnset()
	return added
}

// AddFolder recursively adds the supported files under root and returns the
// number added.
func (p *Player) AddFolder(root string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	added, err := p.store.AddFolder(root)
	p.selectFirstIfUnset()
	return added, err
}

// RemoveItems removes the playlist entries at the given positions. Removing
// the last track stops playback.
func (p *Player) RemoveItems(indices []int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.RemoveItems(indices)
	if p.store.IsEmpty() {
		p.clock.Stop()
		p.publishStateChanged()
	}
}

// ClearPlaylist removes every track and stops playback.
func (p *Player) ClearPlaylist() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.Clear()
	p.clock.Stop()
	p.publishStateChanged()
}

// Tracks returns a copy of the playlist for display.
func (p *Player) Tracks() []track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.Tracks()
}

// loadAndPlayCurrent loads and starts the track under the cursor. On load
// failure the cursor stays on the failed track so the caller can decide
// whether to skip. Caller holds the mutex.
func (p *Player) loadAndPlayCurrent() error {
	t, ok := p.store.CurrentTrack()
	if !ok {
		return nil
	}

	if err := p.clock.LoadAndPlay(t.Path); err != nil {
		zlog.Error().Msgf("player: load failed: track=%s error=%v", t.Name(), err)
		p.publish(playback.Event{
			Type:  playback.EventLoadFailed,
			Track: t.Name(),
			Phase: p.clock.Phase(),
			Err:   err,
		})
		return err
	}

	zlog.Info().Msgf("player: playing: track=%s index=%d", t.Name(), p.store.CurrentIndex())
	p.publish(playback.Event{
		Type:  playback.EventTrackStarted,
		Track: t.Name(),
		Phase: p.clock.Phase(),
	})
	return nil
}

func (p *Player) selectFirstIfUnset() {
	if p.store.CurrentIndex() == -1 && !p.store.IsEmpty() {
		p.store.SetCurrentIndex(0)
	}
}

func (p *Player) publishStateChanged() {
	name := ""
	if t, ok := p.store.CurrentTrack(); ok {
		name = t.Name()
	}
	p.publish(playback.Event{
		Type:  playback.EventStateChanged,
		Track: name,
		Phase: p.clock.Phase(),
	})
}

func (p *Player) publish(e playback.Event) {
	if p.events != nil {
		p.events.Publish(e)
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
