// Package playlist provides the playlist store: track ordering, the
// current-track cursor, and shuffle/repeat policy.
package playlist

import (
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ohmeg/vinylbox/internal/domain/track"
)

// RepeatMode controls how the next/previous cursor is computed.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota // Advance through the list with wrap-around
	RepeatOne                   // Stay on the current track
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Store owns the ordered track list and the current-track cursor.
// A cursor of -1 means no track is selected.
//
// originalOrder is re-snapshotted on every list mutation and is the single
// source of truth for the unshuffled ordering while shuffle is active.
type Store struct {
	tracks        []track.Track
	originalOrder []track.Track
	currentIndex  int
	repeatMode    RepeatMode
	shuffleMode   bool

	rng *rand.Rand
}

// NewStore creates an empty playlist store.
func NewStore() *Store {
	return NewStoreWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewStoreWithRand creates an empty playlist store with the given random
// source for shuffling. Used by tests for deterministic permutations.
func NewStoreWithRand(rng *rand.Rand) *Store {
	return &Store{
		tracks:        make([]track.Track, 0),
		originalOrder: make([]track.Track, 0),
		currentIndex:  -1,
		rng:           rng,
	}
}

// AddTracks appends every path with a supported extension and returns the
// number of tracks added. Unsupported paths are silently skipped.
func (s *Store) AddTracks(paths []string) int {
	added := 0
	for _, p := range paths {
		if track.IsSupported(p) {
			s.tracks = append(s.tracks, track.New(p))
			added++
		}
	}
	s.snapshotOrder()
	return added
}

// AddFolder recursively enumerates files under root, appending all with
// supported extensions in traversal order, and returns the number added.
func (s *Store) AddFolder(root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if track.IsSupported(path) {
			s.tracks = append(s.tracks, track.New(path))
			added++
		}
		return nil
	})
	s.snapshotOrder()
	if err != nil {
		return added, errors.Wrapf(err, "walk folder %s", root)
	}
	return added, nil
}

// RemoveItems removes the entries at the given positions. Indices are
// processed from highest to lowest so earlier positions stay valid, and
// out-of-range indices are skipped. The cursor follows the track it pointed
// at, or becomes -1 when that track itself is removed.
func (s *Store) RemoveItems(indices []int) {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	for _, idx := range sorted {
		if idx < 0 || idx >= len(s.tracks) {
			continue
		}
		s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)
		if idx == s.currentIndex {
			s.currentIndex = -1
		} else if idx < s.currentIndex {
			s.currentIndex--
		}
	}

	s.snapshotOrder()

	if len(s.tracks) > 0 && s.currentIndex >= len(s.tracks) {
		s.currentIndex = len(s.tracks) - 1
	}
}

// Clear empties the playlist and resets the cursor.
func (s *Store) Clear() {
	s.tracks = s.tracks[:0]
	s.originalOrder = s.originalOrder[:0]
	s.currentIndex = -1
}

// ToggleShuffle flips shuffle mode. Entering shuffle pins the current track
// at position 0 and permutes the remainder; leaving shuffle restores the
// snapshot order and relocates the cursor to the current track's position.
func (s *Store) ToggleShuffle() {
	s.shuffleMode = !s.shuffleMode

	if s.shuffleMode {
		s.applyShuffle()
	} else {
		s.restoreOriginalOrder()
	}
}

func (s *Store) applyShuffle() {
	if len(s.tracks) == 0 {
		return
	}

	var current *track.Track
	if s.currentIndex >= 0 {
		t := s.tracks[s.currentIndex]
		current = &t
	}

	shuffled := make([]track.Track, len(s.tracks))
	copy(shuffled, s.tracks)

	if current != nil {
		shuffled = append(shuffled[:s.currentIndex], shuffled[s.currentIndex+1:]...)
	}

	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if current != nil {
		shuffled = append([]track.Track{*current}, shuffled...)
		s.currentIndex = 0
	}

	s.tracks = shuffled
}

func (s *Store) restoreOriginalOrder() {
	if len(s.originalOrder) == 0 {
		return
	}

	var current *track.Track
	if s.currentIndex >= 0 && s.currentIndex < len(s.tracks) {
		t := s.tracks[s.currentIndex]
		current = &t
	}

	s.tracks = make([]track.Track, len(s.originalOrder))
	copy(s.tracks, s.originalOrder)

	if current != nil {
		s.currentIndex = -1
		for i, t := range s.tracks {
			if t.Path == current.Path {
				s.currentIndex = i
				break
			}
		}
	}
}

// snapshotOrder records the current ordering as the restore target for
// un-shuffling.
func (s *Store) snapshotOrder() {
	s.originalOrder = make([]track.Track, len(s.tracks))
	copy(s.originalOrder, s.tracks)
}

// NextIndex returns the index the cursor would advance to: -1 when the list
// is empty, the current index under RepeatOne, otherwise the next position
// with wrap-around.
func (s *Store) NextIndex() int {
	if len(s.tracks) == 0 {
		return -1
	}
	if s.repeatMode == RepeatOne {
		return s.currentIndex
	}
	return mod(s.currentIndex+1, len(s.tracks))
}

// PrevIndex returns the index the cursor would move back to, wrapping from
// index 0 to the last index.
func (s *Store) PrevIndex() int {
	if len(s.tracks) == 0 {
		return -1
	}
	if s.repeatMode == RepeatOne {
		return s.currentIndex
	}
	return mod(s.currentIndex-1, len(s.tracks))
}

// mod is the Euclidean modulo: always in [0, n).
func mod(i, n int) int {
	return ((i % n) + n) % n
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	return len(s.tracks)
}

// IsEmpty returns true when the playlist holds no tracks.
func (s *Store) IsEmpty() bool {
	return len(s.tracks) == 0
}

// Tracks returns a copy of the track list.
func (s *Store) Tracks() []track.Track {
	out := make([]track.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// CurrentIndex returns the cursor position, -1 when nothing is selected.
func (s *Store) CurrentIndex() int {
	return s.currentIndex
}

// SetCurrentIndex moves the cursor. Out-of-range values reset it to -1.
func (s *Store) SetCurrentIndex(idx int) {
	if idx < 0 || idx >= len(s.tracks) {
		s.currentIndex = -1
		return
	}
	s.currentIndex = idx
}

// CurrentTrack returns the track under the cursor.
func (s *Store) CurrentTrack() (track.Track, bool) {
	if s.currentIndex < 0 || s.currentIndex >= len(s.tracks) {
		return track.Track{}, false
	}
	return s.tracks[s.currentIndex], true
}

// RepeatMode returns the current repeat mode.
func (s *Store) RepeatMode() RepeatMode {
	return s.repeatMode
}

// ToggleRepeat cycles the repeat mode and returns the new value.
func (s *Store) ToggleRepeat() RepeatMode {
	if s.repeatMode == RepeatOff {
		s.repeatMode = RepeatOne
	} else {
		s.repeatMode = RepeatOff
	}
	return s.repeatMode
}

// ShuffleMode returns whether shuffle is active.
func (s *Store) ShuffleMode() bool {
	return s.shuffleMode
}
