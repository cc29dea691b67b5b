// Package playback provides the playback clock: the transport state machine
// that keeps an independently derived position synchronized with the audio
// backend.
package playback

// Phase represents the playback transport state.
type Phase int

const (
	PhaseStopped Phase = iota // No track actively tracked
	PhasePlaying              // Track is playing
	PhasePaused               // Track is paused
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}
