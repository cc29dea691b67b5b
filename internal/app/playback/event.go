package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // A track was loaded and started
	EventTrackEnded                    // The backend finished a track naturally
	EventStateChanged                  // Phase changed (pause/resume/stop)
	EventLoadFailed                    // A track could not be loaded
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventStateChanged:
		return "state_changed"
	case EventLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// Event represents a playback event delivered to subscribers.
type Event struct {
	Type  EventType
	Track string // Display name of the track concerned (may be empty)
	Phase Phase  // Phase after the event
	Err   error  // Set for EventLoadFailed
}
