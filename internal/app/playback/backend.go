package playback

// Backend is the transport surface of the external audio engine.
//
// Load and PlayFromOffset may perform I/O and should be treated as
// potentially slow. The backend offers no native pause-aware position query:
// position is derived by the clock, and seeking is always expressed as a
// restart from an offset. The latest call is authoritative with respect to
// any prior in-flight call.
type Backend interface {
	// Load prepares a track for playback. Fails on unreadable or
	// unsupported files.
	Load(path string) error

	// PlayFromOffset (re)starts playback at the given position in seconds.
	PlayFromOffset(seconds float64) error

	// Pause suspends audio output without losing the loaded track.
	Pause()

	// Resume continues paused audio output.
	Resume()

	// Stop halts playback and discards the loaded track.
	Stop()

	// SetVolume sets the output level in [0, 1].
	SetVolume(v float64)

	// CurrentVolume returns the output level in [0, 1].
	CurrentVolume() float64

	// IsBusy reports whether the backend is actively producing audio.
	// False once a track has naturally finished or been stopped.
	IsBusy() bool
}

// DurationProbe estimates a track length in seconds. Returns 0 when the
// length cannot be determined; that is not an error.
type DurationProbe interface {
	Probe(path string) float64
}
