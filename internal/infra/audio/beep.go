// Package audio provides the speaker-backed audio engine built on beep.
package audio

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Config holds the beep backend settings.
type Config struct {
	SampleRate int `mapstructure:"sample_rate" default:"44100" validate:"gt=0"`
	BufferMs   int `mapstructure:"buffer_ms" default:"100" validate:"gt=0,lte=1000"`
}

// Backend plays local audio files through the system speaker.
//
// The busy flag mirrors what a coarse audio engine exposes: true from
// PlayFromOffset until the stream drains naturally or Stop is called.
// Pausing keeps the flag up. Every (re)start bumps playID so the completion
// callback of a superseded stream cannot mark the current one done.
type Backend struct {
	mu sync.Mutex

	sampleRate  beep.SampleRate
	bufferSize  int
	initialized bool

	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	playID   uint64
	busy     bool
}

// New creates a beep backend from raw settings (the audio.settings map of
// the config file).
func New(settings map[string]any) (*Backend, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	sr := beep.SampleRate(cfg.SampleRate)
	return &Backend{
		sampleRate: sr,
		bufferSize: sr.N(time.Duration(cfg.BufferMs) * time.Millisecond),
		level:      0.8,
	}, nil
}

// Load decodes the file header and prepares the track for playback. Fails
// on unreadable files and on formats beep has no decoder for: of the
// playlist's supported set only .mp3, .wav, .flac and .ogg decode here; the
// tracker formats (.mod .xm .it .s3m) are addable but always fail Load.
func (b *Backend) Load(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		_ = f.Close()
		return errors.Newf("no decoder for %s", filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "decode %s", path)
	}

	if !b.initialized {
		if err := speaker.Init(b.sampleRate, b.bufferSize); err != nil {
			_ = streamer.Close()
			return errors.Wrap(err, "init speaker")
		}
		b.initialized = true
	}

	b.path = path
	b.streamer = streamer
	b.format = format
	return nil
}

// PlayFromOffset (re)starts the loaded track at the given position. This is
// the only seek primitive: the previous stream is cleared and a fresh one is
// queued from the offset.
func (b *Backend) PlayFromOffset(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return errors.New("no track loaded")
	}

	speaker.Clear()

	pos := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if pos < 0 {
		pos = 0
	}
	if n := b.streamer.Len(); n > 0 && pos > n {
		pos = n
	}
	if err := b.streamer.Seek(pos); err != nil {
		return errors.Wrapf(err, "seek to %.1fs", seconds)
	}

	resampled := beep.Resample(4, b.format.SampleRate, b.sampleRate, b.streamer)
	b.ctrl = &beep.Ctrl{Streamer: resampled}
	b.volume = &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Volume:   levelToGain(b.level),
		Silent:   b.level <= 0,
	}

	b.playID++
	id := b.playID
	b.busy = true

	// The callback runs on the speaker goroutine with the speaker lock
	// held; take b.mu from a fresh goroutine to keep lock order one-way.
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		go b.markDone(id)
	})))

	zlog.Debug().Msgf("audio: playing: track=%s offset=%.1fs", filepath.Base(b.path), seconds)
	return nil
}

// markDone clears the busy flag when the stream that just drained is still
// the current one.
func (b *Backend) markDone(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == b.playID {
		b.busy = false
	}
}

// Pause suspends output. The loaded track and busy flag are kept.
func (b *Backend) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Resume continues suspended output.
func (b *Backend) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = false
		speaker.Unlock()
	}
}

// Stop halts output and discards the loaded track.
func (b *Backend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Backend) stopLocked() {
	// Invalidate any pending completion callback before clearing.
	b.playID++
	b.busy = false

	if b.initialized {
		speaker.Clear()
	}
	if b.streamer != nil {
		_ = b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	b.volume = nil
	b.path = ""
}

// SetVolume sets the output level in [0, 1]. Failures cannot happen here;
// out-of-range values are clamped.
func (b *Backend) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	b.level = v

	if b.volume != nil {
		speaker.Lock()
		b.volume.Silent = v <= 0
		if v > 0 {
			b.volume.Volume = levelToGain(v)
		}
		speaker.Unlock()
	}
}

// CurrentVolume returns the output level in [0, 1].
func (b *Backend) CurrentVolume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// IsBusy reports whether a stream is queued on the speaker. False once the
// current stream drained naturally or was stopped.
func (b *Backend) IsBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// levelToGain maps a linear [0, 1] level onto beep's exponential volume
// scale (gain 0 means unity).
func levelToGain(level float64) float64 {
	if level <= 0 {
		return 0
	}
	return math.Log2(level)
}
