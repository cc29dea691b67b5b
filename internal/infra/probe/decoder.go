package probe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// minPlausibleLength filters out the near-zero lengths a header-only decode
// can report.
const minPlausibleLength = 0.2

// DecoderProber derives lengths by opening the file with the playback
// decoders and reading the stream length. Covers mp3, wav, flac and ogg;
// tracker formats have no decoder and stay unknown.
type DecoderProber struct{}

// NewDecoderProber creates a DecoderProber.
func NewDecoderProber() *DecoderProber {
	return &DecoderProber{}
}

// Name returns the prober name.
func (p *DecoderProber) Name() string {
	return "decoder"
}

// Probe returns the stream length in seconds, or 0 when the format has no
// decoder or the decoder does not know its length.
func (p *DecoderProber) Probe(path string) (float64, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".wav", ".flac", ".ogg":
	default:
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return 0, errors.Wrapf(err, "decode %s", path)
	}
	defer streamer.Close()

	n := streamer.Len()
	if n <= 0 {
		return 0, nil
	}

	length := format.SampleRate.D(n).Seconds()
	if length < minPlausibleLength {
		return 0, nil
	}
	return length, nil
}
