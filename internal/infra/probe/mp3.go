package probe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	gomp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Prober estimates MP3 lengths from the frame headers without rendering
// the stream.
type MP3Prober struct{}

// NewMP3Prober creates an MP3Prober.
func NewMP3Prober() *MP3Prober {
	return &MP3Prober{}
}

// Name returns the prober name.
func (p *MP3Prober) Name() string {
	return "mp3"
}

// Probe returns the decoded PCM length in seconds, or 0 for non-MP3 files.
func (p *MP3Prober) Probe(path string) (float64, error) {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return 0, errors.Wrapf(err, "decode %s", path)
	}

	// Length is the PCM byte count: 16-bit stereo, so 4 bytes per sample.
	samples := dec.Length() / 4
	if samples <= 0 {
		return 0, nil
	}
	return float64(samples) / float64(dec.SampleRate()), nil
}
