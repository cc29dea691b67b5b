package probe

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	name   string
	length float64
	err    error
	calls  int
}

func (f *fakeProber) Probe(string) (float64, error) {
	f.calls++
	return f.length, f.err
}

func (f *fakeProber) Name() string { return f.name }

func TestChain_FirstPositiveWins(t *testing.T) {
	first := &fakeProber{name: "first", length: 180}
	second := &fakeProber{name: "second", length: 200}
	c := NewChain(first, second)

	assert.Equal(t, 180.0, c.Probe("song.mp3"))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChain_FallsThroughOnError(t *testing.T) {
	first := &fakeProber{name: "first", err: errors.New("no tags")}
	second := &fakeProber{name: "second", length: 95.5}
	c := NewChain(first, second)

	assert.Equal(t, 95.5, c.Probe("song.ogg"))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChain_FallsThroughOnZero(t *testing.T) {
	first := &fakeProber{name: "first", length: 0}
	second := &fakeProber{name: "second", length: 42}
	c := NewChain(first, second)

	assert.Equal(t, 42.0, c.Probe("song.wav"))
}

func TestChain_AllUnknownYieldsZero(t *testing.T) {
	c := NewChain(
		&fakeProber{name: "first", err: errors.New("unreadable")},
		&fakeProber{name: "second", length: 0},
	)

	assert.Equal(t, 0.0, c.Probe("intro.xm"))
}

func TestChain_Empty(t *testing.T) {
	assert.Equal(t, 0.0, NewChain().Probe("song.mp3"))
}

func TestMP3Prober_SkipsOtherFormats(t *testing.T) {
	length, err := NewMP3Prober().Probe("song.ogg")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, length)
}

func TestDecoderProber_MissingFile(t *testing.T) {
	_, err := NewDecoderProber().Probe("/does/not/exist.mp3")
	assert.Error(t, err)
}

func TestDecoderProber_UnknownFormat(t *testing.T) {
	length, err := NewDecoderProber().Probe("chip.mod")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, length)
}
