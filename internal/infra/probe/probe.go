// Package probe provides best-effort track duration estimation.
package probe

import (
	zlog "github.com/rs/zerolog/log"
)

// Prober estimates one track's length in seconds. Returning 0 means the
// length is unknown to this prober; an error means the prober could not
// inspect the file at all. Neither outcome is fatal.
type Prober interface {
	Probe(path string) (float64, error)

	// Name returns the prober name (used in logs).
	Name() string
}

// Chain tries probers in order until one yields a positive length.
type Chain struct {
	probers []Prober
}

// NewChain creates a probe chain.
func NewChain(probers ...Prober) *Chain {
	return &Chain{probers: probers}
}

// Probe returns the first positive estimate, or 0 when every prober fails
// or comes up empty. Durations are never authoritative.
func (c *Chain) Probe(path string) float64 {
	for _, p := range c.probers {
		length, err := p.Probe(path)
		if err != nil {
			zlog.Debug().Msgf("probe: prober failed, trying next: prober=%s track=%s error=%v",
				p.Name(), path, err)
			continue
		}
		if length <= 0 {
			zlog.Debug().Msgf("probe: prober found no length: prober=%s track=%s", p.Name(), path)
			continue
		}
		return length
	}
	return 0
}
