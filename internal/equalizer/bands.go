// SPDX-License-Identifier: MIT
package equalizer

import (
	"errors"
	"fmt"
)

const (
	// MinGainDB is the smallest |gain| that earns a section in the cascade.
	// Quieter bands are left out entirely, not built as near-identity sections.
	MinGainDB = 0.1

	// NyquistFraction caps centre frequencies at 0.49·sampleRate.
	NyquistFraction = 0.49
)

var (
	ErrGainCount     = errors.New("gain vector length does not match band count")
	ErrInvalidQ      = errors.New("q must be positive")
	ErrInvalidBands  = errors.New("invalid band list")
	ErrInvalidPoints = errors.New("response needs at least one point")
)

// Bands is an ordered list of peaking filter centre frequencies in Hz.
type Bands []float64

// DefaultBands returns the nine octave-spaced bands from 63 Hz to 16 kHz.
func DefaultBands() Bands {
	return Bands{63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}
}

// Validate checks that the list is non-empty, positive and strictly ascending.
func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	for i, f := range b {
		if f <= 0 {
			return fmt.Errorf("%w: band %d frequency %.1f Hz", ErrInvalidBands, i, f)
		}
		if i > 0 && f <= b[i-1] {
			return fmt.Errorf("%w: band %d (%.1f Hz) not above band %d (%.1f Hz)", ErrInvalidBands, i, f, i-1, b[i-1])
		}
	}
	return nil
}

func (b Bands) clone() Bands {
	return append(Bands(nil), b...)
}
