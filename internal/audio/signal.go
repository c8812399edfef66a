// SPDX-License-Identifier: MIT
/*
Package audio implements the whole-signal sample transforms of the
processing chain:
- Signal, a mono float64 sample sequence at an explicit sample rate
- Peak normalization to a dBFS target
- Instantaneous noise gate and compressor
- Waveform decimation for display

Every function is pure: inputs are never modified and each call allocates
its own output, so distinct signals can be processed concurrently.
*/
package audio

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon guards every magnitude before a division or logarithm.
const Epsilon = 1e-12

var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Signal is a mono sample sequence at a known sample rate.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Validate reports whether the signal can enter the processing chain.
func (s Signal) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, s.SampleRate)
	}
	return nil
}

// Len returns the number of samples.
func (s Signal) Len() int {
	return len(s.Samples)
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Clone returns a deep copy of s.
func (s Signal) Clone() Signal {
	return Signal{
		Samples:    append([]float64(nil), s.Samples...),
		SampleRate: s.SampleRate,
	}
}

// LevelDB returns 20·log10(|x|+ε).
func LevelDB(x float64) float64 {
	return 20 * math.Log10(math.Abs(x)+Epsilon)
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
