// SPDX-License-Identifier: MIT
package equalizer

import "math/cmplx"

// Cascade is an ordered list of sections applied in series.
type Cascade []Coefficients

// Filter runs src through every section with zeroed state and returns a new
// slice. An empty cascade returns a copy of src.
func (c Cascade) Filter(src []float64) []float64 {
	dst := make([]float64, len(src))
	if len(c) == 0 {
		copy(dst, src)
		return dst
	}
	c.filterInto(dst, src, make([]sectionState, len(c)))
	return dst
}

// filterInto is the hot loop. states must be zeroed and len(states) == len(c);
// dst may alias src.
func (c Cascade) filterInto(dst, src []float64, states []sectionState) {
	for i, x := range src {
		for k := range c {
			x = states[k].process(&c[k], x)
		}
		dst[i] = x
	}
}

// Response evaluates the product of the section responses at freqHz.
func (c Cascade) Response(freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for _, s := range c {
		h *= s.Response(freqHz, sampleRate)
	}
	return h
}

// ImpulseResponse returns the first n samples of the cascade's response
// to a unit impulse.
func (c Cascade) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}
	impulse := make([]float64, n)
	impulse[0] = 1
	return c.Filter(impulse)
}

// magnitudePhase splits h into 20·log10(|h|+ε) and arg h.
func magnitudePhase(h complex128) (float64, float64) {
	return 20 * log10Eps(cmplx.Abs(h)), cmplx.Phase(h)
}
