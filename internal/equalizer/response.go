// SPDX-License-Identifier: MIT
package equalizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"eqlab/internal/audio"
)

// Response is the cascade's frequency response sampled on a linear grid
// from 0 Hz to Nyquist inclusive, for empty and non-empty cascades alike.
// This differs from a freqz-style grid of numPoints, which stops one step
// (Nyquist/numPoints) short of Nyquist.
type Response struct {
	Frequencies []float64 `json:"frequencies"`
	MagnitudeDB []float64 `json:"magnitude_db"`
	Phase       []float64 `json:"phase"`
}

// Response computes the theoretical response of the cascade Apply would
// build for the same arguments. An empty cascade yields exactly 0 dB and
// 0 rad at every point.
func (e *Engine) Response(sampleRate int, gains []float64, q float64, numPoints int) (Response, error) {
	if numPoints < 1 {
		return Response{}, fmt.Errorf("%w: got %d", ErrInvalidPoints, numPoints)
	}
	cascade, err := e.Cascade(sampleRate, gains, q)
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		Frequencies: linspace(0, float64(sampleRate)/2, numPoints),
		MagnitudeDB: make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	if len(cascade) == 0 {
		return resp, nil
	}

	rate := float64(sampleRate)
	for i, f := range resp.Frequencies {
		resp.MagnitudeDB[i], resp.Phase[i] = magnitudePhase(cascade.Response(f, rate))
	}
	return resp, nil
}

// At returns the magnitude and phase at the grid point closest to freqHz.
func (r Response) At(freqHz float64) (magnitudeDB, phase float64) {
	if len(r.Frequencies) == 0 {
		return 0, 0
	}
	best := 0
	for i, f := range r.Frequencies {
		if math.Abs(f-freqHz) < math.Abs(r.Frequencies[best]-freqHz) {
			best = i
		}
	}
	return r.MagnitudeDB[best], r.Phase[best]
}

// linspace returns n points from start to end inclusive; n == 1 yields start.
func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	floats.Span(out, start, end)
	out[n-1] = end
	return out
}

func log10Eps(x float64) float64 {
	return math.Log10(x + audio.Epsilon)
}
