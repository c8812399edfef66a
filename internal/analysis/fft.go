// SPDX-License-Identifier: MIT
/*
Package analysis implements the read-only spectral views of a signal:
- One-sided FFT magnitude spectrum over the whole signal
- Centred STFT spectrogram referenced to its loudest bin
- Per-band energy summary aligned with the equalizer bands
- Stride decimation for display
*/
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"eqlab/internal/audio"
)

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	MagnitudeDB []float64 `json:"magnitude_db"`
}

// ComputeFFT transforms every sample of sig at once. Magnitudes are |X|/N
// in dB (with an epsilon floor), for bins k·sampleRate/N, k = 0..N/2.
func ComputeFFT(sig audio.Signal) Spectrum {
	n := len(sig.Samples)
	if n == 0 || sig.SampleRate <= 0 {
		return Spectrum{}
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, sig.Samples)
	spec := Spectrum{
		Frequencies: binFrequencies(len(coeffs), n, sig.SampleRate),
		MagnitudeDB: make([]float64, len(coeffs)),
	}
	scale := 1 / float64(n)
	for i, c := range coeffs {
		spec.MagnitudeDB[i] = 20 * math.Log10(cmplx.Abs(c)*scale+audio.Epsilon)
	}
	return spec
}

// PeakFrequency returns the frequency of the loudest bin, skipping DC.
func (s Spectrum) PeakFrequency() float64 {
	if len(s.MagnitudeDB) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(s.MagnitudeDB); i++ {
		if s.MagnitudeDB[i] > s.MagnitudeDB[best] {
			best = i
		}
	}
	return s.Frequencies[best]
}

// binFrequencies returns the centre frequency of each of count bins of an
// fftSize-point transform.
func binFrequencies(count, fftSize, sampleRate int) []float64 {
	freqs := make([]float64, count)
	resolution := float64(sampleRate) / float64(fftSize)
	for i := range freqs {
		freqs[i] = float64(i) * resolution
	}
	return freqs
}
