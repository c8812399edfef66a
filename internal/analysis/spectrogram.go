// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"

	"eqlab/internal/audio"
	"eqlab/internal/log"
	"eqlab/pkg/bitint"
)

const (
	// AminAmplitude floors magnitudes before the dB conversion.
	AminAmplitude = 1e-5
	// TopDB is the dynamic range kept below the loudest bin.
	TopDB = 80.0
)

var (
	ErrWindowSize = errors.New("window size must be a power of 2 and at least 2")
	ErrHopSize    = errors.New("hop size must be positive")
)

// Spectrogram is an STFT magnitude grid indexed [bin][frame], in dB relative
// to the loudest cell.
type Spectrogram struct {
	MagnitudeDB [][]float64 `json:"magnitude_db"`
	Frequencies []float64   `json:"frequencies"`
	Times       []float64   `json:"times"`
}

// SpectrogramOptions selects the analysis window. The zero value is not
// Hann; use DefaultSpectrogramOptions.
type SpectrogramOptions struct {
	Window WindowFunc
}

func DefaultSpectrogramOptions() SpectrogramOptions {
	return SpectrogramOptions{Window: Hann}
}

// NumFrames returns the frame count.
func (s Spectrogram) NumFrames() int {
	return len(s.Times)
}

// Frame returns a copy of the column for frame t.
func (s Spectrogram) Frame(t int) []float64 {
	if t < 0 || t >= len(s.Times) {
		return nil
	}
	col := make([]float64, len(s.MagnitudeDB))
	for k, row := range s.MagnitudeDB {
		col[k] = row[t]
	}
	return col
}

// ComputeSpectrogram runs a centred STFT with a periodic Hann window.
func ComputeSpectrogram(sig audio.Signal, windowSize, hopSize int) (Spectrogram, error) {
	return ComputeSpectrogramWith(sig, windowSize, hopSize, DefaultSpectrogramOptions())
}

// ComputeSpectrogramWith runs a centred STFT: the signal is zero-padded by
// windowSize/2 on both sides and 1 + len/hopSize frames are taken. Frame t
// is centred on sample t·hopSize.
func ComputeSpectrogramWith(sig audio.Signal, windowSize, hopSize int, opts SpectrogramOptions) (Spectrogram, error) {
	if err := sig.Validate(); err != nil {
		return Spectrogram{}, err
	}
	if windowSize < 2 || !bitint.IsPowerOfTwo(windowSize) {
		return Spectrogram{}, fmt.Errorf("%w, got %d", ErrWindowSize, windowSize)
	}
	if hopSize < 1 {
		return Spectrogram{}, fmt.Errorf("%w, got %d", ErrHopSize, hopSize)
	}

	st := newSTFT(windowSize, opts.Window)
	numFrames := 1 + len(sig.Samples)/hopSize
	numBins := windowSize/2 + 1

	log.Debugf("Analysis: STFT (Window: %v, Size: %d, Hop: %d, Frames: %d)", opts.Window, windowSize, hopSize, numFrames)

	grid := make([][]float64, numBins)
	for k := range grid {
		grid[k] = make([]float64, numFrames)
	}

	maxMag := 0.0
	for t := range numFrames {
		st.frame(sig.Samples, t*hopSize-windowSize/2)
		for k, c := range st.output {
			mag := cmplx.Abs(c)
			grid[k][t] = mag
			maxMag = math.Max(maxMag, mag)
		}
	}

	toDB(grid, maxMag)

	spec := Spectrogram{
		MagnitudeDB: grid,
		Frequencies: binFrequencies(numBins, windowSize, sig.SampleRate),
		Times:       make([]float64, numFrames),
	}
	for t := range spec.Times {
		spec.Times[t] = float64(t*hopSize) / float64(sig.SampleRate)
	}
	return spec, nil
}

// stft holds the reusable buffers for one spectrogram computation.
type stft struct {
	fft    *fourier.FFT
	window []float64
	input  []float64
	output []complex128
}

func newSTFT(size int, windowType WindowFunc) *stft {
	return &stft{
		fft:    fourier.NewFFT(size),
		window: periodicWindow(size, windowType),
		input:  make([]float64, size),
		output: make([]complex128, size/2+1),
	}
}

// frame windows samples[start:start+size], treating out-of-range indices as
// zero, and transforms it into s.output.
func (s *stft) frame(samples []float64, start int) {
	clear(s.input)
	lo, hi := max(start, 0), min(start+len(s.input), len(samples))
	if lo < hi {
		copy(s.input[lo-start:], samples[lo:hi])
	}
	vecmath.MulBlockInPlace(s.input, s.window)
	s.fft.Coefficients(s.output, s.input)
}

// toDB converts linear magnitudes in place to dB relative to maxMag, with
// AminAmplitude and TopDB limits.
func toDB(grid [][]float64, maxMag float64) {
	ref := 20 * math.Log10(math.Max(maxMag, AminAmplitude))
	top := math.Inf(-1)
	for _, row := range grid {
		for i, mag := range row {
			row[i] = 20*math.Log10(math.Max(mag, AminAmplitude)) - ref
			top = math.Max(top, row[i])
		}
	}
	floor := top - TopDB
	for _, row := range grid {
		for i := range row {
			row[i] = math.Max(row[i], floor)
		}
	}
}
