// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"

	"eqlab/internal/analysis"
	"eqlab/internal/audio"
	"eqlab/internal/equalizer"
)

// AnalyzeOptions selects what Analyze computes and how much of it to keep
// for display.
type AnalyzeOptions struct {
	Gains          []float64 // nil means flat
	Q              float64
	Engine         *equalizer.Engine
	Window         analysis.WindowFunc
	WindowSize     int
	HopSize        int
	ResponsePoints int
	DisplayPoints  int // Decimation target for spectrum and response
	WaveformPoints int
}

func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Q:              DefaultQ,
		Window:         analysis.Hann,
		WindowSize:     2048,
		HopSize:        512,
		ResponsePoints: 2048,
		DisplayPoints:  500,
		WaveformPoints: 2000,
	}
}

// Waveform is a decimated time-domain view.
type Waveform struct {
	Data  []float64 `json:"data"`
	Times []float64 `json:"times"`
}

// Report bundles every analysis view of one signal.
type Report struct {
	SampleRate  int                   `json:"sample_rate"`
	Duration    float64               `json:"duration"`
	PeakDB      float64               `json:"peak_db"`
	Waveform    Waveform              `json:"waveform"`
	Spectrum    analysis.Spectrum     `json:"spectrum"`
	Bands       []analysis.BandEnergy `json:"bands"`
	Response    equalizer.Response    `json:"response"`
	Spectrogram analysis.Spectrogram  `json:"spectrogram"`
}

// Analyze computes the waveform, spectrum, band energies, EQ response and
// spectrogram of sig. Band energies use the full-resolution spectrum; the
// spectrum and response are decimated to DisplayPoints.
func Analyze(sig audio.Signal, opts AnalyzeOptions) (Report, error) {
	if err := sig.Validate(); err != nil {
		return Report{}, err
	}
	if opts.Engine == nil {
		opts.Engine = equalizer.NewDefault()
	}
	gains := opts.Gains
	if gains == nil {
		gains = make([]float64, opts.Engine.NumBands())
	}

	spectrum := analysis.ComputeFFT(sig)
	response, err := opts.Engine.Response(sig.SampleRate, gains, opts.Q, opts.ResponsePoints)
	if err != nil {
		return Report{}, fmt.Errorf("response: %w", err)
	}
	spectrogram, err := analysis.ComputeSpectrogramWith(sig, opts.WindowSize, opts.HopSize,
		analysis.SpectrogramOptions{Window: opts.Window})
	if err != nil {
		return Report{}, fmt.Errorf("spectrogram: %w", err)
	}

	data, times := audio.Waveform(sig, opts.WaveformPoints)
	return Report{
		SampleRate: sig.SampleRate,
		Duration:   sig.Duration(),
		PeakDB:     audio.PeakDB(sig.Samples),
		Waveform:   Waveform{Data: data, Times: times},
		Spectrum:   spectrum.Decimate(opts.DisplayPoints),
		Bands:      analysis.BandEnergies(spectrum, opts.Engine.Bands()),
		Response: equalizer.Response{
			Frequencies: analysis.Decimate(response.Frequencies, opts.DisplayPoints),
			MagnitudeDB: analysis.Decimate(response.MagnitudeDB, opts.DisplayPoints),
			Phase:       analysis.Decimate(response.Phase, opts.DisplayPoints),
		},
		Spectrogram: spectrogram,
	}, nil
}
