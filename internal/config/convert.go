// SPDX-License-Identifier: MIT
package config

import (
	"eqlab/internal/analysis"
	"eqlab/internal/audio"
	"eqlab/internal/equalizer"
)

// GateParams returns the gate stage settings in processing form.
func (p ProcessingConfig) GateParams() audio.GateParams {
	return audio.GateParams{ThresholdDB: p.Gate.ThresholdDB, ReductionDB: p.Gate.ReductionDB}
}

// CompressorParams returns the compressor stage settings in processing form.
func (p ProcessingConfig) CompressorParams() audio.CompressorParams {
	return audio.CompressorParams{
		ThresholdDB: p.Compressor.ThresholdDB,
		Ratio:       p.Compressor.Ratio,
		MakeupDB:    p.Compressor.MakeupDB,
	}
}

// Engine builds an equalizer over the configured bands.
func (p ProcessingConfig) Engine() (*equalizer.Engine, error) {
	return equalizer.New(equalizer.Bands(p.Bands))
}

// Window returns the parsed STFT window. Validate has already rejected
// unknown names, so the fallback is only reached on unvalidated configs.
func (a AnalysisConfig) Window() analysis.WindowFunc {
	wf, err := analysis.ParseWindowFunc(a.FFTWindow)
	if err != nil {
		return analysis.Hann
	}
	return wf
}
