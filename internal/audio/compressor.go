// SPDX-License-Identifier: MIT
package audio

import "fmt"

const (
	DefaultCompressorThresholdDB = -18.0
	DefaultCompressorRatio       = 4.0
	DefaultCompressorMakeupDB    = 0.0
)

// CompressorParams configures Compress.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64 // Input dB over threshold per output dB over threshold.
	MakeupDB    float64 // Added to every sample, compressed or not.
}

// DefaultCompressorParams returns -18 dB threshold, 4:1, no makeup.
func DefaultCompressorParams() CompressorParams {
	return CompressorParams{
		ThresholdDB: DefaultCompressorThresholdDB,
		Ratio:       DefaultCompressorRatio,
		MakeupDB:    DefaultCompressorMakeupDB,
	}
}

func (p CompressorParams) Validate() error {
	if p.Ratio <= 0 {
		return fmt.Errorf("compressor ratio %.3f must be positive", p.Ratio)
	}
	return nil
}

// Compress applies instantaneous downward compression. A sample whose level
// L exceeds thresholdDB is moved to thresholdDB + (L-thresholdDB)/ratio.
// makeupDB is then applied to all samples, including those below the
// threshold.
func Compress(sig Signal, thresholdDB, ratio, makeupDB float64) Signal {
	out := Signal{
		Samples:    make([]float64, len(sig.Samples)),
		SampleRate: sig.SampleRate,
	}

	for i, x := range sig.Samples {
		gainDB := makeupDB
		if level := LevelDB(x); level > thresholdDB {
			gainDB += thresholdDB + (level-thresholdDB)/ratio - level
		}
		out.Samples[i] = x * DBToGain(gainDB)
	}
	return out
}

// Compress applies Compress with p.
func (p CompressorParams) Compress(sig Signal) Signal {
	return Compress(sig, p.ThresholdDB, p.Ratio, p.MakeupDB)
}
