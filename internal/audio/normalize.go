// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Peak returns max|x| over samples, or 0 when empty.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, math.Inf(1))
}

// PeakDB returns the peak level in dBFS, floored by Epsilon so silence
// reports a large negative number rather than -Inf.
func PeakDB(samples []float64) float64 {
	return LevelDB(Peak(samples))
}

// NormalizePeak scales sig so its peak sits at targetDB dBFS.
// Silence stays silent: the Epsilon floor on the peak bounds the gain and
// zero times any finite gain is zero.
func NormalizePeak(sig Signal, targetDB float64) Signal {
	out := Signal{
		Samples:    make([]float64, len(sig.Samples)),
		SampleRate: sig.SampleRate,
	}
	if len(sig.Samples) == 0 {
		return out
	}

	gain := DBToGain(targetDB) / (Peak(sig.Samples) + Epsilon)
	floats.ScaleTo(out.Samples, gain, sig.Samples)
	return out
}
