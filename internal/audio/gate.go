// SPDX-License-Identifier: MIT
package audio

import "fmt"

const (
	DefaultGateThresholdDB = -50.0
	DefaultGateReductionDB = -80.0
)

// GateParams configures NoiseGate.
type GateParams struct {
	ThresholdDB float64 // Level below which a sample is attenuated.
	ReductionDB float64 // Gain applied to gated samples (normally negative).
}

// DefaultGateParams returns the stock gate settings (-50 dB threshold,
// -80 dB reduction).
func DefaultGateParams() GateParams {
	return GateParams{
		ThresholdDB: DefaultGateThresholdDB,
		ReductionDB: DefaultGateReductionDB,
	}
}

func (p GateParams) Validate() error {
	if p.ReductionDB > 0 {
		return fmt.Errorf("gate reduction %.2f dB must not be positive", p.ReductionDB)
	}
	return nil
}

// NoiseGate attenuates every sample whose instantaneous level is below
// thresholdDB by reductionDB. Samples at or above the threshold pass
// unchanged. There is no envelope, hold or release, so the gate may open
// and close from one sample to the next.
func NoiseGate(sig Signal, thresholdDB, reductionDB float64) Signal {
	out := Signal{
		Samples:    make([]float64, len(sig.Samples)),
		SampleRate: sig.SampleRate,
	}

	reduction := DBToGain(reductionDB)
	for i, x := range sig.Samples {
		if LevelDB(x) < thresholdDB {
			out.Samples[i] = x * reduction
		} else {
			out.Samples[i] = x
		}
	}
	return out
}

// Gate applies NoiseGate with p.
func (p GateParams) Gate(sig Signal) Signal {
	return NoiseGate(sig, p.ThresholdDB, p.ReductionDB)
}
