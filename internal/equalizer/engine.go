// SPDX-License-Identifier: MIT
/*
Package equalizer implements a multi-band parametric equalizer built from
cascaded peaking biquads:
- Constant-Q peaking section design with Nyquist clamping
- Cascade construction that omits bands below 0.1 dB
- Sequential transposed direct form II filtering with per-call state
- Theoretical frequency response of the same cascade

An Engine owns its band list and holds no mutable state, so one Engine can
serve concurrent callers.
*/
package equalizer

import (
	"fmt"
	"math"

	"eqlab/internal/audio"
	"eqlab/internal/log"
)

type Engine struct {
	bands Bands
}

// New creates an Engine over a private copy of bands.
func New(bands Bands) (*Engine, error) {
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	return &Engine{bands: bands.clone()}, nil
}

// NewDefault creates an Engine over DefaultBands.
func NewDefault() *Engine {
	return &Engine{bands: DefaultBands()}
}

// Bands returns a copy of the engine's centre frequencies.
func (e *Engine) Bands() Bands {
	return e.bands.clone()
}

// NumBands is the required gain vector length.
func (e *Engine) NumBands() int {
	return len(e.bands)
}

// Cascade builds the sections for gains at sampleRate, one per band with
// |gain| >= MinGainDB, in band order.
func (e *Engine) Cascade(sampleRate int, gains []float64, q float64) (Cascade, error) {
	if len(gains) != len(e.bands) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrGainCount, len(gains), len(e.bands))
	}
	if !(q > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidQ, q)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", audio.ErrInvalidSampleRate, sampleRate)
	}

	cascade := make(Cascade, 0, len(gains))
	for i, g := range gains {
		if math.Abs(g) < MinGainDB {
			continue
		}
		cascade = append(cascade, DesignPeaking(float64(sampleRate), e.bands[i], g, q))
	}
	return cascade, nil
}

// Apply equalizes sig. When every gain is below MinGainDB the samples are
// returned unchanged (as a copy).
func (e *Engine) Apply(sig audio.Signal, gains []float64, q float64) (audio.Signal, error) {
	if err := sig.Validate(); err != nil {
		return audio.Signal{}, err
	}
	cascade, err := e.Cascade(sig.SampleRate, gains, q)
	if err != nil {
		return audio.Signal{}, err
	}

	if len(cascade) == 0 {
		log.Debugf("Equalizer: All gains below %.1f dB, bypassing", MinGainDB)
	} else {
		log.Debugf("Equalizer: Filtering %d samples through %d sections", sig.Len(), len(cascade))
	}

	return audio.Signal{
		Samples:    cascade.Filter(sig.Samples),
		SampleRate: sig.SampleRate,
	}, nil
}
