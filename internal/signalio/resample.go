// SPDX-License-Identifier: MIT
package signalio

import (
	"fmt"

	resampler "github.com/tphakala/go-audio-resampler"

	"eqlab/internal/audio"
)

// Resample converts sig to targetRate with a band-limited polyphase
// resampler at high quality.
func Resample(sig audio.Signal, targetRate int) (audio.Signal, error) {
	if err := sig.Validate(); err != nil {
		return audio.Signal{}, err
	}
	if targetRate <= 0 {
		return audio.Signal{}, fmt.Errorf("%w: target %d", audio.ErrInvalidSampleRate, targetRate)
	}
	if targetRate == sig.SampleRate {
		return sig.Clone(), nil
	}
	if sig.Len() == 0 {
		return audio.Signal{SampleRate: targetRate}, nil
	}

	out, err := resampler.ResampleMono(sig.Samples, float64(sig.SampleRate), float64(targetRate), resampler.QualityHigh)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("resample %d Hz to %d Hz: %w", sig.SampleRate, targetRate, err)
	}
	return audio.Signal{Samples: out, SampleRate: targetRate}, nil
}
