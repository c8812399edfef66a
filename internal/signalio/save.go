// SPDX-License-Identifier: MIT
package signalio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"eqlab/internal/audio"
	"eqlab/internal/log"
)

const (
	saveBitDepth = 16
	saveChannels = 1
	pcmMax       = math.MaxInt16
)

// Save writes sig to path as a mono 16-bit PCM wave file at sig.SampleRate.
// Samples outside [-1, 1] are clipped.
func Save(path string, sig audio.Signal) error {
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}

	enc := wav.NewEncoder(f, sig.SampleRate, saveBitDepth, saveChannels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: saveChannels,
			SampleRate:  sig.SampleRate,
		},
		Data:           toPCM16(sig.Samples),
		SourceBitDepth: saveBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return &IOError{Path: path, Op: "finalize", Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}

	log.Debugf("SignalIO: Wrote %s (%d samples at %d Hz)", path, sig.Len(), sig.SampleRate)
	return nil
}

func toPCM16(samples []float64) []int {
	data := make([]int, len(samples))
	for i, x := range samples {
		x = math.Max(-1, math.Min(1, x))
		data[i] = int(math.Round(x * pcmMax))
	}
	return data
}
