// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"

	"eqlab/internal/advisor"
	"eqlab/internal/audio"
	"eqlab/internal/equalizer"
)

const (
	DefaultSampleRate        = 44100
	DefaultQ                 = 1.0
	DefaultNormalizeTargetDB = -1.0
)

// Options configures one ProcessFile run.
type Options struct {
	InputPath  string
	OutputPath string

	// Gains holds one dB value per engine band. It may be nil when Advisor
	// is set, in which case the advisor's suggestion is used.
	Gains []float64
	Q     float64

	GateEnabled       bool
	Gate              audio.GateParams
	CompressorEnabled bool
	Compressor        audio.CompressorParams

	NormalizeTargetDB float64
	SampleRate        int

	Engine  *equalizer.Engine // nil uses the default nine-band engine
	Advisor advisor.Advisor   // optional
}

// DefaultOptions returns flat gains at Q 1, -1 dBFS normalization, 44.1 kHz
// and both dynamics stages disabled with their stock settings.
func DefaultOptions(inputPath, outputPath string) Options {
	return Options{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		Gains:             make([]float64, len(equalizer.DefaultBands())),
		Q:                 DefaultQ,
		Gate:              audio.DefaultGateParams(),
		Compressor:        audio.DefaultCompressorParams(),
		NormalizeTargetDB: DefaultNormalizeTargetDB,
		SampleRate:        DefaultSampleRate,
	}
}

// ValidationError reports a caller-correctable problem found before any
// audio is touched.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// withDefaults fills the fields whose zero value is never meaningful.
func (o Options) withDefaults() Options {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Q == 0 {
		o.Q = DefaultQ
	}
	if o.Engine == nil {
		o.Engine = equalizer.NewDefault()
	}
	return o
}
