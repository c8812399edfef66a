// SPDX-License-Identifier: MIT
/*
Package pipeline runs the fixed processing chain over files:

	load → normalize → equalize → [gate] → [compress] → normalize → save

The chain order never changes. Normalizing twice keeps the output level
predictable whatever the EQ and dynamics settings do to the peak.
*/
package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"eqlab/internal/audio"
	"eqlab/internal/log"
	"eqlab/internal/signalio"
)

// Result describes one processed file.
type Result struct {
	InputPath    string
	OutputPath   string
	Signal       audio.Signal
	Gains        []float64
	Sections     int
	InputPeakDB  float64
	OutputPeakDB float64
	Elapsed      time.Duration
}

// ProcessFile runs the chain for opts and returns the saved signal.
func ProcessFile(opts Options) (Result, error) {
	return processFile(context.Background(), opts)
}

func processFile(ctx context.Context, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if err := validate(opts); err != nil {
		return Result{}, err
	}

	start := time.Now()
	log.Infof("Pipeline: Processing %s -> %s", opts.InputPath, opts.OutputPath)

	sig, err := signalio.Load(opts.InputPath, opts.SampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}
	res := Result{
		InputPath:   opts.InputPath,
		OutputPath:  opts.OutputPath,
		InputPeakDB: audio.PeakDB(sig.Samples),
	}

	gains := opts.Gains
	if gains == nil && opts.Advisor != nil {
		gains, err = opts.Advisor.SuggestGains(ctx, sig)
		if err != nil {
			return Result{}, fmt.Errorf("advisor: %w", err)
		}
		log.Infof("Pipeline: Using suggested gains %v", gains)
		if err := checkGains(opts, gains); err != nil {
			return Result{}, err
		}
	}
	res.Gains = append([]float64(nil), gains...)

	sig = audio.NormalizePeak(sig, opts.NormalizeTargetDB)

	cascade, err := opts.Engine.Cascade(sig.SampleRate, gains, opts.Q)
	if err != nil {
		return Result{}, fmt.Errorf("equalizer: %w", err)
	}
	res.Sections = len(cascade)
	log.Debugf("Pipeline: Filtering %d samples through %d sections", sig.Len(), len(cascade))
	sig = audio.Signal{Samples: cascade.Filter(sig.Samples), SampleRate: sig.SampleRate}

	if opts.GateEnabled {
		log.Debugf("Pipeline: Gate %.1f dB / %.1f dB", opts.Gate.ThresholdDB, opts.Gate.ReductionDB)
		sig = opts.Gate.Gate(sig)
	}
	if opts.CompressorEnabled {
		log.Debugf("Pipeline: Compressor %.1f dB %.1f:1 +%.1f dB", opts.Compressor.ThresholdDB, opts.Compressor.Ratio, opts.Compressor.MakeupDB)
		sig = opts.Compressor.Compress(sig)
	}

	sig = audio.NormalizePeak(sig, opts.NormalizeTargetDB)

	if err := signalio.Save(opts.OutputPath, sig); err != nil {
		return Result{}, fmt.Errorf("save: %w", err)
	}

	res.Signal = sig
	res.OutputPeakDB = audio.PeakDB(sig.Samples)
	res.Elapsed = time.Since(start)
	log.Infof("Pipeline: Wrote %s (%d samples, %d sections, %s)", opts.OutputPath, sig.Len(), res.Sections, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func validate(opts Options) error {
	if opts.InputPath == "" {
		return &ValidationError{Field: "input", Reason: "path is empty"}
	}
	if opts.OutputPath == "" {
		return &ValidationError{Field: "output", Reason: "path is empty"}
	}
	if fi, err := os.Stat(opts.InputPath); err != nil {
		return &ValidationError{Field: "input", Reason: "cannot access file", Err: err}
	} else if fi.IsDir() {
		return &ValidationError{Field: "input", Reason: "is a directory"}
	}
	if opts.Gains != nil || opts.Advisor == nil {
		if err := checkGains(opts, opts.Gains); err != nil {
			return err
		}
	}
	if !(opts.Q > 0) {
		return &ValidationError{Field: "q", Reason: fmt.Sprintf("%g is not positive", opts.Q)}
	}
	if opts.SampleRate < 0 {
		return &ValidationError{Field: "sample rate", Reason: fmt.Sprintf("%d is negative", opts.SampleRate)}
	}
	if math.IsNaN(opts.NormalizeTargetDB) || math.IsInf(opts.NormalizeTargetDB, 0) {
		return &ValidationError{Field: "normalize target", Reason: fmt.Sprintf("%v is not a finite level", opts.NormalizeTargetDB)}
	}
	if opts.GateEnabled {
		if err := opts.Gate.Validate(); err != nil {
			return &ValidationError{Field: "gate", Reason: "bad parameters", Err: err}
		}
	}
	if opts.CompressorEnabled {
		if err := opts.Compressor.Validate(); err != nil {
			return &ValidationError{Field: "compressor", Reason: "bad parameters", Err: err}
		}
	}
	return nil
}

func checkGains(opts Options, gains []float64) error {
	if want := opts.Engine.NumBands(); len(gains) != want {
		return &ValidationError{Field: "gains", Reason: fmt.Sprintf("got %d values, want %d", len(gains), want)}
	}
	return nil
}
