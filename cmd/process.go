// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eqlab/internal/cli"
	"eqlab/internal/config"
	"eqlab/internal/pipeline"
	"eqlab/internal/transport"

	"github.com/spf13/cobra"
)

// chainFlags are the processing chain settings shared by process and batch.
type chainFlags struct {
	gains      []float64
	q          float64
	targetDB   float64
	sampleRate int

	gate          bool
	gateThreshold float64
	gateReduction float64

	compress      bool
	compThreshold float64
	compRatio     float64
	compMakeup    float64
}

func (f *chainFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64SliceVarP(&f.gains, "gains", "g", nil,
		fmt.Sprintf("Comma-separated gains in dB, one per band (%d values; default flat)", config.NumBands))
	fs.Float64Var(&f.q, "q", config.DefaultQ, "Quality factor shared by all bands")
	fs.Float64Var(&f.targetDB, "target-db", config.DefaultNormalizeTargetDB, "Peak normalization target in dBFS")
	fs.IntVarP(&f.sampleRate, "sample-rate", "s", config.DefaultSampleRate, "Working sample rate in Hz")

	fs.BoolVar(&f.gate, "gate", config.DefaultGateEnabled, "Enable the noise gate")
	fs.Float64Var(&f.gateThreshold, "gate-threshold", config.DefaultGateThresholdDB, "Gate threshold in dBFS")
	fs.Float64Var(&f.gateReduction, "gate-reduction", config.DefaultGateReductionDB, "Gain applied below the gate threshold in dB")

	fs.BoolVar(&f.compress, "compress", config.DefaultCompressorEnabled, "Enable the compressor")
	fs.Float64Var(&f.compThreshold, "comp-threshold", config.DefaultCompressorThresholdDB, "Compressor threshold in dBFS")
	fs.Float64Var(&f.compRatio, "comp-ratio", config.DefaultCompressorRatio, "Compression ratio")
	fs.Float64Var(&f.compMakeup, "comp-makeup", config.DefaultCompressorMakeupDB, "Makeup gain in dB")
}

// options resolves the flags against the loaded configuration.
func (f *chainFlags) options(cmd *cobra.Command, cfg *config.Config, in, out string) (pipeline.Options, error) {
	engine, err := cfg.Processing.Engine()
	if err != nil {
		return pipeline.Options{}, err
	}

	gate := cfg.Processing.GateParams()
	gate.ThresholdDB = changedOr(cmd, "gate-threshold", f.gateThreshold, gate.ThresholdDB)
	gate.ReductionDB = changedOr(cmd, "gate-reduction", f.gateReduction, gate.ReductionDB)

	comp := cfg.Processing.CompressorParams()
	comp.ThresholdDB = changedOr(cmd, "comp-threshold", f.compThreshold, comp.ThresholdDB)
	comp.Ratio = changedOr(cmd, "comp-ratio", f.compRatio, comp.Ratio)
	comp.MakeupDB = changedOr(cmd, "comp-makeup", f.compMakeup, comp.MakeupDB)

	gains := f.gains
	if gains == nil {
		gains = make([]float64, engine.NumBands())
	}

	return pipeline.Options{
		InputPath:         in,
		OutputPath:        out,
		Gains:             gains,
		Q:                 changedOr(cmd, "q", f.q, cfg.Processing.Q),
		GateEnabled:       changedOr(cmd, "gate", f.gate, cfg.Processing.Gate.Enabled),
		Gate:              gate,
		CompressorEnabled: changedOr(cmd, "compress", f.compress, cfg.Processing.Compressor.Enabled),
		Compressor:        comp,
		NormalizeTargetDB: changedOr(cmd, "target-db", f.targetDB, cfg.Processing.NormalizeTargetDB),
		SampleRate:        changedOr(cmd, "sample-rate", f.sampleRate, cfg.Processing.SampleRate),
		Engine:            engine,
	}, nil
}

// resultMessage is the transport form of a processed file.
type resultMessage struct {
	Input        string    `json:"input"`
	Output       string    `json:"output"`
	SampleRate   int       `json:"sample_rate"`
	Duration     float64   `json:"duration"`
	Gains        []float64 `json:"gains"`
	Sections     int       `json:"sections"`
	InputPeakDB  float64   `json:"input_peak_db"`
	OutputPeakDB float64   `json:"output_peak_db"`
	ElapsedMS    int64     `json:"elapsed_ms"`
}

func newResultMessage(r pipeline.Result) transport.Message {
	return transport.NewMessage(transport.KindResult, r.InputPath, resultMessage{
		Input:        r.InputPath,
		Output:       r.OutputPath,
		SampleRate:   r.Signal.SampleRate,
		Duration:     r.Signal.Duration(),
		Gains:        r.Gains,
		Sections:     r.Sections,
		InputPeakDB:  r.InputPeakDB,
		OutputPeakDB: r.OutputPeakDB,
		ElapsedMS:    r.Elapsed.Milliseconds(),
	})
}

func (a *app) processCommand() *cobra.Command {
	var flags chainFlags

	processCmd := &cobra.Command{
		Use:   "process <input> <output.wav>",
		Short: "Equalize, optionally gate and compress, and normalize one file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, a.cfg, args[0], args[1])
			if err != nil {
				return err
			}

			res, err := pipeline.ProcessFile(opts)
			if err != nil {
				return err
			}

			cli.PrintResult(cmd.OutOrStdout(), res)
			return a.publish(cmd, newResultMessage(res))
		},
	}
	flags.register(processCmd)
	return processCmd
}

func (a *app) batchCommand() *cobra.Command {
	var (
		flags       chainFlags
		parallelism int
	)

	batchCmd := &cobra.Command{
		Use:   "batch <output-dir> <input>...",
		Short: "Process several files concurrently into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, inputs := args[0], args[1:]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			jobs := make([]pipeline.Options, 0, len(inputs))
			for _, in := range inputs {
				opts, err := flags.options(cmd, a.cfg, in, batchOutputPath(outDir, in))
				if err != nil {
					return err
				}
				jobs = append(jobs, opts)
			}

			par := changedOr(cmd, "parallelism", parallelism, a.cfg.Processing.Parallelism)
			start := time.Now()
			results, err := pipeline.ProcessBatch(cmd.Context(), jobs, par)

			out := cmd.OutOrStdout()
			var messages []transport.Message
			for _, res := range results {
				if res.OutputPath == "" {
					continue
				}
				cli.PrintResult(out, res)
				fmt.Fprintln(out)
				messages = append(messages, newResultMessage(res))
			}
			if err != nil {
				return err
			}

			cli.PrintKeyValue(out, "Batch:", fmt.Sprintf("%d files in %s", len(results), time.Since(start).Round(time.Millisecond)))
			return a.publish(cmd, messages...)
		},
	}
	flags.register(batchCmd)
	batchCmd.Flags().IntVarP(&parallelism, "parallelism", "j", config.DefaultParallelism, "Files processed at once")
	return batchCmd
}

// batchOutputPath maps an input file to <dir>/<name>.wav.
func batchOutputPath(dir, input string) string {
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".wav")
}
