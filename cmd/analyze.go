// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"eqlab/internal/cli"
	"eqlab/internal/config"
	"eqlab/internal/equalizer"
	"eqlab/internal/log"
	"eqlab/internal/pipeline"
	"eqlab/internal/signalio"
	"eqlab/internal/transport"
	"eqlab/internal/transport/udp"

	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// flatOr returns gains, or zeros for every band when none were given.
func flatOr(gains []float64, engine *equalizer.Engine) []float64 {
	if gains == nil {
		return make([]float64, engine.NumBands())
	}
	return gains
}

func (a *app) analyzeCommand() *cobra.Command {
	var (
		gains     []float64
		q         float64
		asJSON    bool
		udpOn     bool
		udpTarget string
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <input>",
		Short: "Report waveform, spectrum, band energy, EQ response and spectrogram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			engine, err := cfg.Processing.Engine()
			if err != nil {
				return err
			}

			sig, err := signalio.Load(args[0], cfg.Processing.SampleRate)
			if err != nil {
				return err
			}

			opts := pipeline.AnalyzeOptions{
				Gains:          flatOr(gains, engine),
				Q:              changedOr(cmd, "q", q, cfg.Processing.Q),
				Engine:         engine,
				Window:         cfg.Analysis.Window(),
				WindowSize:     cfg.Analysis.WindowSize,
				HopSize:        cfg.Analysis.HopSize,
				ResponsePoints: cfg.Analysis.ResponsePoints,
				DisplayPoints:  cfg.Analysis.DisplayPoints,
				WaveformPoints: cfg.Analysis.WaveformPoints,
			}
			report, err := pipeline.Analyze(sig, opts)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				cli.PrintReport(cmd.OutOrStdout(), args[0], report)
			}

			if err := a.publish(cmd, transport.NewMessage(transport.KindReport, args[0], report)); err != nil {
				return err
			}

			if changedOr(cmd, "udp", udpOn, cfg.Transport.UDPEnabled) {
				target := changedOr(cmd, "udp-target", udpTarget, cfg.Transport.UDPTargetAddress)
				return streamFrames(cmd, target, cfg, report)
			}
			return nil
		},
	}

	fs := analyzeCmd.Flags()
	fs.Float64SliceVarP(&gains, "gains", "g", nil, "EQ gains in dB for the response view (default flat)")
	fs.Float64Var(&q, "q", config.DefaultQ, "Quality factor for the response view")
	fs.BoolVar(&asJSON, "json", false, "Write the full report as JSON")
	fs.BoolVar(&udpOn, "udp", config.DefaultUDPEnabled, "Stream spectrogram frames over UDP")
	fs.StringVar(&udpTarget, "udp-target", config.DefaultUDPTargetAddress, "UDP target host:port")
	return analyzeCmd
}

// streamFrames plays the spectrogram out over UDP one frame per interval.
func streamFrames(cmd *cobra.Command, target string, cfg *config.Config, report pipeline.Report) error {
	sender, err := udp.NewSender(target)
	if err != nil {
		return err
	}
	defer sender.Close()

	pub, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, report.Spectrogram)
	if err != nil {
		return err
	}
	pub.Start()
	defer pub.Close()

	select {
	case <-pub.Done():
		log.Infof("CLI: streamed %d spectrogram frames to %s", pub.Sent(), target)
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

func (a *app) responseCommand() *cobra.Command {
	var (
		gains      []float64
		q          float64
		sampleRate int
		points     int
		asJSON     bool
	)

	responseCmd := &cobra.Command{
		Use:   "response",
		Short: "Evaluate the equalizer frequency response for a gain setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			engine, err := cfg.Processing.Engine()
			if err != nil {
				return err
			}

			resp, err := engine.Response(
				changedOr(cmd, "sample-rate", sampleRate, cfg.Processing.SampleRate),
				flatOr(gains, engine),
				changedOr(cmd, "q", q, cfg.Processing.Q),
				changedOr(cmd, "points", points, cfg.Analysis.ResponsePoints),
			)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else {
				cli.PrintResponse(cmd.OutOrStdout(), engine.Bands(), resp)
			}
			return a.publish(cmd, transport.NewMessage(transport.KindResponse, "", resp))
		},
	}

	fs := responseCmd.Flags()
	fs.Float64SliceVarP(&gains, "gains", "g", nil, "Gains in dB, one per band (default flat)")
	fs.Float64Var(&q, "q", config.DefaultQ, "Quality factor shared by all bands")
	fs.IntVarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate, "Sample rate in Hz")
	fs.IntVarP(&points, "points", "n", config.DefaultResponsePoints, "Frequency points from 0 Hz to Nyquist")
	fs.BoolVar(&asJSON, "json", false, "Write the full response as JSON")
	return responseCmd
}

func (a *app) bandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "List the equalizer band centre frequencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.cfg.Processing.Engine()
			if err != nil {
				return err
			}
			cli.PrintBands(cmd.OutOrStdout(), engine.Bands())
			return nil
		},
	}
}

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Show the stored format, rate, channels and length of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				meta, err := signalio.Info(path)
				if err != nil {
					return err
				}
				cli.PrintKeyValue(out, path, fmt.Sprintf("%s, %d Hz, %d ch, %.2fs",
					meta.Format, meta.SampleRate, meta.Channels, meta.Duration()))
			}
			return nil
		},
	}
}
