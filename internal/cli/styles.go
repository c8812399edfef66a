// SPDX-License-Identifier: MIT

// Package cli renders human-readable summaries for the command line tools.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"eqlab/internal/analysis"
	"eqlab/internal/equalizer"
	"eqlab/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#2E86DE")
	accentColor  = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	errorColor   = lipgloss.Color("#C0392B")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints the version line.
func PrintVersion(w io.Writer, name, version string) {
	fmt.Fprintln(w, TitleStyle.Render(name))
	PrintKeyValue(w, "Version:", version)
}

// PrintError prints an error message.
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintKeyValue prints one aligned key/value line.
func PrintKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(key), ValueStyle.Render(value))
}

// PrintResult summarises one processed file.
func PrintResult(w io.Writer, r pipeline.Result) {
	fmt.Fprintln(w, TitleStyle.Render(r.OutputPath))
	PrintKeyValue(w, "Input:", r.InputPath)
	PrintKeyValue(w, "Duration:", fmt.Sprintf("%.2fs @ %d Hz", r.Signal.Duration(), r.Signal.SampleRate))
	PrintKeyValue(w, "Gains:", formatGains(r.Gains))
	PrintKeyValue(w, "Sections:", fmt.Sprintf("%d", r.Sections))
	PrintKeyValue(w, "Peak in:", formatDB(r.InputPeakDB))
	PrintKeyValue(w, "Peak out:", formatDB(r.OutputPeakDB))
	PrintKeyValue(w, "Elapsed:", r.Elapsed.Round(time.Millisecond).String())
}

// PrintReport summarises an analysis report.
func PrintReport(w io.Writer, source string, r pipeline.Report) {
	fmt.Fprintln(w, TitleStyle.Render(source))
	PrintKeyValue(w, "Sample rate:", fmt.Sprintf("%d Hz", r.SampleRate))
	PrintKeyValue(w, "Duration:", fmt.Sprintf("%.2fs", r.Duration))
	PrintKeyValue(w, "Peak:", formatDB(r.PeakDB))
	PrintKeyValue(w, "Dominant:", fmt.Sprintf("%.1f Hz", r.Spectrum.PeakFrequency()))
	PrintKeyValue(w, "STFT frames:", fmt.Sprintf("%d x %d bins", r.Spectrogram.NumFrames(), len(r.Spectrogram.Frequencies)))

	fmt.Fprintln(w, SectionStyle.Render("Band energy"))
	PrintBandEnergies(w, r.Bands)
}

// PrintBandEnergies prints one line per band.
func PrintBandEnergies(w io.Writer, bands []analysis.BandEnergy) {
	for _, b := range bands {
		PrintKeyValue(w, fmt.Sprintf("%.0f Hz", b.CenterHz), formatDB(b.MagnitudeDB))
	}
}

// PrintBands lists the equalizer centre frequencies.
func PrintBands(w io.Writer, bands equalizer.Bands) {
	fmt.Fprintln(w, SectionStyle.Render("Bands"))
	for i, f := range bands {
		PrintKeyValue(w, fmt.Sprintf("Band %d:", i+1), fmt.Sprintf("%g Hz", f))
	}
}

// PrintResponse prints the cascade response sampled at each band centre.
func PrintResponse(w io.Writer, bands equalizer.Bands, resp equalizer.Response) {
	fmt.Fprintln(w, SectionStyle.Render("Response at band centres"))
	for _, f := range bands {
		mag, phase := resp.At(f)
		PrintKeyValue(w, fmt.Sprintf("%g Hz", f), fmt.Sprintf("%+.2f dB  %+.3f rad", mag, phase))
	}
}

func formatGains(gains []float64) string {
	parts := make([]string, len(gains))
	for i, g := range gains {
		parts[i] = fmt.Sprintf("%+.1f", g)
	}
	return strings.Join(parts, " ")
}

func formatDB(db float64) string {
	return fmt.Sprintf("%.2f dBFS", db)
}
