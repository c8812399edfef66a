// SPDX-License-Identifier: MIT
package cli

import (
	"bytes"
	"strings"
	"testing"

	"eqlab/internal/equalizer"
)

func TestFormatGains(t *testing.T) {
	tests := []struct {
		gains []float64
		want  string
	}{
		{nil, ""},
		{[]float64{0}, "+0.0"},
		{[]float64{3, -1.5, 12}, "+3.0 -1.5 +12.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatGains(tt.gains); got != tt.want {
				t.Errorf("formatGains(%v) = %q, want %q", tt.gains, got, tt.want)
			}
		})
	}
}

func TestPrintBands(t *testing.T) {
	var buf bytes.Buffer
	PrintBands(&buf, equalizer.DefaultBands())

	out := buf.String()
	for _, want := range []string{"Band 1:", "63 Hz", "Band 9:", "16000 Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintBands output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResponse(t *testing.T) {
	engine := equalizer.NewDefault()
	gains := []float64{0, 0, 0, 0, 6, 0, 0, 0, 0}
	resp, err := engine.Response(44100, gains, 1, 4411)
	if err != nil {
		t.Fatalf("Response() error: %v", err)
	}

	var buf bytes.Buffer
	PrintResponse(&buf, engine.Bands(), resp)
	if !strings.Contains(buf.String(), "+6.00 dB") {
		t.Errorf("expected +6.00 dB at 1 kHz:\n%s", buf.String())
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, "no such file")
	if !strings.Contains(buf.String(), "Error:") || !strings.Contains(buf.String(), "no such file") {
		t.Errorf("PrintError output = %q", buf.String())
	}
}
