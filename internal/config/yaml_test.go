// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eqlab/internal/analysis"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "eqlab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Processing.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", cfg.Processing.SampleRate, DefaultSampleRate)
	}
	if len(cfg.Processing.Bands) != NumBands {
		t.Errorf("len(Bands) = %d, want %d", len(cfg.Processing.Bands), NumBands)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
processing:
  sample_rate: 48000
  q: 1.4
  gate:
    enabled: true
    threshold_db: -45
  compressor:
    enabled: true
    ratio: 2
analysis:
  fft_window: Hamming
  window_size: 1024
  hop_size: 256
transport:
  udp_send_interval: 50ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Processing.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", cfg.Processing.SampleRate)
	}
	if cfg.Processing.Q != 1.4 {
		t.Errorf("Q = %v, want 1.4", cfg.Processing.Q)
	}
	if !cfg.Processing.Gate.Enabled || cfg.Processing.Gate.ThresholdDB != -45 {
		t.Errorf("Gate = %+v, want enabled with -45 dB threshold", cfg.Processing.Gate)
	}
	// Unset keys keep their defaults.
	if cfg.Processing.Gate.ReductionDB != DefaultGateReductionDB {
		t.Errorf("Gate.ReductionDB = %v, want default %v", cfg.Processing.Gate.ReductionDB, DefaultGateReductionDB)
	}
	if cfg.Processing.Compressor.ThresholdDB != DefaultCompressorThresholdDB {
		t.Errorf("Compressor.ThresholdDB = %v, want default %v", cfg.Processing.Compressor.ThresholdDB, DefaultCompressorThresholdDB)
	}
	if cfg.Analysis.WindowSize != 1024 || cfg.Analysis.HopSize != 256 {
		t.Errorf("Analysis = %+v, want window 1024 hop 256", cfg.Analysis)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("UDPSendInterval = %v, want 50ms", cfg.Transport.UDPSendInterval)
	}
}

func TestLoadConfig_ValidationError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
processing:
  q: 0
analysis:
  window_size: 1000
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"invalid configuration", "processing.q", "analysis.window_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "processing:\n  sample_rate: 22050\n")

	t.Setenv("ENV_SAMPLE_RATE", "48000")
	t.Setenv("ENV_EQ_Q", "2.5")
	t.Setenv("ENV_NORMALIZE_TARGET_DB", "-3")
	t.Setenv("ENV_WS_ADDRESS", ":8080")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "10ms")
	t.Setenv("ENV_DEBUG", "not-a-bool")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Processing.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want env value 48000", cfg.Processing.SampleRate)
	}
	if cfg.Processing.Q != 2.5 {
		t.Errorf("Q = %v, want 2.5", cfg.Processing.Q)
	}
	if cfg.Processing.NormalizeTargetDB != -3 {
		t.Errorf("NormalizeTargetDB = %v, want -3", cfg.Processing.NormalizeTargetDB)
	}
	if cfg.Transport.WSAddress != ":8080" {
		t.Errorf("WSAddress = %q, want :8080", cfg.Transport.WSAddress)
	}
	if cfg.Transport.UDPSendInterval != 10*time.Millisecond {
		t.Errorf("UDPSendInterval = %v, want 10ms", cfg.Transport.UDPSendInterval)
	}
	if cfg.Debug {
		t.Error("Debug = true, want unparseable override ignored")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"low sample rate", func(c *Config) { c.Processing.SampleRate = 4000 }, "processing.sample_rate"},
		{"positive target", func(c *Config) { c.Processing.NormalizeTargetDB = 1 }, "processing.normalize_target_db"},
		{"short bands", func(c *Config) { c.Processing.Bands = []float64{100, 200} }, "processing.bands"},
		{"unsorted bands", func(c *Config) { c.Processing.Bands[3], c.Processing.Bands[4] = 1000, 500 }, "ascending"},
		{"ratio below one", func(c *Config) { c.Processing.Compressor.Ratio = 0.5 }, "compressor.ratio"},
		{"unknown window", func(c *Config) { c.Analysis.FFTWindow = "Square" }, "analysis.fft_window"},
		{"odd window size", func(c *Config) { c.Analysis.WindowSize = 1000 }, "try 1024"},
		{"zero hop", func(c *Config) { c.Analysis.HopSize = 0 }, "analysis.hop_size"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"udp without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "udp_target_address"},
		{"udp disabled ignores address", func(c *Config) { c.Transport.UDPTargetAddress = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultBandsIsCopy(t *testing.T) {
	a := DefaultBands()
	a[0] = 1
	if b := DefaultBands(); b[0] != 63 {
		t.Errorf("DefaultBands()[0] = %v after mutation of a previous copy, want 63", b[0])
	}
}

func TestProcessingConversions(t *testing.T) {
	cfg := NewConfig()
	cfg.Processing.Gate.ThresholdDB = -40
	cfg.Processing.Compressor.Ratio = 2

	gate := cfg.Processing.GateParams()
	if gate.ThresholdDB != -40 || gate.ReductionDB != DefaultGateReductionDB {
		t.Errorf("GateParams() = %+v", gate)
	}
	if err := gate.Validate(); err != nil {
		t.Errorf("GateParams().Validate() error: %v", err)
	}

	comp := cfg.Processing.CompressorParams()
	if comp.Ratio != 2 || comp.ThresholdDB != DefaultCompressorThresholdDB {
		t.Errorf("CompressorParams() = %+v", comp)
	}

	engine, err := cfg.Processing.Engine()
	if err != nil {
		t.Fatalf("Engine() error: %v", err)
	}
	if engine.NumBands() != NumBands {
		t.Errorf("NumBands() = %d, want %d", engine.NumBands(), NumBands)
	}

	cfg.Analysis.FFTWindow = "hamming"
	if got := cfg.Analysis.Window(); got != analysis.Hamming {
		t.Errorf("Window() = %v, want Hamming", got)
	}
	cfg.Analysis.FFTWindow = "bogus"
	if got := cfg.Analysis.Window(); got != analysis.Hann {
		t.Errorf("Window() fallback = %v, want Hann", got)
	}
}
