// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eqlab/internal/analysis"
	"eqlab/internal/log"
	"eqlab/pkg/bitint"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug      bool             `yaml:"debug"`      // Enable debug mode (verbose logging).
	LogLevel   string           `yaml:"log_level"`  // Logging level ("debug", "info", "warn", "error").
	Processing ProcessingConfig `yaml:"processing"` // Offline processing chain settings.
	Analysis   AnalysisConfig   `yaml:"analysis"`   // Spectral analysis and display settings.
	Transport  TransportConfig  `yaml:"transport"`  // Analysis delivery settings (WebSocket, UDP).
}

// ProcessingConfig holds the settings used by `process` and `batch`.
type ProcessingConfig struct {
	SampleRate        int              `yaml:"sample_rate"`         // Working sample rate in Hz; input is resampled to it.
	NormalizeTargetDB float64          `yaml:"normalize_target_db"` // Peak normalization target in dBFS.
	Q                 float64          `yaml:"q"`                   // Quality factor shared by all bands.
	Bands             []float64        `yaml:"bands"`               // Nine ascending centre frequencies in Hz.
	Parallelism       int              `yaml:"parallelism"`         // Concurrent files in batch mode.
	Gate              GateConfig       `yaml:"gate"`                // Noise gate stage.
	Compressor        CompressorConfig `yaml:"compressor"`          // Compressor stage.
}

// GateConfig holds the noise gate stage settings.
type GateConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ThresholdDB float64 `yaml:"threshold_db"`
	ReductionDB float64 `yaml:"reduction_db"`
}

// CompressorConfig holds the compressor stage settings.
type CompressorConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ThresholdDB float64 `yaml:"threshold_db"`
	Ratio       float64 `yaml:"ratio"`
	MakeupDB    float64 `yaml:"makeup_db"`
}

// AnalysisConfig holds settings for the spectrum, spectrogram and response views.
type AnalysisConfig struct {
	FFTWindow      string `yaml:"fft_window"`      // Window function for the STFT (e.g., "Hann", "Hamming").
	WindowSize     int    `yaml:"window_size"`     // STFT window length (power of 2).
	HopSize        int    `yaml:"hop_size"`        // STFT hop length.
	ResponsePoints int    `yaml:"response_points"` // Points used to evaluate the EQ response.
	DisplayPoints  int    `yaml:"display_points"`  // Decimation target for spectrum and response output.
	WaveformPoints int    `yaml:"waveform_points"` // Decimation target for waveform output.
}

// TransportConfig holds settings related to sending analysis data over the network.
type TransportConfig struct {
	WSAddress        string        `yaml:"ws_address"`         // Listen address for the WebSocket broadcaster ("" disables it).
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable streaming spectrogram frames over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches the default locations ("eqlab.yaml", then "config.yaml"). If no file is
// found, it uses built-in defaults. After loading, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"eqlab.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	log.Debugf("Config: Loaded %s", path)

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}

	p := c.Processing
	if p.SampleRate < MinSampleRate || p.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("processing.sample_rate %d outside [%d, %d]", p.SampleRate, MinSampleRate, MaxSampleRate))
	}
	// Output is written as fixed-point PCM, so the tool never asks for a
	// peak above full scale; the processing core itself accepts any target.
	if p.NormalizeTargetDB > 0 {
		errs = append(errs, fmt.Errorf("processing.normalize_target_db %.2f must be <= 0", p.NormalizeTargetDB))
	}
	if p.Q <= 0 {
		errs = append(errs, fmt.Errorf("processing.q %.3f must be positive", p.Q))
	}
	if len(p.Bands) != NumBands {
		errs = append(errs, fmt.Errorf("processing.bands must list %d frequencies, got %d", NumBands, len(p.Bands)))
	} else {
		for i, f := range p.Bands {
			if f <= 0 {
				errs = append(errs, fmt.Errorf("processing.bands[%d] %.1f must be positive", i, f))
			} else if i > 0 && f <= p.Bands[i-1] {
				errs = append(errs, fmt.Errorf("processing.bands must be strictly ascending at index %d", i))
			}
		}
	}
	if p.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("processing.parallelism %d must be at least 1", p.Parallelism))
	}
	if p.Compressor.Ratio < 1 {
		errs = append(errs, fmt.Errorf("processing.compressor.ratio %.2f must be >= 1", p.Compressor.Ratio))
	}

	a := c.Analysis
	if _, err := analysis.ParseWindowFunc(a.FFTWindow); err != nil {
		errs = append(errs, fmt.Errorf("analysis.fft_window: %w", err))
	}
	if !bitint.IsPowerOfTwo(a.WindowSize) || a.WindowSize > MaxWindowSize {
		errs = append(errs, fmt.Errorf("analysis.window_size %d must be a power of 2 no larger than %d (try %d)",
			a.WindowSize, MaxWindowSize, min(bitint.NextPowerOfTwo(a.WindowSize), MaxWindowSize)))
	}
	if a.HopSize < 1 {
		errs = append(errs, fmt.Errorf("analysis.hop_size %d must be positive", a.HopSize))
	}
	if a.ResponsePoints < 2 {
		errs = append(errs, fmt.Errorf("analysis.response_points %d must be at least 2", a.ResponsePoints))
	}
	if a.DisplayPoints < 1 || a.WaveformPoints < 1 {
		errs = append(errs, errors.New("analysis.display_points and analysis.waveform_points must be positive"))
	}

	t := c.Transport
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", t.UDPTargetAddress))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides lets ENV_* variables win over file and default values.
// Unparseable values are ignored with a warning.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Debugf("Config: Overriding debug from env: %v", bVal)
		} else {
			log.Warnf("Config: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Debugf("Config: Overriding log_level from env: %s", val)
	}

	// ENV_{...}
	// These are specific to the processing chain.

	// ENV_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Processing.SampleRate = iVal
			log.Debugf("Config: Overriding processing.sample_rate from env: %d", iVal)
		} else {
			log.Warnf("Config: Ignoring ENV_SAMPLE_RATE=%q: %v", val, err)
		}
	}
	// ENV_NORMALIZE_TARGET_DB
	if val, ok := os.LookupEnv("ENV_NORMALIZE_TARGET_DB"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Processing.NormalizeTargetDB = fVal
			log.Debugf("Config: Overriding processing.normalize_target_db from env: %.2f", fVal)
		} else {
			log.Warnf("Config: Ignoring ENV_NORMALIZE_TARGET_DB=%q: %v", val, err)
		}
	}
	// ENV_EQ_Q
	if val, ok := os.LookupEnv("ENV_EQ_Q"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Processing.Q = fVal
			log.Debugf("Config: Overriding processing.q from env: %.3f", fVal)
		} else {
			log.Warnf("Config: Ignoring ENV_EQ_Q=%q: %v", val, err)
		}
	}

	// ENV_{...}
	// These are specific to the transport layer.

	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WSAddress = val
		log.Debugf("Config: Overriding transport.ws_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			log.Debugf("Config: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		log.Debugf("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			log.Debugf("Config: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
