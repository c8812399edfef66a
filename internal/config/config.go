package config

import "time"

// Core configuration constants that define the boundaries and defaults for
// the processing pipeline and the analysis views.
const (
	// Processing defaults
	DefaultSampleRate        = 44100 // CD-quality working rate
	DefaultNormalizeTargetDB = -1.0  // Peak target before EQ and after dynamics
	DefaultQ                 = 1.0   // Shared quality factor for all bands
	DefaultParallelism       = 2     // Files processed at once by `batch`

	// Noise gate defaults
	DefaultGateEnabled     = false
	DefaultGateThresholdDB = -50.0
	DefaultGateReductionDB = -80.0

	// Compressor defaults
	DefaultCompressorEnabled     = false
	DefaultCompressorThresholdDB = -18.0
	DefaultCompressorRatio       = 4.0
	DefaultCompressorMakeupDB    = 0.0

	// Analysis defaults
	DefaultFFTWindow      = "Hann"
	DefaultWindowSize     = 2048 // STFT window (power of 2)
	DefaultHopSize        = 512  // STFT hop
	DefaultResponsePoints = 2048 // EQ response evaluation points
	DefaultDisplayPoints  = 500  // Decimated points for FFT/response plots
	DefaultWaveformPoints = 2000 // Decimated points for waveform plots

	// Transport defaults
	DefaultWSAddress        = ""               // WebSocket broadcast disabled
	DefaultUDPEnabled       = false            // UDP frame publisher disabled
	DefaultUDPTargetAddress = "127.0.0.1:9090" // Visualizer listening address
	DefaultUDPSendInterval  = 33 * time.Millisecond

	// Debug defaults
	DefaultLogLevel  = "info"
	DefaultVerbosity = false

	// Limits
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxWindowSize = 65536  // Largest STFT window accepted
	NumBands      = 9      // Gain vector length
)

// DefaultBands returns the equalizer centre frequencies in Hz. A fresh slice
// is returned on every call.
func DefaultBands() []float64 {
	return []float64{63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}
}

// NewConfig creates a Config populated with the built-in defaults. It is the
// base that YAML files and environment overrides are applied on top of.
func NewConfig() *Config {
	return &Config{
		Debug:    DefaultVerbosity,
		LogLevel: DefaultLogLevel,
		Processing: ProcessingConfig{
			SampleRate:        DefaultSampleRate,
			NormalizeTargetDB: DefaultNormalizeTargetDB,
			Q:                 DefaultQ,
			Bands:             DefaultBands(),
			Parallelism:       DefaultParallelism,
			Gate: GateConfig{
				Enabled:     DefaultGateEnabled,
				ThresholdDB: DefaultGateThresholdDB,
				ReductionDB: DefaultGateReductionDB,
			},
			Compressor: CompressorConfig{
				Enabled:     DefaultCompressorEnabled,
				ThresholdDB: DefaultCompressorThresholdDB,
				Ratio:       DefaultCompressorRatio,
				MakeupDB:    DefaultCompressorMakeupDB,
			},
		},
		Analysis: AnalysisConfig{
			FFTWindow:      DefaultFFTWindow,
			WindowSize:     DefaultWindowSize,
			HopSize:        DefaultHopSize,
			ResponsePoints: DefaultResponsePoints,
			DisplayPoints:  DefaultDisplayPoints,
			WaveformPoints: DefaultWaveformPoints,
		},
		Transport: TransportConfig{
			WSAddress:        DefaultWSAddress,
			UDPEnabled:       DefaultUDPEnabled,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
