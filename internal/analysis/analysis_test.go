// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"eqlab/internal/audio"
	"eqlab/pkg/utils"
)

const testRate = 44100

var eqBands = []float64{63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

func TestComputeFFTBinCentredTone(t *testing.T) {
	const n = 4410 // 10 Hz resolution
	sig := audio.Signal{Samples: utils.GenerateSineWave(n, testRate, 1000, 1), SampleRate: testRate}
	spec := ComputeFFT(sig)

	if got, want := len(spec.Frequencies), n/2+1; got != want {
		t.Fatalf("len(Frequencies) = %d, want %d", got, want)
	}
	if len(spec.MagnitudeDB) != len(spec.Frequencies) {
		t.Fatalf("len(MagnitudeDB) = %d, want %d", len(spec.MagnitudeDB), len(spec.Frequencies))
	}
	if spec.Frequencies[len(spec.Frequencies)-1] != testRate/2 {
		t.Errorf("last frequency = %v, want Nyquist", spec.Frequencies[len(spec.Frequencies)-1])
	}

	peak := utils.FindPeakBin(spec.MagnitudeDB, 1, len(spec.MagnitudeDB)-1)
	if peak != 100 {
		t.Errorf("peak bin = %d (%.1f Hz), want 100 (1000 Hz)", peak, spec.Frequencies[peak])
	}
	// A unit sine splits its energy between ±f, so |X|/N = 0.5.
	if want := 20 * math.Log10(0.5); math.Abs(spec.MagnitudeDB[peak]-want) > 1e-6 {
		t.Errorf("peak magnitude = %.6f dB, want %.6f dB", spec.MagnitudeDB[peak], want)
	}
	if got := spec.PeakFrequency(); got != 1000 {
		t.Errorf("PeakFrequency() = %v, want 1000", got)
	}
}

func TestComputeFFTEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		sig      audio.Signal
		wantBins int
	}{
		{"Empty", audio.Signal{SampleRate: testRate}, 0},
		{"Single sample", audio.Signal{Samples: []float64{1}, SampleRate: testRate}, 1},
		{"Odd length", audio.Signal{Samples: make([]float64, 5), SampleRate: testRate}, 3},
		{"No sample rate", audio.Signal{Samples: make([]float64, 8)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ComputeFFT(tt.sig)
			if len(spec.MagnitudeDB) != tt.wantBins {
				t.Errorf("bins = %d, want %d", len(spec.MagnitudeDB), tt.wantBins)
			}
			for i, v := range spec.MagnitudeDB {
				if math.IsInf(v, 0) || math.IsNaN(v) {
					t.Errorf("bin %d = %v, want finite", i, v)
				}
			}
		})
	}
}

func TestComputeSpectrogramTone(t *testing.T) {
	const windowSize, hopSize = 1024, 512
	toneHz := 50.0 * testRate / windowSize
	sig := audio.Signal{Samples: utils.GenerateSineWave(testRate, testRate, toneHz, 0.8), SampleRate: testRate}

	spec, err := ComputeSpectrogram(sig, windowSize, hopSize)
	if err != nil {
		t.Fatalf("ComputeSpectrogram() error: %v", err)
	}

	if got, want := spec.NumFrames(), 1+testRate/hopSize; got != want {
		t.Errorf("frames = %d, want %d", got, want)
	}
	if got, want := len(spec.MagnitudeDB), windowSize/2+1; got != want {
		t.Fatalf("bins = %d, want %d", got, want)
	}
	if got, want := spec.Times[1], float64(hopSize)/testRate; got != want {
		t.Errorf("Times[1] = %v, want %v", got, want)
	}
	if got := spec.Frequencies[50]; math.Abs(got-toneHz) > 1e-9 {
		t.Errorf("Frequencies[50] = %v, want %v", got, toneHz)
	}

	mid := spec.NumFrames() / 2
	frame := spec.Frame(mid)
	if peak := utils.FindPeakBin(frame, 0, len(frame)-1); peak != 50 {
		t.Errorf("peak bin in frame %d = %d, want 50", mid, peak)
	}

	top := math.Inf(-1)
	for _, row := range spec.MagnitudeDB {
		for _, v := range row {
			top = math.Max(top, v)
			if v < -TopDB-1e-9 {
				t.Fatalf("value %v below the %v dB floor", v, -TopDB)
			}
		}
	}
	if math.Abs(top) > 1e-9 {
		t.Errorf("loudest cell = %v dB, want 0", top)
	}
}

func TestComputeSpectrogramSilence(t *testing.T) {
	sig := audio.Signal{Samples: make([]float64, 2048), SampleRate: testRate}
	spec, err := ComputeSpectrogram(sig, 256, 128)
	if err != nil {
		t.Fatalf("ComputeSpectrogram() error: %v", err)
	}
	for k, row := range spec.MagnitudeDB {
		for f, v := range row {
			if v != 0 {
				t.Fatalf("cell [%d][%d] = %v, want 0 for silence", k, f, v)
			}
		}
	}
}

func TestComputeSpectrogramShortSignal(t *testing.T) {
	sig := audio.Signal{Samples: []float64{0.5, -0.5, 0.25}, SampleRate: 8000}
	spec, err := ComputeSpectrogram(sig, 64, 16)
	if err != nil {
		t.Fatalf("ComputeSpectrogram() error: %v", err)
	}
	if spec.NumFrames() != 1 {
		t.Errorf("frames = %d, want 1", spec.NumFrames())
	}
}

func TestComputeSpectrogramValidation(t *testing.T) {
	sig := audio.Signal{Samples: make([]float64, 100), SampleRate: testRate}
	tests := []struct {
		name       string
		sig        audio.Signal
		windowSize int
		hopSize    int
		wantErr    error
	}{
		{"Not power of two", sig, 1000, 256, ErrWindowSize},
		{"Window of one", sig, 1, 1, ErrWindowSize},
		{"Zero hop", sig, 256, 0, ErrHopSize},
		{"Zero rate", audio.Signal{Samples: []float64{1}}, 256, 64, audio.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSpectrogram(tt.sig, tt.windowSize, tt.hopSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpectrogramWindowOption(t *testing.T) {
	sig := audio.Signal{Samples: utils.GenerateComplexWave(4096, testRate), SampleRate: testRate}
	hann, err := ComputeSpectrogramWith(sig, 512, 256, SpectrogramOptions{Window: Hann})
	if err != nil {
		t.Fatalf("Hann: %v", err)
	}
	hamming, err := ComputeSpectrogramWith(sig, 512, 256, SpectrogramOptions{Window: Hamming})
	if err != nil {
		t.Fatalf("Hamming: %v", err)
	}
	if utils.MaxAbsDiff(hann.Frame(4), hamming.Frame(4)) == 0 {
		t.Error("Hann and Hamming spectrograms are identical")
	}
}

func TestPeriodicHann(t *testing.T) {
	want := []float64{0, 0.5, 1, 0.5}
	got := periodicWindow(4, Hann)
	if d := utils.MaxAbsDiff(got, want); d > 1e-12 || len(got) != len(want) {
		t.Errorf("periodicWindow(4, Hann) = %v, want %v", got, want)
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"Hann", Hann, false},
		{"hanning", Hann, false},
		{" HAMMING ", Hamming, false},
		{"blackmanNuttall", BlackmanNuttall, false},
		{"Lanczos", Lanczos, false},
		{"rectangular", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindowFunc(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if got := Nuttall.String(); got != "Nuttall" {
		t.Errorf("Nuttall.String() = %q", got)
	}
}

func TestBandEnergies(t *testing.T) {
	sig := audio.Signal{Samples: utils.GenerateSineWave(testRate, testRate, 1000, 0.5), SampleRate: testRate}
	bands := BandEnergies(ComputeFFT(sig), eqBands)

	if len(bands) != len(eqBands) {
		t.Fatalf("len = %d, want %d", len(bands), len(eqBands))
	}
	loudest := 0
	for i, b := range bands {
		if b.Bins == 0 {
			t.Errorf("band %d (%.0f Hz) has no bins", i, b.CenterHz)
		}
		if i > 0 && b.LowHz != bands[i-1].HighHz {
			t.Errorf("band %d low edge %.2f != previous high edge %.2f", i, b.LowHz, bands[i-1].HighHz)
		}
		if b.MagnitudeDB > bands[loudest].MagnitudeDB {
			loudest = i
		}
	}
	if loudest != 4 {
		t.Errorf("loudest band = %d (%.0f Hz), want 4 (1000 Hz)", loudest, bands[loudest].CenterHz)
	}
	if got := bands[len(bands)-1].HighHz; got != testRate/2 {
		t.Errorf("top edge = %v, want Nyquist", got)
	}
	if got, want := bands[4].LowHz, math.Sqrt(500*1000); math.Abs(got-want) > 1e-9 {
		t.Errorf("1 kHz low edge = %v, want %v", got, want)
	}
}

func TestBandEnergiesEmpty(t *testing.T) {
	if got := BandEnergies(Spectrum{}, nil); got != nil {
		t.Errorf("BandEnergies(nil bands) = %v, want nil", got)
	}
	got := BandEnergies(Spectrum{}, eqBands)
	for _, b := range got {
		if b.Bins != 0 || b.MagnitudeDB > -200 {
			t.Errorf("band %.0f Hz = %+v, want empty epsilon floor", b.CenterHz, b)
		}
	}
}

func TestDecimate(t *testing.T) {
	seq := func(n int) []int {
		xs := make([]int, n)
		for i := range xs {
			xs[i] = i
		}
		return xs
	}

	tests := []struct {
		n, maxPoints int
		wantLen      int
		wantStep     int
	}{
		{100, 500, 100, 1},
		{999, 500, 999, 1},
		{1000, 500, 500, 2},
		{1001, 500, 501, 2},
		{22051, 500, 502, 44},
		{10, 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.maxPoints), func(t *testing.T) {
			got := Decimate(seq(tt.n), tt.maxPoints)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if len(got) > 1 && got[1] != tt.wantStep {
				t.Errorf("step = %d, want %d", got[1], tt.wantStep)
			}
		})
	}
}

func BenchmarkComputeSpectrogram(b *testing.B) {
	sig := audio.Signal{Samples: utils.GenerateComplexWave(testRate, testRate), SampleRate: testRate}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := ComputeSpectrogram(sig, 2048, 512); err != nil {
			b.Fatal(err)
		}
	}
}
