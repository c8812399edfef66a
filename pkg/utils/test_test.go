// SPDX-License-Identifier: MIT
package utils

import (
	"errors"
	"math"
	"os"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

var testMagnitudes []float64

func TestMain(m *testing.M) {
	testMagnitudes = make([]float64, testSize)

	// A "hill" with its peak at testSize/4.
	for i := range testMagnitudes {
		testMagnitudes[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	os.Exit(m.Run())
}

func TestMockTransport(t *testing.T) {
	mt := &MockTransport{}

	if err := mt.Send("first"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := mt.Send(map[string]any{"type": "fft"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(mt.Messages) != 2 {
		t.Fatalf("stored %d messages, want 2", len(mt.Messages))
	}

	mt.SendErr = errors.New("boom")
	if err := mt.Send("third"); err == nil {
		t.Error("Send() expected injected error")
	}
	if len(mt.Messages) != 2 {
		t.Errorf("failed send should not be stored, have %d messages", len(mt.Messages))
	}

	_ = mt.Close()
	if !mt.Closed {
		t.Error("Close() did not mark transport closed")
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
		amplitude  float64
	}{
		{"A4 Note", 4096, 44100, 440.0, 1.0},
		{"Middle C", 4096, 44100, 261.63, 0.5},
		{"Low Sample Rate", 4096, 8000, 440.0, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency, tt.amplitude)

			if len(result) != tt.size {
				t.Fatalf("GenerateSineWave() size = %d, want %d", len(result), tt.size)
			}

			var peak float64
			for _, v := range result {
				peak = math.Max(peak, math.Abs(v))
			}
			if peak > tt.amplitude+1e-12 || peak < 0.95*tt.amplitude {
				t.Errorf("peak = %.4f, want close to %.4f", peak, tt.amplitude)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			crossCount := 0
			for i := 1; i < tt.size; i++ {
				if (result[i-1] < 0 && result[i] >= 0) || (result[i-1] >= 0 && result[i] < 0) {
					crossCount++
				}
			}
			expected := float64(tt.size) / (samplesPerCycle / 2)
			if math.Abs(float64(crossCount)-expected) > 0.2*expected {
				t.Errorf("zero crossings = %d, expected about %.1f", crossCount, expected)
			}
		})
	}
}

func TestGenerateComplexWave(t *testing.T) {
	result := GenerateComplexWave(testSize, testSampleRate)
	if len(result) != testSize {
		t.Fatalf("size = %d, want %d", len(result), testSize)
	}
	for i, v := range result {
		if math.Abs(v) > 0.9 {
			t.Fatalf("sample %d = %f exceeds 0.9", i, v)
		}
	}
}

func TestGenerateNoiseDeterministic(t *testing.T) {
	a := GenerateNoise(512, 0.5, 42)
	b := GenerateNoise(512, 0.5, 42)
	if MaxAbsDiff(a, b) != 0 {
		t.Error("same seed produced different noise")
	}
	for i, v := range a {
		if math.Abs(v) > 0.5 {
			t.Fatalf("sample %d = %f outside amplitude", i, v)
		}
	}
}

func TestGenerateImpulse(t *testing.T) {
	imp := GenerateImpulse(8)
	if imp[0] != 1 {
		t.Errorf("impulse[0] = %f, want 1", imp[0])
	}
	for i := 1; i < len(imp); i++ {
		if imp[i] != 0 {
			t.Errorf("impulse[%d] = %f, want 0", i, imp[i])
		}
	}
	if len(GenerateImpulse(0)) != 0 {
		t.Error("GenerateImpulse(0) should be empty")
	}
}

func TestFindPeakBin(t *testing.T) {
	tests := []struct {
		name     string
		mags     []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", testMagnitudes, 0, testSize - 1, testSize / 4},
		{"Partial Range Start", testMagnitudes, testSize / 8, testSize - 1, testSize / 4},
		{"Negative Start", testMagnitudes, -10, testSize - 1, testSize / 4},
		{"Out of Range End", testMagnitudes, 0, testSize * 2, testSize / 4},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPeakBin(tt.mags, tt.start, tt.end); got != tt.expected {
				t.Errorf("FindPeakBin() = %d, want %d", got, tt.expected)
			}
		})
	}
}
