// SPDX-License-Identifier: MIT

// Package utils holds synthetic signal generators and test doubles shared by
// the package tests.
package utils

import "math"

// MockTransport records every message it is asked to send.
type MockTransport struct {
	Messages []any
	Closed   bool
	SendErr  error
}

// Send stores the message for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Messages = append(m.Messages, data)
	return nil
}

// Close marks the transport as closed.
func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// GenerateSineWave returns size samples of a sine at frequency Hz with the
// given peak amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// GenerateComplexWave returns a 440 Hz fundamental with its second and third
// harmonics, peaking just under 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateImpulse returns a unit impulse at index 0 followed by zeros.
func GenerateImpulse(size int) []float64 {
	buffer := make([]float64, size)
	if size > 0 {
		buffer[0] = 1
	}
	return buffer
}

// GenerateNoise returns deterministic white noise in [-amplitude, amplitude].
// An LCG keeps the sequence identical across runs and platforms.
func GenerateNoise(size int, amplitude float64, seed uint32) []float64 {
	buffer := make([]float64, size)
	state := seed
	for i := range buffer {
		state = state*1664525 + 1013904223
		buffer[i] = amplitude * ((float64(state)/float64(math.MaxUint32))*2 - 1)
	}
	return buffer
}

// FindPeakBin returns the index of the largest value in
// magnitudes[startBin:endBin+1], clamping the range to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// MaxAbsDiff returns the largest absolute element-wise difference between a
// and b over their common length.
func MaxAbsDiff(a, b []float64) float64 {
	n := min(len(a), len(b))
	var worst float64
	for i := 0; i < n; i++ {
		if d := math.Abs(a[i] - b[i]); d > worst {
			worst = d
		}
	}
	return worst
}
