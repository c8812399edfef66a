// SPDX-License-Identifier: MIT
package audio

// Waveform decimates sig for plotting by keeping every step-th sample,
// step = max(1, len/maxPoints). times holds the position of each kept
// sample in seconds.
func Waveform(sig Signal, maxPoints int) (data, times []float64) {
	n := len(sig.Samples)
	if n == 0 || sig.SampleRate <= 0 {
		return nil, nil
	}

	step := 1
	if maxPoints > 0 && n/maxPoints > 1 {
		step = n / maxPoints
	}

	count := (n + step - 1) / step
	data = make([]float64, 0, count)
	times = make([]float64, 0, count)
	rate := float64(sig.SampleRate)
	for i := 0; i < n; i += step {
		data = append(data, sig.Samples[i])
		times = append(times, float64(i)/rate)
	}
	return data, times
}
