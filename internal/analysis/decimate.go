// SPDX-License-Identifier: MIT
package analysis

// Decimate keeps every step-th element of xs, step = max(1, len/maxPoints).
// maxPoints <= 0 returns xs unchanged.
func Decimate[T any](xs []T, maxPoints int) []T {
	if maxPoints <= 0 || len(xs) <= maxPoints {
		return xs
	}
	step := max(1, len(xs)/maxPoints)
	out := make([]T, 0, (len(xs)+step-1)/step)
	for i := 0; i < len(xs); i += step {
		out = append(out, xs[i])
	}
	return out
}

// Decimate returns a display copy of s with at most about maxPoints bins.
func (s Spectrum) Decimate(maxPoints int) Spectrum {
	return Spectrum{
		Frequencies: Decimate(s.Frequencies, maxPoints),
		MagnitudeDB: Decimate(s.MagnitudeDB, maxPoints),
	}
}
