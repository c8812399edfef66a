// SPDX-License-Identifier: MIT

/*
Package bitint provides the small power-of-two helpers used when sizing
analysis windows and transport buffers.

Usage:

	// Round an analysis window up to a radix-2 friendly size
	windowSize := bitint.NextPowerOfTwo(1500) // 2048

	// Reject window sizes the spectrogram does not accept
	ok := bitint.IsPowerOfTwo(windowSize)

NextPowerOfTwo works on size-1 so that an exact power of two maps to
itself: for 8, bits.Len(7) is 3 and 1<<3 is 8. Using size directly would
give bits.Len(8) = 4 and double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size.
// Zero and negative sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
// A power of two has a single bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

