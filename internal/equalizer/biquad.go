// SPDX-License-Identifier: MIT
package equalizer

import (
	"math"
	"math/cmplx"
)

// Coefficients is one normalized second-order section (a0 == 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// DesignPeaking returns a constant-Q peaking (bell) section boosting or
// cutting gainDB at centerHz. The centre is clamped to 0.49·sampleRate.
// At gainDB == 0 the section is an identity.
func DesignPeaking(sampleRate, centerHz, gainDB, q float64) Coefficients {
	f0 := math.Min(centerHz, sampleRate*NyquistFraction)

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * f0 / sampleRate
	sinW, cosW := math.Sincos(w0)
	alpha := sinW / (2 * q)

	a0 := 1 + alpha/a
	return Coefficients{
		B0: (1 + alpha*a) / a0,
		B1: -2 * cosW / a0,
		B2: (1 - alpha*a) / a0,
		A1: -2 * cosW / a0,
		A2: (1 - alpha/a) / a0,
	}
}

// Response evaluates the section's transfer function at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Rect(1, -w)
	z2 := cmplx.Rect(1, -2*w)

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// sectionState holds the two delay taps of a transposed direct form II
// section. One is created per section per filtering call.
type sectionState struct {
	z1, z2 float64
}

func (s *sectionState) process(c *Coefficients, x float64) float64 {
	y := c.B0*x + s.z1
	s.z1 = c.B1*x - c.A1*y + s.z2
	s.z2 = c.B2*x - c.A2*y
	return y
}
