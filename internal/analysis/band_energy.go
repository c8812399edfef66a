// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"eqlab/internal/audio"
)

// BandEnergy summarises a spectrum over one equalizer band.
type BandEnergy struct {
	CenterHz    float64 `json:"center_hz"`
	LowHz       float64 `json:"low_hz"`
	HighHz      float64 `json:"high_hz"`
	MagnitudeDB float64 `json:"magnitude_db"` // Mean linear magnitude of the band's bins, in dB.
	Bins        int     `json:"bins"`
}

// BandEnergies splits spec into one band per centre frequency. Band edges
// sit at the geometric midpoints between neighbouring centres; the outer
// edges mirror the first and last half-band and are limited to [0, Nyquist].
// Bands containing no bins report the epsilon floor.
func BandEnergies(spec Spectrum, centers []float64) []BandEnergy {
	if len(centers) == 0 {
		return nil
	}

	nyquist := 0.0
	if n := len(spec.Frequencies); n > 0 {
		nyquist = spec.Frequencies[n-1]
	}

	bands := make([]BandEnergy, len(centers))
	for i, c := range centers {
		bands[i] = BandEnergy{CenterHz: c}
		switch {
		case i > 0:
			bands[i].LowHz = math.Sqrt(centers[i-1] * c)
		case len(centers) > 1:
			bands[i].LowHz = c / math.Sqrt(centers[1]/c)
		}
		switch {
		case i < len(centers)-1:
			bands[i].HighHz = math.Sqrt(c * centers[i+1])
		case len(centers) > 1:
			bands[i].HighHz = math.Min(c*math.Sqrt(c/centers[i-1]), nyquist)
		default:
			bands[i].HighHz = nyquist
		}
	}

	sums := make([]float64, len(bands))
	for k, f := range spec.Frequencies {
		for i := range bands {
			if f >= bands[i].LowHz && (f < bands[i].HighHz || (i == len(bands)-1 && f == bands[i].HighHz)) {
				sums[i] += math.Pow(10, spec.MagnitudeDB[k]/20)
				bands[i].Bins++
				break
			}
		}
	}

	for i := range bands {
		mean := 0.0
		if bands[i].Bins > 0 {
			mean = sums[i] / float64(bands[i].Bins)
		}
		bands[i].MagnitudeDB = audio.LevelDB(mean)
	}
	return bands
}
