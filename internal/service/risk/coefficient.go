package risk

import (
	"math"

	"RiskPulse/internal/domain/models"
)

const (
	coefMin  = 1.0
	coefMax  = 1.6
	coefSpan = coefMax - coefMin
)

// RecomputeCoefficients derives the rarity multiplier for every populated band
// from the distribution's day counts and returns the updated value. The most
// common band gets 1.0, the rarest 1.6, linear in between against the observed
// min/max; bands with zero days keep the neutral 1.0. Pure: the input is not
// mutated.
func RecomputeCoefficients(d models.BandTimeDistribution) models.BandTimeDistribution {
	minDays, maxDays := 0, 0
	seen := false
	for _, n := range d.Days {
		if n == 0 {
			continue
		}
		if !seen {
			minDays, maxDays = n, n
			seen = true
			continue
		}
		if n < minDays {
			minDays = n
		}
		if n > maxDays {
			maxDays = n
		}
	}

	for i, n := range d.Days {
		if n == 0 || minDays == maxDays {
			d.Coefficients[i] = coefMin
			continue
		}
		c := coefMax - float64(n-minDays)*coefSpan/float64(maxDays-minDays)
		c = math.Round(c*1000) / 1000
		// float rounding must not push past the bounds
		if c < coefMin {
			c = coefMin
		}
		if c > coefMax {
			c = coefMax
		}
		d.Coefficients[i] = c
	}
	return d
}
