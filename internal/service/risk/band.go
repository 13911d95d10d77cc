package risk

import (
	"fmt"
	"math"

	"RiskPulse/internal/domain/models"
)

// BandOf maps a [0,1] risk to its decile band index. The lower bound of each
// band is inclusive; the 1.0 edge belongs to the last band. Risk is settled to
// 8 decimals first so interpolation noise at an exact band edge cannot drop
// the value into the band below.
func BandOf(risk float64) int {
	b := int(math.Floor(math.Round(risk*1e8) / 1e7))
	if b < 0 {
		return 0
	}
	if b >= models.BandCount {
		return models.BandCount - 1
	}
	return b
}

// BandLabel renders a band index as its risk interval, e.g. "0.3-0.4".
func BandLabel(band int) string {
	return fmt.Sprintf("%.1f-%.1f", float64(band)/10, float64(band+1)/10)
}

// BandMidpoint is the representative risk of a band, used when projecting a
// neighbor band back onto a price.
func BandMidpoint(band int) float64 {
	return (float64(band) + 0.5) / 10
}
