package usecase

import (
	"math"

	"starkspan-backend/internal/domain/entity"
)

// PriceParams are the process-wide pricing knobs.
type PriceParams struct {
	MachiningRatePerHour float64
}

// PriceBreakdown carries the derived physics and money for one part. Pointer
// fields are nil when the geometry yields no volume; a nil material price is
// reported as such, never substituted with a placeholder.
type PriceBreakdown struct {
	VolumeCm3     *float64
	WeightKg      *float64
	MaterialPrice *float64
	Machining     float64
	TotalPerPiece float64
	TotalAll      float64
}

// Price derives weight and cost from a geometry hypothesis. All intermediate
// math stays unrounded; each output field is rounded exactly once at the end
// so rounding error never compounds.
func Price(shape entity.Shape, mat entity.MaterialSpec, quantity int, machineTimeHours float64, p PriceParams) PriceBreakdown {
	var out PriceBreakdown

	machining := machineTimeHours * p.MachiningRatePerHour
	if !finite(machining) || machining < 0 {
		machining = 0
	}
	out.Machining = Round2(machining)

	totalRaw := machining
	if vol, ok := shape.VolumeCm3(); ok {
		weight := vol * mat.DensityGramsCm3 / 1000
		price := weight * mat.PricePerKg
		if finite(weight) && weight > 0 && finite(price) && price >= 0 {
			out.VolumeCm3 = f64(Round2(vol))
			out.WeightKg = f64(Round2(weight))
			out.MaterialPrice = f64(Round2(price))
			totalRaw += price
		}
	}

	out.TotalPerPiece = Round2(totalRaw)
	out.TotalAll = Round2(out.TotalPerPiece * float64(quantity))
	return out
}

// Round2 rounds to two decimals, half away from zero. Idempotent on values
// that are already rounded.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func f64(v float64) *float64 { return &v }
