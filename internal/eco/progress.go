package eco

import (
	"fmt"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// Daily and monthly challenges complete on fixed counts regardless of the
// stored target value; only weekly challenges read it. Kept as named
// constants so the override is explicit and testable.
const (
	DailyTarget   = 1
	MonthlyTarget = 10
)

// Progress is one measurement of a user against a challenge. Description
// is for human display only and plays no part in the completion decision.
type Progress struct {
	Progress    float64 `json:"progress"`
	Target      float64 `json:"target"`
	Description string  `json:"description"`
}

// MeasureProgress reduces a full order history to a single progress
// figure for a challenge within a window. Orders that fail normalization
// are skipped, not fatal.
//
//   - daily:   count of eco orders in the window, target fixed at 1
//   - weekly:  sum of carbon over every order in the window (no eco
//     filter), target = the challenge's target in kilograms
//   - monthly: count of eco orders in the window, target fixed at 10
func (e *Engine) MeasureProgress(orders []models.OrderRecord, w Window, ch models.Challenge) Progress {
	history := NormalizeAll(orders)

	switch ch.Frequency {
	case models.FrequencyDaily:
		n := countEco(history, w)
		return Progress{
			Progress:    float64(n),
			Target:      DailyTarget,
			Description: fmt.Sprintf("Eco-friendly orders today: %d/%d", n, DailyTarget),
		}

	case models.FrequencyWeekly:
		var sum float64
		for _, o := range history {
			if w.Contains(o.Date) {
				sum += o.CarbonFootprint
			}
		}
		return Progress{
			Progress:    sum,
			Target:      ch.TargetValue,
			Description: fmt.Sprintf("CO₂ saved this week: %.2f/%g kg", sum, ch.TargetValue),
		}

	case models.FrequencyMonthly:
		n := countEco(history, w)
		return Progress{
			Progress:    float64(n),
			Target:      MonthlyTarget,
			Description: fmt.Sprintf("Eco-friendly orders this month: %d/%d", n, MonthlyTarget),
		}
	}

	e.log.Warn(fmt.Sprintf("challenge %s has unknown frequency %q, progress stays at zero", ch.ID, ch.Frequency))
	return Progress{Description: "unknown challenge frequency"}
}

func countEco(history []models.NormalizedOrder, w Window) int {
	n := 0
	for _, o := range history {
		if w.Contains(o.Date) && o.IsEcoFriendly {
			n++
		}
	}
	return n
}
