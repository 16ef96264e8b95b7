package eco

import (
	"errors"
	"time"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// ErrMalformedOrder marks a stored order whose date cannot be resolved
// from any known field. Such orders are excluded from aggregation; they
// never abort a computation.
var ErrMalformedOrder = errors.New("order date missing or unparseable")

// Date layouts seen across historical order payloads.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize resolves a stored order record, old nested shape or new flat
// shape, into the canonical view every downstream computation consumes.
//
// Field resolution, in priority order:
//   - date:   orderDate, date, orderInfo.date, orderInfo.orderDate
//   - items:  items if non-empty, else orderInfo.items, else none
//   - carbon: carbonFootprint, totalCarbonSaved, summary.carbonFootprint,
//     then the same three under orderInfo, else 0
//   - eco:    the classifier chain (flag, score, any line item)
func Normalize(o models.OrderRecord) (models.NormalizedOrder, error) {
	raw := firstNonEmpty(o.OrderDate, o.Date)
	if raw == "" && o.OrderInfo != nil {
		raw = firstNonEmpty(o.OrderInfo.Date, o.OrderInfo.OrderDate)
	}
	if raw == "" {
		return models.NormalizedOrder{}, ErrMalformedOrder
	}

	date, ok := parseOrderDate(raw)
	if !ok {
		return models.NormalizedOrder{}, ErrMalformedOrder
	}

	return models.NormalizedOrder{
		Date:            date,
		Items:           resolveItems(o),
		CarbonFootprint: carbonFigure(o),
		IsEcoFriendly:   recordIsEco(o),
	}, nil
}

// NormalizeAll maps a full history, silently dropping malformed records.
func NormalizeAll(orders []models.OrderRecord) []models.NormalizedOrder {
	normalized := make([]models.NormalizedOrder, 0, len(orders))
	for _, o := range orders {
		n, err := Normalize(o)
		if err != nil {
			continue
		}
		normalized = append(normalized, n)
	}
	return normalized
}

func parseOrderDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func resolveItems(o models.OrderRecord) []models.LineItem {
	if len(o.Items) > 0 {
		return o.Items
	}
	if o.OrderInfo != nil {
		return o.OrderInfo.Items
	}
	return nil
}

// carbonFigure walks the legacy/current fallback chain for an order's
// carbon value. Independent of date validity so stats updates can use it
// even when the record has no parseable date.
func carbonFigure(o models.OrderRecord) float64 {
	candidates := []*float64{o.CarbonFootprint, o.TotalCarbonSaved}
	if o.Summary != nil {
		candidates = append(candidates, o.Summary.CarbonFootprint)
	}
	if info := o.OrderInfo; info != nil {
		candidates = append(candidates, info.CarbonFootprint, info.TotalCarbonSaved)
		if info.Summary != nil {
			candidates = append(candidates, info.Summary.CarbonFootprint)
		}
	}
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

// ecoScoreFigure resolves the order-level eco score, falling back to the
// nested legacy block.
func ecoScoreFigure(o models.OrderRecord) float64 {
	if o.EcoScore != 0 {
		return o.EcoScore
	}
	if o.OrderInfo != nil {
		return o.OrderInfo.EcoScore
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
