package eco

import "github.com/greenbasket/greenbasket-web/internal/models"

// The classifier is the single source of truth for "eco". An order or
// item qualifies iff its own flag is set, its eco score is positive, or
// (for orders) any contained line item qualifies. No other check exists
// anywhere in the engine.

// ItemIsEco reports whether a single line item counts as eco-friendly.
func ItemIsEco(it models.LineItem) bool {
	return it.IsEcoFriendly || it.EcoScore > 0
}

// recordIsEco classifies a stored order in either schema shape.
func recordIsEco(o models.OrderRecord) bool {
	if o.IsEcoFriendly || o.EcoScore > 0 {
		return true
	}
	if info := o.OrderInfo; info != nil && (info.IsEcoFriendly || info.EcoScore > 0) {
		return true
	}
	for _, it := range resolveItems(o) {
		if ItemIsEco(it) {
			return true
		}
	}
	return false
}
