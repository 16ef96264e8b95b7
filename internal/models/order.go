package models

import "time"

// OrderSummary is the nested summary block some historical order
// payloads carry. Only the carbon figure is read from it.
type OrderSummary struct {
	CarbonFootprint *float64 `json:"carbonFootprint,omitempty"`
}

// OrderInfo is the legacy nested order shape. Older documents wrap the
// whole order under an "orderInfo" key; newer ones store the same fields
// flat on the record.
type OrderInfo struct {
	Date             string        `json:"date,omitempty"`
	OrderDate        string        `json:"orderDate,omitempty"`
	Items            []LineItem    `json:"items,omitempty"`
	CarbonFootprint  *float64      `json:"carbonFootprint,omitempty"`
	TotalCarbonSaved *float64      `json:"totalCarbonSaved,omitempty"`
	Summary          *OrderSummary `json:"summary,omitempty"`
	EcoScore         float64       `json:"ecoScore,omitempty"`
	IsEcoFriendly    bool          `json:"isEcoFriendly,omitempty"`
}

// OrderRecord is a stored order in whichever shape it was written with.
// Records are append-only: once persisted they are never mutated. All
// reads go through eco.Normalize; nothing else may interpret these
// fields directly.
type OrderRecord struct {
	ID               string        `json:"id,omitempty"`
	Date             string        `json:"date,omitempty"`
	OrderDate        string        `json:"orderDate,omitempty"`
	Items            []LineItem    `json:"items,omitempty"`
	CarbonFootprint  *float64      `json:"carbonFootprint,omitempty"`
	TotalCarbonSaved *float64      `json:"totalCarbonSaved,omitempty"`
	Summary          *OrderSummary `json:"summary,omitempty"`
	EcoScore         float64       `json:"ecoScore,omitempty"`
	IsEcoFriendly    bool          `json:"isEcoFriendly,omitempty"`
	MoneySaved       *float64      `json:"moneySaved,omitempty"`
	OrderInfo        *OrderInfo    `json:"orderInfo,omitempty"`
}

// LineItem is a single purchased product inside an order.
type LineItem struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	CarbonFootprint float64 `json:"carbonFootprint"`
	EcoScore        float64 `json:"ecoScore"`
	IsEcoFriendly   bool    `json:"isEcoFriendly"`
}

// NormalizedOrder is the canonical, schema-independent view of a stored
// order. Every aggregation in the engine consumes this shape and only
// this shape.
type NormalizedOrder struct {
	Date            time.Time  `json:"date"`
	Items           []LineItem `json:"items"`
	CarbonFootprint float64    `json:"carbonFootprint"`
	IsEcoFriendly   bool       `json:"isEcoFriendly"`
}
