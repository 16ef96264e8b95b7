package models

import "time"

// Product is a catalog entry. CarbonFootprint is the estimated CO2 saved
// (kg) per unit versus the conventional alternative; MoneySaved is the
// estimated lifetime saving per unit for the same comparison.
type Product struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	Category        string    `json:"category" db:"category"`
	Price           float64   `json:"price" db:"price"`
	CarbonFootprint float64   `json:"carbon_footprint" db:"carbon_footprint"`
	EcoScore        float64   `json:"eco_score" db:"eco_score"`
	IsEcoFriendly   bool      `json:"is_eco_friendly" db:"is_eco_friendly"`
	MoneySaved      float64   `json:"money_saved" db:"money_saved"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CartItem is one product line in a user's cart.
type CartItem struct {
	UserID    int       `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// CartItemView joins a cart line with its product for display.
type CartItemView struct {
	ProductID       string  `json:"product_id" db:"product_id"`
	Name            string  `json:"name" db:"name"`
	Price           float64 `json:"price" db:"price"`
	CarbonFootprint float64 `json:"carbon_footprint" db:"carbon_footprint"`
	EcoScore        float64 `json:"eco_score" db:"eco_score"`
	IsEcoFriendly   bool    `json:"is_eco_friendly" db:"is_eco_friendly"`
	MoneySaved      float64 `json:"money_saved" db:"money_saved"`
	Quantity        int     `json:"quantity" db:"quantity"`
}
