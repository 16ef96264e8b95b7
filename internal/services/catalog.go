package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/greenbasket/greenbasket-web/internal/database"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

type CatalogService struct {
	db *database.DB
}

func NewCatalogService(db *database.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListProducts returns the catalog, optionally filtered by category.
func (s *CatalogService) ListProducts(category string) ([]models.Product, error) {
	var products []models.Product
	var err error
	if category != "" {
		err = s.db.Select(&products,
			`SELECT * FROM products WHERE category = ? ORDER BY name`, category)
	} else {
		err = s.db.Select(&products, `SELECT * FROM products ORDER BY category, name`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one catalog entry.
func (s *CatalogService) GetProduct(id string) (*models.Product, error) {
	var p models.Product
	err := s.db.Get(&p, `SELECT * FROM products WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// SeedDefaultProducts loads the starter catalog
func (s *CatalogService) SeedDefaultProducts() error {
	products := []models.Product{
		{ID: "bamboo-toothbrush", Name: "Bamboo Toothbrush", Category: "bathroom", Price: 4.99, CarbonFootprint: 0.3, EcoScore: 85, IsEcoFriendly: true, MoneySaved: 1.5, Description: "Compostable handle, plant-based bristles"},
		{ID: "reusable-bottle", Name: "Steel Water Bottle", Category: "kitchen", Price: 18.50, CarbonFootprint: 2.1, EcoScore: 90, IsEcoFriendly: true, MoneySaved: 60, Description: "Replaces roughly 150 single-use bottles a year"},
		{ID: "beeswax-wraps", Name: "Beeswax Food Wraps", Category: "kitchen", Price: 12.00, CarbonFootprint: 0.8, EcoScore: 80, IsEcoFriendly: true, MoneySaved: 20, Description: "Washable alternative to cling film"},
		{ID: "solar-charger", Name: "Solar Phone Charger", Category: "electronics", Price: 34.99, CarbonFootprint: 4.5, EcoScore: 75, IsEcoFriendly: true, MoneySaved: 12, Description: "10W folding panel with USB output"},
		{ID: "cotton-tote", Name: "Organic Cotton Tote", Category: "bags", Price: 8.99, CarbonFootprint: 0.5, EcoScore: 70, IsEcoFriendly: true, MoneySaved: 5, Description: "Certified organic cotton shopping bag"},
		{ID: "led-bulb-pack", Name: "LED Bulb 4-Pack", Category: "home", Price: 15.99, CarbonFootprint: 3.2, EcoScore: 88, IsEcoFriendly: true, MoneySaved: 45, Description: "Cuts lighting energy use by about 80%"},
		{ID: "usb-cable", Name: "USB-C Cable", Category: "electronics", Price: 9.99, Description: "Standard 1m charging cable"},
		{ID: "notebook", Name: "Spiral Notebook", Category: "office", Price: 3.49, Description: "120 pages, ruled"},
	}

	for _, p := range products {
		query := `
			INSERT OR IGNORE INTO products (id, name, description, category, price, carbon_footprint, eco_score, is_eco_friendly, money_saved, image_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.Exec(query, p.ID, p.Name, p.Description, p.Category, p.Price,
			p.CarbonFootprint, p.EcoScore, p.IsEcoFriendly, p.MoneySaved, p.ImageURL, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	return nil
}
