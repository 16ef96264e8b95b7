package services

import (
	"fmt"
	"time"

	"github.com/greenbasket/greenbasket-web/internal/database"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

type CartService struct {
	db      *database.DB
	catalog *CatalogService
}

func NewCartService(db *database.DB, catalog *CatalogService) *CartService {
	return &CartService{db: db, catalog: catalog}
}

// AddItem puts a product in the cart, adding to the quantity if the line
// already exists.
func (s *CartService) AddItem(userID int, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if _, err := s.catalog.GetProduct(productID); err != nil {
		return err
	}

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE SET quantity = quantity + ?
	`
	_, err := s.db.Exec(query, userID, productID, quantity, time.Now(), quantity)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets a cart line's quantity; zero removes the line.
func (s *CartService) UpdateQuantity(userID int, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(userID, productID)
	}
	res, err := s.db.Exec(`UPDATE cart_items SET quantity = ? WHERE user_id = ? AND product_id = ?`,
		quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(userID int, productID string) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// GetCart returns the cart joined with product details.
func (s *CartService) GetCart(userID int) ([]models.CartItemView, error) {
	query := `
		SELECT p.id AS product_id, p.name, p.price, p.carbon_footprint, p.eco_score,
			   p.is_eco_friendly, p.money_saved, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.added_at
	`
	var items []models.CartItemView
	if err := s.db.Select(&items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return items, nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID int) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
