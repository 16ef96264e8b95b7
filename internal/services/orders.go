package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-web/internal/eco"
	"github.com/greenbasket/greenbasket-web/internal/logger"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

// OrderService builds order records from the catalog and hands them to
// the challenge service for ingestion. Direct purchases and cart
// checkouts produce identical payloads; neither path carries its own
// progress or badge logic.
type OrderService struct {
	cart       *CartService
	catalog    *CatalogService
	challenges *ChallengeService
	log        *logger.Log
}

func NewOrderService(catalog *CatalogService, cart *CartService, challenges *ChallengeService) *OrderService {
	return &OrderService{
		cart:       cart,
		catalog:    catalog,
		challenges: challenges,
		log:        logger.New(),
	}
}

// Purchase buys a single product directly, skipping the cart.
func (s *OrderService) Purchase(userID int, productID string, quantity int) (models.OrderRecord, eco.IngestResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		return models.OrderRecord{}, eco.IngestResult{}, err
	}

	lines := []models.CartItemView{{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		CarbonFootprint: p.CarbonFootprint,
		EcoScore:        p.EcoScore,
		IsEcoFriendly:   p.IsEcoFriendly,
		MoneySaved:      p.MoneySaved,
		Quantity:        quantity,
	}}
	return s.ingest(userID, lines)
}

// Checkout converts the whole cart into one order and clears it.
func (s *OrderService) Checkout(userID int) (models.OrderRecord, eco.IngestResult, error) {
	lines, err := s.cart.GetCart(userID)
	if err != nil {
		return models.OrderRecord{}, eco.IngestResult{}, err
	}
	if len(lines) == 0 {
		return models.OrderRecord{}, eco.IngestResult{}, fmt.Errorf("cart is empty")
	}

	order, res, err := s.ingest(userID, lines)
	if err != nil {
		return models.OrderRecord{}, eco.IngestResult{}, err
	}

	if err := s.cart.Clear(userID); err != nil {
		s.log.WithError(err).Warn(fmt.Sprintf("order %s placed but cart not cleared for user %d", order.ID, userID))
	}
	return order, res, nil
}

// ingest assembles the canonical flat-shape order record and runs it
// through the challenge service.
func (s *OrderService) ingest(userID int, lines []models.CartItemView) (models.OrderRecord, eco.IngestResult, error) {
	var (
		items       []models.LineItem
		totalCarbon float64
		totalSaved  float64
		scoreSum    float64
		scored      int
	)
	for _, l := range lines {
		items = append(items, models.LineItem{
			Name:            l.Name,
			Quantity:        l.Quantity,
			Price:           l.Price,
			CarbonFootprint: l.CarbonFootprint * float64(l.Quantity),
			EcoScore:        l.EcoScore,
			IsEcoFriendly:   l.IsEcoFriendly,
		})
		totalCarbon += l.CarbonFootprint * float64(l.Quantity)
		totalSaved += l.MoneySaved * float64(l.Quantity)
		if l.EcoScore > 0 {
			scoreSum += l.EcoScore
			scored++
		}
	}

	var orderScore float64
	if scored > 0 {
		orderScore = scoreSum / float64(scored)
	}

	order := models.OrderRecord{
		ID:              uuid.NewString(),
		Date:            time.Now().Format(time.RFC3339),
		Items:           items,
		CarbonFootprint: &totalCarbon,
		EcoScore:        orderScore,
	}
	if totalSaved > 0 {
		order.MoneySaved = &totalSaved
	}

	res, err := s.challenges.IngestOrder(userID, order)
	if err != nil {
		return models.OrderRecord{}, eco.IngestResult{}, err
	}
	return order, res, nil
}

// OrderView is the normalized order plus its id, for history listings.
type OrderView struct {
	ID    string                 `json:"id"`
	Order models.NormalizedOrder `json:"order"`
}

// History returns the user's order history in canonical form. Orders
// whose date cannot be resolved are left out, matching what aggregation
// sees.
func (s *OrderService) History(userID int) ([]OrderView, error) {
	profile, err := s.challenges.loadProfile(userID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(profile.Orders))
	for _, o := range profile.Orders {
		n, err := eco.Normalize(o)
		if err != nil {
			s.log.WithError(err).Warn(fmt.Sprintf("order %s excluded from history for user %d", o.ID, userID))
			continue
		}
		views = append(views, OrderView{ID: o.ID, Order: n})
	}
	return views, nil
}
