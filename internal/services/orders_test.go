package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-web/internal/services"
)

func orderFixture(t *testing.T) (*services.OrderService, *services.CartService, *services.ChallengeService, int) {
	t.Helper()
	db := testDB(t)
	userID := testUser(t, db)

	catalog := services.NewCatalogService(db)
	require.NoError(t, catalog.SeedDefaultProducts())
	cart := services.NewCartService(db, catalog)
	challenges := services.NewChallengeService(db)
	require.NoError(t, challenges.SeedDefaultChallenges())

	return services.NewOrderService(catalog, cart, challenges), cart, challenges, userID
}

func TestPurchase_BuildsOrderFromCatalog(t *testing.T) {
	orders, _, _, userID := orderFixture(t)

	order, res, err := orders.Purchase(userID, "reusable-bottle", 2)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	require.NotNil(t, order.CarbonFootprint)
	assert.InDelta(t, 4.2, *order.CarbonFootprint, 1e-9) // 2.1 kg per unit
	assert.Equal(t, 90.0, order.EcoScore)
	require.NotNil(t, order.MoneySaved)
	assert.InDelta(t, 120.0, *order.MoneySaved, 1e-9)

	// an eco purchase placed "today" completes the daily challenge
	var daily bool
	for _, b := range res.Awarded {
		if b.ChallengeID == "daily-green-pick" {
			daily = true
		}
	}
	assert.True(t, daily)
}

func TestPurchase_UnknownProduct(t *testing.T) {
	orders, _, _, userID := orderFixture(t)

	_, _, err := orders.Purchase(userID, "hoverboard", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCheckout_ClearsCartAndRecordsHistory(t *testing.T) {
	orders, cart, _, userID := orderFixture(t)

	require.NoError(t, cart.AddItem(userID, "bamboo-toothbrush", 1))
	require.NoError(t, cart.AddItem(userID, "usb-cable", 1))

	order, _, err := orders.Checkout(userID)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)

	left, err := cart.GetCart(userID)
	require.NoError(t, err)
	assert.Empty(t, left)

	history, err := orders.History(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	assert.True(t, history[0].Order.IsEcoFriendly)
}

func TestCheckout_EmptyCart(t *testing.T) {
	orders, _, _, userID := orderFixture(t)

	_, _, err := orders.Checkout(userID)
	assert.Error(t, err)
}
