package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/greenbasket/greenbasket-web/config"
	"github.com/greenbasket/greenbasket-web/internal/auth"
	"github.com/greenbasket/greenbasket-web/internal/models"
	"github.com/greenbasket/greenbasket-web/internal/services"
)

type Handler struct {
	cfg        *config.Config
	users      *services.UserService
	catalog    *services.CatalogService
	cart       *services.CartService
	orders     *services.OrderService
	challenges *services.ChallengeService
	chat       *ChatHandler
}

func NewHandler(cfg *config.Config, users *services.UserService, catalog *services.CatalogService,
	cart *services.CartService, orders *services.OrderService, challenges *services.ChallengeService) *Handler {
	return &Handler{
		cfg:        cfg,
		users:      users,
		catalog:    catalog,
		cart:       cart,
		orders:     orders,
		challenges: challenges,
		chat:       NewChatHandler(cfg, challenges),
	}
}

// RegisterRoutes wires all authenticated API endpoints
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")

	r.HandleFunc("/cart", h.GetCart).Methods("GET")
	r.HandleFunc("/cart/items", h.AddCartItem).Methods("POST")
	r.HandleFunc("/cart/items/{productId}", h.UpdateCartItem).Methods("PUT")
	r.HandleFunc("/cart/items/{productId}", h.RemoveCartItem).Methods("DELETE")

	r.HandleFunc("/orders", h.ListOrders).Methods("GET")
	r.HandleFunc("/orders/checkout", h.Checkout).Methods("POST")
	r.HandleFunc("/orders/purchase", h.Purchase).Methods("POST")

	r.HandleFunc("/challenges", h.ListChallenges).Methods("GET")
	r.HandleFunc("/challenges/progress", h.ChallengeProgress).Methods("GET", "POST")
	r.HandleFunc("/challenges/{id}/join", h.JoinChallenge).Methods("POST")
	r.HandleFunc("/challenges/{id}/leave", h.LeaveChallenge).Methods("POST")

	r.HandleFunc("/badges", h.ListBadges).Methods("GET")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/leaderboard", h.Leaderboard).Methods("GET")

	r.HandleFunc("/me", h.CurrentUser).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/profile/password", h.ChangePassword).Methods("PUT")

	r.HandleFunc("/chat", h.chat.Chat).Methods("POST")
}

// GET /api/v1/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"products": products})
}

// GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, product)
}

// GET /api/v1/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	items, err := h.cart.GetCart(userID)
	if err != nil {
		http.Error(w, "Failed to get cart", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"items": items})
}

// POST /api/v1/cart/items
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.cart.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/cart/items/{productId}
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.cart.UpdateQuantity(userID, mux.Vars(r)["productId"], req.Quantity); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart/items/{productId}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	if err := h.cart.RemoveItem(userID, mux.Vars(r)["productId"]); err != nil {
		http.Error(w, "Failed to remove cart item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	orders, err := h.orders.History(userID)
	if err != nil {
		http.Error(w, "Failed to get order history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"orders": orders})
}

// POST /api/v1/orders/checkout - convert the cart into an order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	order, res, err := h.orders.Checkout(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{
		"order_id":          order.ID,
		"joined_challenges": res.Joined,
		"badges_earned":     res.Awarded,
	})
}

// POST /api/v1/orders/purchase - buy one product directly
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, res, err := h.orders.Purchase(userID, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"order_id":          order.ID,
		"joined_challenges": res.Joined,
		"badges_earned":     res.Awarded,
	})
}

// GET /api/v1/challenges
func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challenges.ActiveChallenges()
	if err != nil {
		http.Error(w, "Failed to list challenges", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"challenges": challenges})
}

// GET|POST /api/v1/challenges/progress - re-check progress on every
// joined challenge; newly detected completions award their badge
func (h *Handler) ChallengeProgress(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	views, err := h.challenges.CheckProgress(userID)
	if err != nil {
		http.Error(w, "Failed to check progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"challenges": views})
}

// POST /api/v1/challenges/{id}/join
func (h *Handler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	if err := h.challenges.Join(userID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/challenges/{id}/leave
func (h *Handler) LeaveChallenge(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	if err := h.challenges.Leave(userID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Failed to leave challenge", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/badges
func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	badges, err := h.challenges.Badges(userID)
	if err != nil {
		http.Error(w, "Failed to get badges", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"badges": badges})
}

// GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	stats, err := h.users.GetEcoStats(userID)
	if err != nil {
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// GET /api/v1/leaderboard
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.challenges.Leaderboard(limit)
	if err != nil {
		http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"leaderboard": entries})
}

// GET /api/v1/me
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}
	user, err := h.users.GetUserByID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, user)
}

// PUT /api/v1/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateProfile(userID, req.DisplayName, req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req models.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireUser(w http.ResponseWriter, r *http.Request) int {
	userID := auth.GetUserIDFromSession(r)
	if userID == 0 {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
	}
	return userID
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
