package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/greenbasket/greenbasket-web/config"
	"github.com/greenbasket/greenbasket-web/internal/api"
	"github.com/greenbasket/greenbasket-web/internal/auth"
	"github.com/greenbasket/greenbasket-web/internal/database"
	"github.com/greenbasket/greenbasket-web/internal/services"
	"github.com/greenbasket/greenbasket-web/internal/websocket"
)

func main() {
	// Load config from files and environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	userService := services.NewUserService(db)
	catalogService := services.NewCatalogService(db)
	cartService := services.NewCartService(db, catalogService)
	challengeService := services.NewChallengeService(db)
	orderService := services.NewOrderService(catalogService, cartService, challengeService)

	// Seed catalog and challenges
	if err := catalogService.SeedDefaultProducts(); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	if err := challengeService.SeedDefaultChallenges(); err != nil {
		log.Fatalf("Failed to seed challenges: %v", err)
	}

	// Initialize auth with user service
	auth.Init(userService)

	r := mux.NewRouter()

	// Public routes (no authentication required)
	publicRouter := r.PathPrefix("/").Subrouter()
	publicRouter.HandleFunc("/register", auth.RegisterHandler).Methods("POST")
	publicRouter.HandleFunc("/login", auth.LoginHandler).Methods("POST")
	publicRouter.HandleFunc("/logout", auth.LogoutHandler).Methods("POST")

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth.AuthMiddleware)

	// API routes
	apiRouter := authRouter.PathPrefix("/api/v1").Subrouter()
	handler := api.NewHandler(cfg, userService, catalogService, cartService, orderService, challengeService)
	api.RegisterRoutes(apiRouter, handler)

	// WebSocket routes; badge awards are pushed to connected clients
	hub := websocket.RegisterRoutes(authRouter)
	challengeService.SetNotifier(hub.NotifyBadge)

	// CORS setup for development
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	log.Printf("🧺 GreenBasket server starting on port %s", port)
	log.Printf("🗄️ Database: %s", cfg.Database.Path)

	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
