package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sqlx.DB
}

// NewDB creates a new database connection
func NewDB(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		databaseURL = "greenbasket.db" // Default SQLite file
	}

	db, err := sqlx.Connect("sqlite3", databaseURL+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &DB{DB: db}

	// Initialize database schema
	if err := dbWrapper.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Database connection established and tables initialized")
	return dbWrapper, nil
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	// Users table
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login_at DATETIME,
		is_active BOOLEAN DEFAULT TRUE
	);`

	// Cumulative eco metrics, one row per user
	statsTable := `
	CREATE TABLE IF NOT EXISTS user_eco_stats (
		user_id INTEGER PRIMARY KEY,
		carbon_saved REAL DEFAULT 0,
		eco_score REAL DEFAULT 0,
		money_saved REAL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	// Orders keep the original payload verbatim. Historical documents
	// exist in two shapes; the payload column preserves whichever shape
	// the order was written with and normalization happens at read time.
	ordersTable := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	challengesTable := `
	CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		frequency TEXT NOT NULL,
		target_value REAL NOT NULL,
		is_active BOOLEAN DEFAULT TRUE,
		badge_name TEXT NOT NULL,
		badge_description TEXT DEFAULT '',
		badge_icon_url TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	// Challenges joined and not yet completed
	membershipTable := `
	CREATE TABLE IF NOT EXISTS user_challenges (
		user_id INTEGER NOT NULL,
		challenge_id TEXT NOT NULL,
		joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, challenge_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	// Append-only; the unique pair backs the exactly-once award guarantee
	badgesTable := `
	CREATE TABLE IF NOT EXISTS user_badges (
		user_id INTEGER NOT NULL,
		challenge_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		icon_url TEXT DEFAULT '',
		date_earned DATETIME NOT NULL,
		PRIMARY KEY (user_id, challenge_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	productsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		category TEXT DEFAULT '',
		price REAL NOT NULL,
		carbon_footprint REAL DEFAULT 0,
		eco_score REAL DEFAULT 0,
		is_eco_friendly BOOLEAN DEFAULT FALSE,
		money_saved REAL DEFAULT 0,
		image_url TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	cartTable := `
	CREATE TABLE IF NOT EXISTS cart_items (
		user_id INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, product_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	);`

	// Create indexes for better performance
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_user_challenges_user_id ON user_challenges(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_user_badges_user_id ON user_badges(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);`,
	}

	tables := []string{
		usersTable, statsTable, ordersTable, challengesTable,
		membershipTable, badgesTable, productsTable, cartTable,
	}

	// Execute table creation
	for _, query := range tables {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Create indexes
	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
