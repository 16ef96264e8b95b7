package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/greenbasket/greenbasket-web/internal/database"
	"github.com/greenbasket/greenbasket-web/internal/eco"
	"github.com/greenbasket/greenbasket-web/internal/locker"
	"github.com/greenbasket/greenbasket-web/internal/logger"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

// ChallengeService owns the read-modify-write cycle around the eco
// engine: it loads a user's aggregate, runs the engine inside that
// user's advisory lock and commits the mutated state in one transaction.
type ChallengeService struct {
	db     *database.DB
	engine *eco.Engine
	locks  *locker.UserLocker
	log    *logger.Log
	notify func(userID int, badge models.Badge)
}

func NewChallengeService(db *database.DB) *ChallengeService {
	return &ChallengeService{
		db:     db,
		engine: eco.New(),
		locks:  locker.New(),
		log:    logger.New(),
	}
}

// NewChallengeServiceWithEngine injects a custom engine, used by tests to
// pin the clock.
func NewChallengeServiceWithEngine(db *database.DB, engine *eco.Engine) *ChallengeService {
	return &ChallengeService{
		db:     db,
		engine: engine,
		locks:  locker.New(),
		log:    logger.New(),
	}
}

// SetNotifier registers a sink for badge-earned events (the websocket
// hub in production).
func (s *ChallengeService) SetNotifier(fn func(userID int, badge models.Badge)) {
	s.notify = fn
}

// ListChallenges returns every stored challenge.
func (s *ChallengeService) ListChallenges() ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := s.db.Select(&challenges, `SELECT * FROM challenges ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// ActiveChallenges returns the challenges users can currently join.
func (s *ChallengeService) ActiveChallenges() ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := s.db.Select(&challenges, `SELECT * FROM challenges WHERE is_active = TRUE ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}
	return challenges, nil
}

// Join opts a user into a challenge. Joining one already completed or
// already joined is a no-op.
func (s *ChallengeService) Join(userID int, challengeID string) error {
	var ch models.Challenge
	err := s.db.Get(&ch, `SELECT * FROM challenges WHERE id = ?`, challengeID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to get challenge: %w", err)
	}
	if !ch.IsActive {
		return fmt.Errorf("challenge %s is not active", challengeID)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var badged int
	if err := s.db.Get(&badged, `SELECT COUNT(*) FROM user_badges WHERE user_id = ? AND challenge_id = ?`, userID, challengeID); err != nil {
		return err
	}
	if badged > 0 {
		return nil
	}

	_, err = s.db.Exec(`INSERT OR IGNORE INTO user_challenges (user_id, challenge_id, joined_at) VALUES (?, ?, ?)`,
		userID, challengeID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to join challenge: %w", err)
	}
	return nil
}

// Leave removes a pending membership without awarding anything.
func (s *ChallengeService) Leave(userID int, challengeID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	_, err := s.db.Exec(`DELETE FROM user_challenges WHERE user_id = ? AND challenge_id = ?`, userID, challengeID)
	if err != nil {
		return fmt.Errorf("failed to leave challenge: %w", err)
	}
	return nil
}

// IngestOrder runs the full ingestion sequence for a freshly placed
// order: stats update, auto-join, completion evaluation, badge awards,
// all committed atomically. The whole sequence holds the user's lock.
func (s *ChallengeService) IngestOrder(userID int, order models.OrderRecord) (eco.IngestResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.loadProfile(userID)
	if err != nil {
		return eco.IngestResult{}, err
	}
	challenges, err := s.ListChallenges()
	if err != nil {
		return eco.IngestResult{}, err
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	res := s.engine.IngestOrder(profile, order, challenges)

	if err := s.commitIngest(userID, order, profile, res); err != nil {
		return eco.IngestResult{}, err
	}

	s.notifyBadges(userID, res.Awarded)
	return res, nil
}

// CheckProgress re-evaluates every joined challenge from stored order
// history without ingesting anything new. Completions detected here are
// committed before the progress views are returned.
func (s *ChallengeService) CheckProgress(userID int) ([]eco.ChallengeProgress, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.loadProfile(userID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.ListChallenges()
	if err != nil {
		return nil, err
	}

	views, awarded := s.engine.CheckProgress(profile, challenges)
	if len(awarded) > 0 {
		if err := s.commitAwards(userID, awarded); err != nil {
			return nil, err
		}
		s.notifyBadges(userID, awarded)
	}
	return views, nil
}

// Badges returns the user's earned badges in award order.
func (s *ChallengeService) Badges(userID int) ([]models.Badge, error) {
	var badges []models.Badge
	query := `SELECT name, description, icon_url, challenge_id, date_earned
			  FROM user_badges WHERE user_id = ? ORDER BY date_earned`
	if err := s.db.Select(&badges, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}
	return badges, nil
}

// LeaderboardEntry is one row of the eco-score ranking, a pure read-side
// projection.
type LeaderboardEntry struct {
	UserID      int     `json:"user_id" db:"user_id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	EcoScore    float64 `json:"eco_score" db:"eco_score"`
	CarbonSaved float64 `json:"carbon_saved" db:"carbon_saved"`
	BadgeCount  int     `json:"badge_count" db:"badge_count"`
}

// Leaderboard ranks users by eco score.
func (s *ChallengeService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT u.id AS user_id, u.display_name, es.eco_score, es.carbon_saved,
			   (SELECT COUNT(*) FROM user_badges b WHERE b.user_id = u.id) AS badge_count
		FROM users u
		JOIN user_eco_stats es ON es.user_id = u.id
		WHERE u.is_active = TRUE
		ORDER BY es.eco_score DESC, es.carbon_saved DESC
		LIMIT ?
	`
	var entries []LeaderboardEntry
	if err := s.db.Select(&entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// loadProfile assembles the full per-user aggregate the engine operates
// on. Orders with unreadable payloads are skipped with a warning.
func (s *ChallengeService) loadProfile(userID int) (*models.EcoProfile, error) {
	profile := &models.EcoProfile{UserID: userID}

	var stats models.EcoStats
	err := s.db.Get(&stats, `SELECT user_id, carbon_saved, eco_score, money_saved FROM user_eco_stats WHERE user_id = ?`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load eco stats: %w", err)
	}
	profile.CarbonSaved = stats.CarbonSaved
	profile.EcoScore = stats.EcoScore
	profile.MoneySaved = stats.MoneySaved

	var payloads []string
	if err := s.db.Select(&payloads, `SELECT payload FROM orders WHERE user_id = ? ORDER BY created_at`, userID); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	for _, raw := range payloads {
		var o models.OrderRecord
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			s.log.WithError(err).Warn(fmt.Sprintf("skipping unreadable order payload for user %d", userID))
			continue
		}
		profile.Orders = append(profile.Orders, o)
	}

	if err := s.db.Select(&profile.CurrentChallenges,
		`SELECT challenge_id FROM user_challenges WHERE user_id = ? ORDER BY joined_at`, userID); err != nil {
		return nil, fmt.Errorf("failed to load challenge memberships: %w", err)
	}

	query := `SELECT name, description, icon_url, challenge_id, date_earned
			  FROM user_badges WHERE user_id = ? ORDER BY date_earned`
	if err := s.db.Select(&profile.Badges, query, userID); err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	return profile, nil
}

// commitIngest persists everything one ingestion produced: the order
// row, the updated stats, new memberships and any awards, in a single
// transaction.
func (s *ChallengeService) commitIngest(userID int, order models.OrderRecord, profile *models.EcoProfile, res eco.IngestResult) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO orders (id, user_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		order.ID, userID, string(payload), time.Now()); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO user_eco_stats (user_id, carbon_saved, eco_score, money_saved)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET carbon_saved = ?, eco_score = ?, money_saved = ?`,
		userID, profile.CarbonSaved, profile.EcoScore, profile.MoneySaved,
		profile.CarbonSaved, profile.EcoScore, profile.MoneySaved); err != nil {
		return fmt.Errorf("failed to update eco stats: %w", err)
	}

	for _, id := range res.Joined {
		// a joined-then-awarded challenge in the same pass has already
		// left the current set again; skip the membership row
		if !profile.InChallenge(id) {
			continue
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO user_challenges (user_id, challenge_id, joined_at) VALUES (?, ?, ?)`,
			userID, id, time.Now()); err != nil {
			return fmt.Errorf("failed to join challenge %s: %w", id, err)
		}
	}

	if err := applyAwards(tx, userID, res.Awarded); err != nil {
		return err
	}

	return tx.Commit()
}

// commitAwards persists badges detected by a read-mostly progress query.
func (s *ChallengeService) commitAwards(userID int, awarded []models.Badge) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyAwards(tx, userID, awarded); err != nil {
		return err
	}
	return tx.Commit()
}

// applyAwards removes the membership and writes the badge as one unit;
// the transaction guarantees neither happens without the other. The
// primary key on (user_id, challenge_id) backs exactly-once issuance
// even if two processes race past the in-memory gate.
func applyAwards(tx *sqlx.Tx, userID int, awarded []models.Badge) error {
	for _, b := range awarded {
		if _, err := tx.Exec(`DELETE FROM user_challenges WHERE user_id = ? AND challenge_id = ?`,
			userID, b.ChallengeID); err != nil {
			return fmt.Errorf("failed to remove membership %s: %w", b.ChallengeID, err)
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO user_badges (user_id, challenge_id, name, description, icon_url, date_earned)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, b.ChallengeID, b.Name, b.Description, b.IconURL, b.DateEarned); err != nil {
			return fmt.Errorf("failed to insert badge %s: %w", b.ChallengeID, err)
		}
	}
	return nil
}

func (s *ChallengeService) notifyBadges(userID int, awarded []models.Badge) {
	if s.notify == nil {
		return
	}
	for _, b := range awarded {
		s.notify(userID, b)
	}
}

// SeedDefaultChallenges loads the starter challenge set
func (s *ChallengeService) SeedDefaultChallenges() error {
	challenges := []models.Challenge{
		{
			ID: "daily-green-pick", Name: "Daily Green Pick",
			Description: "Buy one eco-friendly product today",
			Frequency:   models.FrequencyDaily, TargetValue: 1, IsActive: true,
			BadgeName: "Green Day", BadgeDescription: "Made an eco-friendly purchase in a single day", BadgeIconURL: "/static/badges/green-day.svg",
		},
		{
			ID: "weekly-carbon-cut", Name: "Weekly Carbon Cut",
			Description: "Save 5 kg of CO₂ with this week's orders",
			Frequency:   models.FrequencyWeekly, TargetValue: 5, IsActive: true,
			BadgeName: "Carbon Cutter", BadgeDescription: "Saved 5 kg of CO₂ in one week", BadgeIconURL: "/static/badges/carbon-cutter.svg",
		},
		{
			ID: "monthly-eco-streak", Name: "Monthly Eco Streak",
			Description: "Place ten eco-friendly orders this month",
			Frequency:   models.FrequencyMonthly, TargetValue: 10, IsActive: true,
			BadgeName: "Eco Regular", BadgeDescription: "Ten eco-friendly orders in a month", BadgeIconURL: "/static/badges/eco-regular.svg",
		},
	}

	for _, ch := range challenges {
		query := `
			INSERT OR IGNORE INTO challenges (id, name, description, frequency, target_value, is_active, badge_name, badge_description, badge_icon_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := s.db.Exec(query, ch.ID, ch.Name, ch.Description, string(ch.Frequency),
			ch.TargetValue, ch.IsActive, ch.BadgeName, ch.BadgeDescription, ch.BadgeIconURL, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed challenge %s: %w", ch.ID, err)
		}
	}

	return nil
}
