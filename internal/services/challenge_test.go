package services_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-web/internal/database"
	"github.com/greenbasket/greenbasket-web/internal/eco"
	"github.com/greenbasket/greenbasket-web/internal/models"
	"github.com/greenbasket/greenbasket-web/internal/services"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *database.DB) int {
	t.Helper()
	users := services.NewUserService(db)
	u, err := users.CreateUser(&models.CreateUserRequest{
		Username:    "greta",
		Email:       "greta@example.com",
		Password:    "hunter22",
		DisplayName: "Greta",
	})
	require.NoError(t, err)
	return u.ID
}

// wednesday is mid-week so weekly windows span Monday through "now".
var wednesday = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func fixedService(t *testing.T, db *database.DB, now time.Time) *services.ChallengeService {
	t.Helper()
	svc := services.NewChallengeServiceWithEngine(db, eco.NewWithClock(func() time.Time { return now }))
	require.NoError(t, svc.SeedDefaultChallenges())
	return svc
}

func carbonOrder(date string, carbon float64) models.OrderRecord {
	return models.OrderRecord{
		Date:            date,
		CarbonFootprint: &carbon,
		EcoScore:        80,
		Items:           []models.LineItem{{Name: "Steel Water Bottle", Quantity: 1, IsEcoFriendly: true}},
	}
}

func TestIngestOrder_PersistsStatsAndMemberships(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	res, err := svc.IngestOrder(userID, carbonOrder("2024-03-13T09:00:00Z", 2))
	require.NoError(t, err)

	// auto-joined the daily and monthly challenges; the daily completes
	// immediately from this eco order
	assert.Contains(t, res.Joined, "weekly-carbon-cut")
	assert.Contains(t, res.Joined, "monthly-eco-streak")
	require.Len(t, res.Awarded, 1)
	assert.Equal(t, "daily-green-pick", res.Awarded[0].ChallengeID)

	users := services.NewUserService(db)
	stats, err := users.GetEcoStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stats.CarbonSaved)
	assert.Equal(t, 40.0, stats.EcoScore) // (0 + 80) / 2

	badges, err := svc.Badges(userID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "Green Day", badges[0].Name)
}

func TestIngestOrder_WeeklyBadgeIssuedExactlyOnce(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	// 2 + 2 kg is under the 5 kg weekly target
	_, err := svc.IngestOrder(userID, carbonOrder("2024-03-11T09:00:00Z", 2))
	require.NoError(t, err)
	res, err := svc.IngestOrder(userID, carbonOrder("2024-03-12T09:00:00Z", 2))
	require.NoError(t, err)
	for _, b := range res.Awarded {
		assert.NotEqual(t, "weekly-carbon-cut", b.ChallengeID)
	}

	// 1.5 kg more crosses the target
	res, err = svc.IngestOrder(userID, carbonOrder("2024-03-13T09:00:00Z", 1.5))
	require.NoError(t, err)
	var weekly int
	for _, b := range res.Awarded {
		if b.ChallengeID == "weekly-carbon-cut" {
			weekly++
		}
	}
	assert.Equal(t, 1, weekly)

	// a fourth order this week must not re-award
	res, err = svc.IngestOrder(userID, carbonOrder("2024-03-13T10:00:00Z", 10))
	require.NoError(t, err)
	assert.Empty(t, res.Awarded)

	badges, err := svc.Badges(userID)
	require.NoError(t, err)
	var names []string
	for _, b := range badges {
		names = append(names, b.ChallengeID)
	}
	assert.Equal(t, 1, count(names, "weekly-carbon-cut"))
}

func TestCheckProgress_AwardsAndIsIdempotent(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	require.NoError(t, svc.Join(userID, "daily-green-pick"))

	// order inserted out-of-band, as if written by an older deployment
	legacy := `{"orderInfo":{"date":"2024-03-13T08:00:00Z","items":[{"name":"Tote","quantity":1,"price":9,"carbonFootprint":0.5,"ecoScore":70,"isEcoFriendly":true}],"carbonFootprint":0.5,"ecoScore":70}}`
	_, err := db.Exec(`INSERT INTO orders (id, user_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		"legacy-1", userID, legacy, time.Now())
	require.NoError(t, err)

	views, err := svc.CheckProgress(userID)
	require.NoError(t, err)
	require.NotEmpty(t, views)

	var daily *eco.ChallengeProgress
	for i := range views {
		if views[i].Challenge.ID == "daily-green-pick" {
			daily = &views[i]
		}
	}
	require.NotNil(t, daily)
	assert.True(t, daily.Completed)

	badges, err := svc.Badges(userID)
	require.NoError(t, err)
	require.Len(t, badges, 1)

	// a second recheck with no new orders changes nothing
	_, err = svc.CheckProgress(userID)
	require.NoError(t, err)
	badges, err = svc.Badges(userID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	// the completed challenge is no longer in the pending set
	var pending int
	require.NoError(t, db.Get(&pending,
		`SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND challenge_id = 'daily-green-pick'`, userID))
	assert.Zero(t, pending)
}

func TestJoin_CompletedChallengeIsNoOp(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	require.NoError(t, svc.Join(userID, "daily-green-pick"))
	_, err := svc.IngestOrder(userID, carbonOrder("2024-03-13T09:00:00Z", 1))
	require.NoError(t, err)

	// joining again after completion neither re-joins nor errors
	require.NoError(t, svc.Join(userID, "daily-green-pick"))
	var pending int
	require.NoError(t, db.Get(&pending,
		`SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND challenge_id = 'daily-green-pick'`, userID))
	assert.Zero(t, pending)
}

func TestIngestOrder_DeactivatedChallengeKeepsMembership(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	require.NoError(t, svc.Join(userID, "weekly-carbon-cut"))
	_, err := db.Exec(`UPDATE challenges SET is_active = FALSE WHERE id = 'weekly-carbon-cut'`)
	require.NoError(t, err)

	// over the weekly target while the challenge is paused: the joined
	// challenge is still resolved, just not awarded
	res, err := svc.IngestOrder(userID, carbonOrder("2024-03-13T09:00:00Z", 50))
	require.NoError(t, err)
	for _, b := range res.Awarded {
		assert.NotEqual(t, "weekly-carbon-cut", b.ChallengeID)
	}

	var pending int
	require.NoError(t, db.Get(&pending,
		`SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND challenge_id = 'weekly-carbon-cut'`, userID))
	assert.Equal(t, 1, pending)
}

func TestJoin_UnknownChallenge(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := fixedService(t, db, wednesday)

	err := svc.Join(userID, "no-such-challenge")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestLeaderboard_RanksByEcoScore(t *testing.T) {
	db := testDB(t)
	users := services.NewUserService(db)
	svc := fixedService(t, db, wednesday)

	a, err := users.CreateUser(&models.CreateUserRequest{Username: "a", Email: "a@example.com", Password: "secret1", DisplayName: "A"})
	require.NoError(t, err)
	b, err := users.CreateUser(&models.CreateUserRequest{Username: "b", Email: "b@example.com", Password: "secret2", DisplayName: "B"})
	require.NoError(t, err)

	_, err = svc.IngestOrder(a.ID, carbonOrder("2024-03-13T09:00:00Z", 1)) // score 40
	require.NoError(t, err)
	order := carbonOrder("2024-03-13T09:30:00Z", 1)
	order.EcoScore = 100
	_, err = svc.IngestOrder(b.ID, order) // score 50
	require.NoError(t, err)

	entries, err := svc.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, b.ID, entries[0].UserID)
	assert.Equal(t, a.ID, entries[1].UserID)
}

func count(values []string, needle string) int {
	n := 0
	for _, v := range values {
		if v == needle {
			n++
		}
	}
	return n
}
