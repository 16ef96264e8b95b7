package eco_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

func dailyChallenge() models.Challenge {
	return models.Challenge{
		ID:          "daily-eco",
		Frequency:   models.FrequencyDaily,
		TargetValue: 1,
		IsActive:    true,
		BadgeName:   "Green Day",
	}
}

func weeklyChallenge(target float64) models.Challenge {
	return models.Challenge{
		ID:          "weekly-carbon",
		Frequency:   models.FrequencyWeekly,
		TargetValue: target,
		IsActive:    true,
		BadgeName:   "Carbon Cutter",
	}
}

// assertExclusive checks the engine invariant that a challenge id is
// never pending and badged at the same time.
func assertExclusive(t *testing.T, p *models.EcoProfile) {
	t.Helper()
	for _, b := range p.Badges {
		assert.False(t, p.InChallenge(b.ChallengeID),
			"challenge %s is both current and badged", b.ChallengeID)
	}
}

func TestIngestOrder_UpdatesStats(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	p := &models.EcoProfile{UserID: 1, EcoScore: 80}

	money := 3.5
	order := models.OrderRecord{
		Date:            "2024-03-13T10:00:00Z",
		CarbonFootprint: f64(2.5),
		EcoScore:        40,
		MoneySaved:      &money,
	}
	e.IngestOrder(p, order, nil)

	assert.Len(t, p.Orders, 1)
	assert.Equal(t, 2.5, p.CarbonSaved)
	// running average of previous score and the order's, not a true mean
	assert.Equal(t, 60.0, p.EcoScore)
	assert.Equal(t, 3.5, p.MoneySaved)
}

func TestIngestOrder_AutoJoinsActiveChallenges(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	p := &models.EcoProfile{UserID: 1}

	inactive := models.Challenge{ID: "paused", Frequency: models.FrequencyDaily}
	badged := dailyChallenge()
	badged.ID = "already-done"
	p.Badges = []models.Badge{{ChallengeID: "already-done"}}

	res := e.IngestOrder(p, models.OrderRecord{Date: "2024-03-13T10:00:00Z"},
		[]models.Challenge{weeklyChallenge(100), inactive, badged})

	assert.Equal(t, []string{"weekly-carbon"}, res.Joined)
	assert.True(t, p.InChallenge("weekly-carbon"))
	assert.False(t, p.InChallenge("paused"))
	assert.False(t, p.InChallenge("already-done"))
	assertExclusive(t, p)
}

func TestIngestOrder_AwardsBadgeExactlyOnce(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	p := &models.EcoProfile{UserID: 1}
	ch := weeklyChallenge(5)

	// 2 + 2 this week: under target, no badge
	e.IngestOrder(p, ecoOrder("2024-03-11T09:00:00Z", 2), []models.Challenge{ch})
	res := e.IngestOrder(p, ecoOrder("2024-03-12T09:00:00Z", 2), []models.Challenge{ch})
	assert.Empty(t, res.Awarded)
	assert.True(t, p.InChallenge(ch.ID))

	// 1.5 more crosses 5: one badge, membership removed
	res = e.IngestOrder(p, ecoOrder("2024-03-13T09:00:00Z", 1.5), []models.Challenge{ch})
	require.Len(t, res.Awarded, 1)
	assert.Equal(t, "Carbon Cutter", res.Awarded[0].Name)
	assert.Equal(t, ch.ID, res.Awarded[0].ChallengeID)
	assert.Equal(t, now, res.Awarded[0].DateEarned)
	assert.False(t, p.InChallenge(ch.ID))
	assertExclusive(t, p)

	// further orders never re-award; the ingest also does not re-join a
	// completed challenge
	res = e.IngestOrder(p, ecoOrder("2024-03-13T10:00:00Z", 9), []models.Challenge{ch})
	assert.Empty(t, res.Awarded)
	assert.Empty(t, res.Joined)
	assert.Len(t, p.Badges, 1)
	assertExclusive(t, p)
}

func TestIngestOrder_InactiveMembershipIsHeldNotDropped(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	ch := weeklyChallenge(5)
	ch.IsActive = false
	p := &models.EcoProfile{UserID: 1, CurrentChallenges: []string{ch.ID}}

	// way past the target while the challenge is paused: the membership
	// survives and no badge is issued
	res := e.IngestOrder(p, ecoOrder("2024-03-12T09:00:00Z", 50), []models.Challenge{ch})
	assert.Empty(t, res.Awarded)
	assert.Empty(t, res.Joined)
	assert.True(t, p.InChallenge(ch.ID))
	assert.Empty(t, p.Badges)

	// once reactivated, the next ingest awards normally
	ch.IsActive = true
	res = e.IngestOrder(p, ecoOrder("2024-03-13T09:00:00Z", 1), []models.Challenge{ch})
	require.Len(t, res.Awarded, 1)
	assertExclusive(t, p)
}

func TestCheckProgress_IdempotentAward(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	e := fixedEngine(now)
	ch := dailyChallenge()
	p := &models.EcoProfile{
		UserID:            1,
		CurrentChallenges: []string{ch.ID},
		Orders:            []models.OrderRecord{ecoOrder("2024-03-10T00:00:01Z", 1)},
	}

	views, awarded := e.CheckProgress(p, []models.Challenge{ch})
	require.Len(t, views, 1)
	assert.True(t, views[0].Completed)
	require.Len(t, awarded, 1)
	assert.False(t, p.InChallenge(ch.ID))
	assertExclusive(t, p)

	// second invocation with no new orders: exactly one badge remains and
	// nothing new is issued
	_, awarded = e.CheckProgress(p, []models.Challenge{ch})
	assert.Empty(t, awarded)
	assert.Len(t, p.Badges, 1)
}

func TestCheckProgress_DailyWindowRollsOver(t *testing.T) {
	ch := dailyChallenge()
	orders := []models.OrderRecord{ecoOrder("2024-03-10T00:00:01Z", 1)}

	// evaluated within the day: complete
	e := fixedEngine(time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC))
	p := &models.EcoProfile{UserID: 1, CurrentChallenges: []string{ch.ID}, Orders: orders}
	views, awarded := e.CheckProgress(p, []models.Challenge{ch})
	require.Len(t, awarded, 1)
	assert.True(t, views[0].Completed)

	// the next day with no new order: progress reverts to zero for a user
	// who has not yet completed it...
	e = fixedEngine(time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC))
	fresh := &models.EcoProfile{UserID: 2, CurrentChallenges: []string{ch.ID}, Orders: orders}
	views, awarded = e.CheckProgress(fresh, []models.Challenge{ch})
	assert.Empty(t, awarded)
	require.Len(t, views, 1)
	assert.Equal(t, 0.0, views[0].Progress.Progress)
	assert.False(t, views[0].Completed)

	// ...while a completion already granted is not revoked
	_, revoked := e.CheckProgress(p, []models.Challenge{ch})
	assert.Empty(t, revoked)
	assert.Len(t, p.Badges, 1)
}

func TestCheckProgress_UnknownFrequencyNeverCompletes(t *testing.T) {
	e := fixedEngine(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	ch := models.Challenge{ID: "odd", Frequency: "fortnightly", IsActive: true}
	p := &models.EcoProfile{
		UserID:            1,
		CurrentChallenges: []string{"odd"},
		Orders:            []models.OrderRecord{ecoOrder("2024-03-10T08:00:00Z", 50)},
	}

	views, awarded := e.CheckProgress(p, []models.Challenge{ch})
	assert.Empty(t, awarded)
	require.Len(t, views, 1)
	assert.Equal(t, 0.0, views[0].Progress.Progress)
	assert.False(t, views[0].Completed)
	assert.True(t, p.InChallenge("odd"))
}

func TestCheckProgress_MissingChallengeIsIsolated(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	ch := dailyChallenge()
	p := &models.EcoProfile{
		UserID:            1,
		CurrentChallenges: []string{"gone", ch.ID},
		Orders:            []models.OrderRecord{ecoOrder("2024-03-10T08:00:00Z", 1)},
	}

	// the dangling membership is skipped; the remaining challenge still
	// evaluates and awards
	views, awarded := e.CheckProgress(p, []models.Challenge{ch})
	require.Len(t, views, 1)
	assert.Len(t, awarded, 1)
	assertExclusive(t, p)
}

func TestCheckProgress_InactiveChallengeShowsProgressWithoutAward(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	ch := dailyChallenge()
	ch.IsActive = false
	p := &models.EcoProfile{
		UserID:            1,
		CurrentChallenges: []string{ch.ID},
		Orders:            []models.OrderRecord{ecoOrder("2024-03-10T08:00:00Z", 1)},
	}

	views, awarded := e.CheckProgress(p, []models.Challenge{ch})
	require.Len(t, views, 1)
	assert.True(t, views[0].Completed)
	assert.Empty(t, awarded)
	assert.True(t, p.InChallenge(ch.ID))
}
