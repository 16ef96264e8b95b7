package eco_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-web/internal/eco"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

// ecoOrder builds a flat-shaped eco order with a carbon figure.
func ecoOrder(date string, carbon float64) models.OrderRecord {
	return models.OrderRecord{Date: date, CarbonFootprint: f64(carbon), EcoScore: 1}
}

func fixedEngine(now time.Time) *eco.Engine {
	return eco.NewWithClock(func() time.Time { return now })
}

func TestMeasureProgress_Daily(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	w, err := eco.WindowFor(now, models.FrequencyDaily)
	require.NoError(t, err)

	orders := []models.OrderRecord{
		ecoOrder("2024-03-10T00:00:01Z", 1),
		ecoOrder("2024-03-09T12:00:00Z", 1),            // previous day
		{Date: "2024-03-10T13:00:00Z"},                 // today but not eco
		{Date: "not-a-date", CarbonFootprint: f64(10)}, // malformed, skipped
	}

	ch := models.Challenge{ID: "daily-eco", Frequency: models.FrequencyDaily, TargetValue: 99, IsActive: true}
	pr := e.MeasureProgress(orders, w, ch)

	assert.Equal(t, 1.0, pr.Progress)
	// target is hard-coded to 1, the stored value is ignored
	assert.Equal(t, 1.0, pr.Target)
	assert.Equal(t, "Eco-friendly orders today: 1/1", pr.Description)
}

func TestMeasureProgress_WeeklySumsCarbonWithoutEcoFilter(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC) // Wednesday
	e := fixedEngine(now)
	w, err := eco.WindowFor(now, models.FrequencyWeekly)
	require.NoError(t, err)

	ch := models.Challenge{ID: "weekly-carbon", Frequency: models.FrequencyWeekly, TargetValue: 5, IsActive: true}

	orders := []models.OrderRecord{
		{Date: "2024-03-11T09:00:00Z", CarbonFootprint: f64(2)}, // non-eco still counts
		ecoOrder("2024-03-12T09:00:00Z", 2),
		ecoOrder("2024-03-08T09:00:00Z", 50), // previous week, excluded
	}

	pr := e.MeasureProgress(orders, w, ch)
	assert.Equal(t, 4.0, pr.Progress)
	assert.Equal(t, 5.0, pr.Target)
	assert.Less(t, pr.Progress, pr.Target)
	assert.Equal(t, "CO₂ saved this week: 4.00/5 kg", pr.Description)

	orders = append(orders, ecoOrder("2024-03-13T10:00:00Z", 1.5))
	pr = e.MeasureProgress(orders, w, ch)
	assert.Equal(t, 5.5, pr.Progress)
	assert.GreaterOrEqual(t, pr.Progress, pr.Target)
}

func TestMeasureProgress_MonthlyFixedTargetOverride(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	w, err := eco.WindowFor(now, models.FrequencyMonthly)
	require.NoError(t, err)

	// targetValue 999 must be ignored: ten eco orders complete the month
	ch := models.Challenge{ID: "monthly-eco", Frequency: models.FrequencyMonthly, TargetValue: 999, IsActive: true}

	var orders []models.OrderRecord
	for day := 1; day <= 10; day++ {
		orders = append(orders, ecoOrder(time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC).Format(time.RFC3339), 1))
	}

	pr := e.MeasureProgress(orders, w, ch)
	assert.Equal(t, 10.0, pr.Progress)
	assert.Equal(t, 10.0, pr.Target)
	assert.GreaterOrEqual(t, pr.Progress, pr.Target)
}

func TestMeasureProgress_LegacyAndFlatContributeIdentically(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(now)
	w, err := eco.WindowFor(now, models.FrequencyWeekly)
	require.NoError(t, err)
	ch := models.Challenge{ID: "weekly-carbon", Frequency: models.FrequencyWeekly, TargetValue: 5, IsActive: true}

	flat := []models.OrderRecord{
		{Date: "2024-03-12T09:00:00Z", Items: []models.LineItem{{CarbonFootprint: 2}}, EcoScore: 1, CarbonFootprint: f64(2)},
	}
	legacy := []models.OrderRecord{
		{OrderInfo: &models.OrderInfo{Date: "2024-03-12T09:00:00Z", Items: []models.LineItem{{CarbonFootprint: 2}}, EcoScore: 1, CarbonFootprint: f64(2)}},
	}

	assert.Equal(t, e.MeasureProgress(flat, w, ch), e.MeasureProgress(legacy, w, ch))
}
