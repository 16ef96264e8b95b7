package eco_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-web/internal/eco"
	"github.com/greenbasket/greenbasket-web/internal/models"
)

func TestWindowFor_Daily(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	w, err := eco.WindowFor(now, models.FrequencyDaily)
	require.NoError(t, err)

	assert.True(t, w.Contains(time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestWindowFor_WeeklySundayBelongsToPrecedingMonday(t *testing.T) {
	// 2024-03-10 is a Sunday; its week started Monday 2024-03-04.
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	w, err := eco.WindowFor(now, models.FrequencyWeekly)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, now, w.End)
}

func TestWindowFor_WeeklyMidweek(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	w, err := eco.WindowFor(now, models.FrequencyWeekly)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(now.Add(time.Minute)))
}

func TestWindowFor_WeeklyOnMonday(t *testing.T) {
	// Monday itself starts its own week.
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	w, err := eco.WindowFor(now, models.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestWindowFor_Monthly(t *testing.T) {
	now := time.Date(2024, 2, 29, 18, 45, 0, 0, time.UTC)
	w, err := eco.WindowFor(now, models.FrequencyMonthly)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, now, w.End)
	assert.False(t, w.Contains(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)))
}

func TestWindowFor_UnknownFrequency(t *testing.T) {
	_, err := eco.WindowFor(time.Now(), models.Frequency("fortnightly"))
	assert.ErrorIs(t, err, eco.ErrUnknownFrequency)
}
