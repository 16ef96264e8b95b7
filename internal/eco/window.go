package eco

import (
	"errors"
	"fmt"
	"time"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// ErrUnknownFrequency marks a challenge whose frequency matches none of
// the known values. It contributes zero progress and is never completable.
var ErrUnknownFrequency = errors.New("unknown challenge frequency")

// Window is the inclusive [Start, End] interval progress is measured
// over.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, boundaries
// included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowFor derives the progress window for a frequency from a single
// sampled now. Windows are never cached or pre-computed; they roll
// forward silently as real time advances, which is a deliberate property
// of the engine.
//
//   - daily:   the calendar day containing now
//   - weekly:  Monday 00:00:00 of now's week through now; a Sunday
//     belongs to the week of the preceding Monday
//   - monthly: first instant of now's month through now
func WindowFor(now time.Time, freq models.Frequency) (Window, error) {
	switch freq {
	case models.FrequencyDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil

	case models.FrequencyWeekly:
		diffToMonday := 1 - int(now.Weekday())
		if now.Weekday() == time.Sunday {
			diffToMonday = -6
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: day.AddDate(0, 0, diffToMonday), End: now}, nil

	case models.FrequencyMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: now}, nil
	}

	return Window{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
}
