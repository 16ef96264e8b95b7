// Package eco implements the eco-challenge progress and badge awarding
// engine: normalization of heterogeneous order records, time-windowed
// progress aggregation, completion evaluation and exactly-once badge
// issuance. All call sites (purchase, checkout, recheck, chat) share
// these components; none carries its own copy of this logic.
package eco

import (
	"time"

	"github.com/greenbasket/greenbasket-web/internal/logger"
)

// Engine evaluates challenges against a user's in-memory EcoProfile.
// It is CPU-bound aggregation over already-loaded state: it never blocks
// on I/O and leaves committing the mutated profile to the caller.
type Engine struct {
	log *logger.Log
	now func() time.Time
}

func New() *Engine {
	return &Engine{
		log: logger.New(),
		now: time.Now,
	}
}

// NewWithClock builds an engine with a fixed clock source, for tests and
// replay. Each evaluation pass samples the clock exactly once so window
// membership stays internally consistent within that pass.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{
		log: logger.New(),
		now: now,
	}
}
