package eco

import (
	"fmt"
	"time"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// IsComplete reports whether the user's current progress meets the
// challenge's target for the window anchored at now. Pure over the
// supplied state; no side effects. A challenge with an unknown frequency
// is never complete.
func (e *Engine) IsComplete(p *models.EcoProfile, ch models.Challenge, now time.Time) bool {
	w, err := WindowFor(now, ch.Frequency)
	if err != nil {
		e.log.WithError(err).Warn(fmt.Sprintf("skipping completion check for challenge %s", ch.ID))
		return false
	}
	pr := e.MeasureProgress(p.Orders, w, ch)
	return pr.Progress >= pr.Target
}

// shouldAward is the idempotency gate in front of badge issuance. A
// challenge qualifies only while it is active, still in the user's
// current set and not yet represented by a badge; anything else is a
// silent skip, not an error.
func (e *Engine) shouldAward(p *models.EcoProfile, ch models.Challenge, now time.Time) bool {
	if !ch.IsActive {
		return false
	}
	if !p.InChallenge(ch.ID) {
		return false
	}
	if p.HasBadge(ch.ID) {
		return false
	}
	return e.IsComplete(p, ch, now)
}
