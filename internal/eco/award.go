package eco

import (
	"time"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// awardBadge promotes a completed challenge: the id leaves the user's
// current set and the reward badge is appended, as one step on the
// in-memory aggregate. A challenge is never removed without a badge
// appearing and vice versa. The caller commits the updated profile.
func (e *Engine) awardBadge(p *models.EcoProfile, ch models.Challenge, now time.Time) models.Badge {
	p.RemoveChallenge(ch.ID)
	badge := models.Badge{
		Name:        ch.BadgeName,
		Description: ch.BadgeDescription,
		IconURL:     ch.BadgeIconURL,
		ChallengeID: ch.ID,
		DateEarned:  now,
	}
	p.Badges = append(p.Badges, badge)
	return badge
}
