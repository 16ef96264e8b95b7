package eco

import (
	"fmt"

	"github.com/greenbasket/greenbasket-web/internal/models"
)

// IngestResult describes the side effects of applying one new order.
type IngestResult struct {
	Joined  []string       `json:"joined"`  // challenge ids auto-joined
	Awarded []models.Badge `json:"awarded"` // badges issued by this ingestion
}

// ChallengeProgress is one challenge's state as seen by a progress query.
type ChallengeProgress struct {
	Challenge models.Challenge `json:"challenge"`
	Progress  Progress         `json:"progress"`
	Completed bool             `json:"completed"`
}

// IngestOrder applies a freshly placed order to the user's aggregate:
// append it to the history, fold its figures into the cumulative stats,
// auto-join every active challenge not already joined or completed, then
// evaluate every current challenge and award completions. A failure on
// one challenge never aborts the rest of the batch.
//
// The eco score update is a running average of the previous value and the
// new order's score, deliberately biased toward recent orders.
func (e *Engine) IngestOrder(p *models.EcoProfile, order models.OrderRecord, challenges []models.Challenge) IngestResult {
	now := e.now()

	p.Orders = append(p.Orders, order)
	p.CarbonSaved += carbonFigure(order)
	p.EcoScore = (p.EcoScore + ecoScoreFigure(order)) / 2
	if order.MoneySaved != nil {
		p.MoneySaved += *order.MoneySaved
	}

	var res IngestResult
	byID := make(map[string]models.Challenge, len(challenges))
	for _, ch := range challenges {
		byID[ch.ID] = ch
		if !ch.IsActive {
			continue
		}
		if p.InChallenge(ch.ID) || p.HasBadge(ch.ID) {
			continue
		}
		p.CurrentChallenges = append(p.CurrentChallenges, ch.ID)
		res.Joined = append(res.Joined, ch.ID)
	}

	for _, id := range snapshot(p.CurrentChallenges) {
		ch, ok := byID[id]
		if !ok {
			// Dangling membership: skipped, never fails the batch.
			e.log.Warn(fmt.Sprintf("challenge %s not found, skipping evaluation", id))
			continue
		}
		if e.shouldAward(p, ch, now) {
			res.Awarded = append(res.Awarded, e.awardBadge(p, ch, now))
		}
	}

	return res
}

// CheckProgress measures every joined challenge without ingesting a new
// order. Completions newly detected here still award their badge; the
// caller must commit the profile whenever badges come back.
func (e *Engine) CheckProgress(p *models.EcoProfile, challenges []models.Challenge) ([]ChallengeProgress, []models.Badge) {
	now := e.now()

	byID := make(map[string]models.Challenge, len(challenges))
	for _, ch := range challenges {
		byID[ch.ID] = ch
	}

	var views []ChallengeProgress
	var awarded []models.Badge
	for _, id := range snapshot(p.CurrentChallenges) {
		ch, ok := byID[id]
		if !ok {
			e.log.Warn(fmt.Sprintf("challenge %s not found, skipping progress check", id))
			continue
		}

		w, err := WindowFor(now, ch.Frequency)
		if err != nil {
			e.log.WithError(err).Warn(fmt.Sprintf("challenge %s contributes no progress", ch.ID))
			views = append(views, ChallengeProgress{
				Challenge: ch,
				Progress:  Progress{Description: "unknown challenge frequency"},
			})
			continue
		}

		pr := e.MeasureProgress(p.Orders, w, ch)
		done := pr.Progress >= pr.Target
		if done && e.shouldAward(p, ch, now) {
			awarded = append(awarded, e.awardBadge(p, ch, now))
		}
		views = append(views, ChallengeProgress{Challenge: ch, Progress: pr, Completed: done})
	}

	return views, awarded
}

// snapshot copies the membership list before iteration since awarding
// mutates it.
func snapshot(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
