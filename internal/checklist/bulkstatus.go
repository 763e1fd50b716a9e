package checklist

import (
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// StatusMatch pairs one pasted identifier with the checklist card it
// matched, or nil when no card shares the number.
type StatusMatch struct {
	Identifier string       `json:"identifier"`
	Matched    *domain.Card `json:"matched,omitempty"`
}

// StatusPlan is the preview of a bulk status change: what matched, what
// did not, and exactly which cards a confirmation would update. Nothing
// is mutated until the plan is applied.
type StatusPlan struct {
	Target         domain.CardStatus `json:"target"`
	Matches        []StatusMatch     `json:"matches"`
	MatchedCount   int               `json:"matched_count"`
	UnmatchedCount int               `json:"unmatched_count"`
	AlreadyCorrect int               `json:"already_correct_count"`
	WillUpdate     int               `json:"will_update_count"`
	// UpdateIDs are the cards whose status actually differs from the
	// target; applying the plan is one batched update over these.
	UpdateIDs []string `json:"update_ids"`
}

// MatchCardNumbers matches pasted identifiers against the checklist.
// Each non-blank line contributes exactly one match entry. Full rows
// like "577 Trevor Story - Red Sox" are fine, only the first token is
// used. Unmatched identifiers are reported, never dropped.
func MatchCardNumbers(text string, cards []*domain.Card) []StatusMatch {
	byNumber := make(map[string]*domain.Card, len(cards))
	for _, card := range cards {
		byNumber[strings.ToLower(card.CardNumber)] = card
	}

	var matches []StatusMatch
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		identifier := line
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			identifier = line[:idx]
		}
		matches = append(matches, StatusMatch{
			Identifier: identifier,
			Matched:    byNumber[strings.ToLower(identifier)],
		})
	}

	return matches
}

// PlanStatusChange computes the transition plan for setting every
// matched card to target. The invariant WillUpdate = MatchedCount -
// AlreadyCorrect always holds.
func PlanStatusChange(matches []StatusMatch, target domain.CardStatus) StatusPlan {
	plan := StatusPlan{Target: target, Matches: matches}

	for _, m := range matches {
		if m.Matched == nil {
			plan.UnmatchedCount++
			continue
		}
		plan.MatchedCount++
		if m.Matched.Status == target {
			plan.AlreadyCorrect++
			continue
		}
		plan.UpdateIDs = append(plan.UpdateIDs, m.Matched.ID)
	}

	plan.WillUpdate = plan.MatchedCount - plan.AlreadyCorrect
	return plan
}
