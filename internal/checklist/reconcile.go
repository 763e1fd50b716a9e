package checklist

import (
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// InsertChunkSize bounds a single bulk-insert write. Oversized pastes are
// split into chunks of this many rows, submitted strictly in sequence.
const InsertChunkSize = 50

// CandidateMatch pairs a skipped candidate with the persisted card it
// collided with, for operator-facing diagnostics.
type CandidateMatch struct {
	Candidate ParsedCard   `json:"candidate"`
	Existing  *domain.Card `json:"existing"`
}

// ReconcileResult partitions an import batch against the persisted
// checklist.
type ReconcileResult struct {
	// New holds candidates with no natural-key collision, in input order.
	New []ParsedCard `json:"new"`
	// Skipped counts candidates that collided with an existing card.
	Skipped int `json:"skipped"`
	// Matches explains each collision. Populated only when every
	// candidate collided, so a fully-duplicate paste gets a diagnostic
	// instead of a silent no-op.
	Matches []CandidateMatch `json:"matches,omitempty"`
}

// Reconcile filters an import batch against the existing checklist using
// natural keys (see domain.Card.Key). Candidates with parse errors must
// be filtered out by the caller beforehand.
//
// parallelLabel is the batch-shared parallel name (nil for a plain
// import). It folds into candidate keys only for multi-year sets, so
// the same number/player can exist there as both a base card and a
// labeled parallel.
func Reconcile(candidates []ParsedCard, existing []*domain.Card, set *domain.Set, parallelLabel *string) ReconcileResult {
	opts := set.KeyOptions(parallelLabel)

	existingByKey := make(map[string]*domain.Card, len(existing))
	for _, card := range existing {
		// Existing cards key on their own stored parallel.
		existingByKey[card.Key(domain.KeyOptions{MultiYear: opts.MultiYear})] = card
	}

	result := ReconcileResult{}
	for _, candidate := range candidates {
		if _, ok := existingByKey[candidateKey(candidate, opts)]; ok {
			result.Skipped++
			continue
		}
		result.New = append(result.New, candidate)
	}

	if len(result.New) == 0 && len(candidates) > 0 {
		result.Matches = make([]CandidateMatch, 0, len(candidates))
		for _, candidate := range candidates {
			result.Matches = append(result.Matches, CandidateMatch{
				Candidate: candidate,
				Existing:  existingByKey[candidateKey(candidate, opts)],
			})
		}
	}

	return result
}

// candidateKey builds the natural key for a not-yet-persisted parse
// result by viewing it as a card.
func candidateKey(c ParsedCard, opts domain.KeyOptions) string {
	card := domain.Card{
		CardNumber: c.CardNumber,
		PlayerName: c.PlayerName,
		Year:       c.Year,
	}
	return card.Key(opts)
}

// Chunk splits rows into InsertChunkSize-bounded slices, preserving
// order. The slices alias the input.
func Chunk(rows []*domain.Card) [][]*domain.Card {
	if len(rows) == 0 {
		return nil
	}
	chunks := make([][]*domain.Card, 0, (len(rows)+InsertChunkSize-1)/InsertChunkSize)
	for start := 0; start < len(rows); start += InsertChunkSize {
		end := min(start+InsertChunkSize, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// ReconcileParallels filters parsed rainbow parallels against the
// parallels already recorded for the card, matching case-insensitively
// on parallel name. Returns the new parallels in input order and the
// number skipped.
func ReconcileParallels(candidates []ParsedParallel, existing []*domain.Card) (fresh []ParsedParallel, skipped int) {
	seen := make(map[string]struct{}, len(existing))
	for _, card := range existing {
		seen[lowerTrim(card.Parallel)] = struct{}{}
	}

	for _, candidate := range candidates {
		if _, ok := seen[lowerTrim(candidate.Parallel)]; ok {
			skipped++
			continue
		}
		fresh = append(fresh, candidate)
	}
	return fresh, skipped
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
