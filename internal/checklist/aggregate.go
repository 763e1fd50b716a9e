package checklist

import (
	"math"
	"sort"
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/normalize"
)

// Stats summarizes completion of a checklist.
type Stats struct {
	Total   int `json:"total"`
	Owned   int `json:"owned"`
	Pending int `json:"pending"`
	Need    int `json:"need"`
	// Percent is round(owned/total*100); 0 for an empty checklist.
	Percent int `json:"percent"`
}

// ComputeStats counts cards per status and derives the completion
// percentage.
func ComputeStats(cards []*domain.Card) Stats {
	stats := Stats{Total: len(cards)}
	for _, card := range cards {
		switch card.Status {
		case domain.StatusOwned:
			stats.Owned++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusNeed:
			stats.Need++
		}
	}
	stats.Percent = Percent(stats.Owned, stats.Total)
	return stats
}

// Percent is round(owned/total*100), 0 when total is 0.
func Percent(owned, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(owned) / float64(total) * 100))
}

// Filter selects cards for display. Zero values mean "no filtering".
type Filter struct {
	// Search is a case- and accent-insensitive substring match over card
	// number, player name, and team. An active search suspends the
	// status filter so matches surface across all statuses.
	Search string
	// Status keeps only cards at this status; empty keeps all.
	Status domain.CardStatus
	// Year keeps only cards of this year (multi-year sets).
	Year *int
}

// FilterCards applies the filter, preserving input order. The input
// slice is not modified.
func FilterCards(cards []*domain.Card, f Filter) []*domain.Card {
	term := normalize.SearchTerm(f.Search)
	searching := term != ""

	result := make([]*domain.Card, 0, len(cards))
	for _, card := range cards {
		if !searching && f.Status != "" && card.Status != f.Status {
			continue
		}
		if f.Year != nil && (card.Year == nil || *card.Year != *f.Year) {
			continue
		}
		if searching && !matchesSearch(card, term) {
			continue
		}
		result = append(result, card)
	}
	return result
}

func matchesSearch(card *domain.Card, term string) bool {
	return strings.Contains(normalize.SearchTerm(card.CardNumber), term) ||
		strings.Contains(normalize.SearchTerm(card.PlayerName), term) ||
		strings.Contains(normalize.SearchTerm(card.Team), term)
}

// ParallelGroup is the cards of one named parallel, rendered after the
// base cards of their group.
type ParallelGroup struct {
	Name  string         `json:"name"`
	Cards []*domain.Card `json:"cards"`
}

// YearGroup is one display group of a checklist: the base cards first,
// then parallel subgroups in order of first appearance. Year is nil for
// single-year sets (one group) and for multi-year cards missing a year.
type YearGroup struct {
	Year      *int            `json:"year,omitempty"`
	Base      []*domain.Card  `json:"base"`
	Parallels []ParallelGroup `json:"parallels,omitempty"`
	Stats     Stats           `json:"stats"`
}

// GroupCards arranges an already-filtered checklist for display. Cards
// are ordered first (rainbow sets by display order and print run,
// everything else by natural card number) and then grouped.
//
// Multi-year sets with no active year filter group by year ascending
// with the nil-year group last; otherwise there is a single group.
// Within each group base cards precede parallel subgroups.
func GroupCards(cards []*domain.Card, set *domain.Set, yearFiltered bool) []YearGroup {
	ordered := make([]*domain.Card, len(cards))
	copy(ordered, cards)
	if set.IsRainbow() {
		SortRainbow(ordered)
	} else {
		SortCards(ordered)
	}

	if !set.IsMultiYear() || yearFiltered {
		return []YearGroup{buildGroup(nil, ordered)}
	}

	// Bucket by year, keeping card order inside each bucket.
	byYear := make(map[int][]*domain.Card)
	var noYear []*domain.Card
	var years []int
	for _, card := range ordered {
		if card.Year == nil {
			noYear = append(noYear, card)
			continue
		}
		if _, ok := byYear[*card.Year]; !ok {
			years = append(years, *card.Year)
		}
		byYear[*card.Year] = append(byYear[*card.Year], card)
	}
	sort.Ints(years)

	groups := make([]YearGroup, 0, len(years)+1)
	for _, year := range years {
		groups = append(groups, buildGroup(&year, byYear[year]))
	}
	if len(noYear) > 0 {
		groups = append(groups, buildGroup(nil, noYear))
	}
	return groups
}

// buildGroup splits one group's cards into base and parallel subgroups.
// Parallel subgroups appear in order of their first card.
func buildGroup(year *int, cards []*domain.Card) YearGroup {
	group := YearGroup{Year: year, Stats: ComputeStats(cards)}

	indexByName := make(map[string]int)
	for _, card := range cards {
		if card.IsBase() {
			group.Base = append(group.Base, card)
			continue
		}
		idx, ok := indexByName[card.Parallel]
		if !ok {
			idx = len(group.Parallels)
			indexByName[card.Parallel] = idx
			group.Parallels = append(group.Parallels, ParallelGroup{Name: card.Parallel})
		}
		group.Parallels[idx].Cards = append(group.Parallels[idx].Cards, card)
	}

	return group
}

// Years returns the distinct years present in a checklist, ascending.
// Used to drive the year filter of a multi-year set.
func Years(cards []*domain.Card) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, card := range cards {
		if card.Year == nil {
			continue
		}
		if _, ok := seen[*card.Year]; !ok {
			seen[*card.Year] = struct{}{}
			years = append(years, *card.Year)
		}
	}
	sort.Ints(years)
	return years
}
