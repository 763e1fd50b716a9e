// Package checklist implements the reconciliation and parsing core of the
// CardBinder server: checklist text parsing, rainbow parallel parsing,
// duplicate reconciliation, bulk status matching, ordering, and
// completion aggregation. Everything here is pure computation over
// explicit inputs; persistence belongs to the store.
package checklist

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// trailingDigits splits a card number into a prefix and a maximal
// trailing digit run, so "90AS-12" compares as ("90AS-", 12).
//
//nolint:gochecknoglobals // compiled once, read-only
var trailingDigits = regexp.MustCompile(`^(.*?)(\d+)$`)

// CompareCardNumbers orders card numbers naturally. Every number is
// decomposed into (prefix, trailing digit run) and the tuples compare
// lexicographically on the prefix, then numerically on the digits, so
// "90AS-2" sorts before "90AS-10". A number without trailing digits is
// its own prefix and sorts before the same prefix with digits. Both
// sides always compare under the same decomposition, which keeps the
// ordering transitive for mixed corpora like {"2", "007", "12B"}.
func CompareCardNumbers(a, b string) int {
	pa, da := splitCardNumber(a)
	pb, db := splitCardNumber(b)

	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	switch {
	case da == "" && db == "":
		return 0
	case da == "":
		return -1
	case db == "":
		return 1
	}
	return compareDigitRuns(da, db)
}

// splitCardNumber splits a card number into its prefix and maximal
// trailing digit run. Digitless numbers return an empty run.
func splitCardNumber(s string) (prefix, digits string) {
	if m := trailingDigits.FindStringSubmatch(s); m != nil {
		return m[1], m[2]
	}
	return s, ""
}

// compareDigitRuns compares two all-digit strings numerically without
// overflowing on absurdly long pastes: shorter (after zero-trim) means
// smaller, equal lengths compare lexicographically.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// CompareByPrintRun orders a rainbow checklist. Priority:
//
//  1. Cards with an explicit display order come first, ascending.
//  2. Unnumbered cards (no print run) before serial-numbered ones.
//  3. Serial-numbered cards by print run descending, so the most common
//     parallel leads and the 1/1 closes the rainbow.
//
// Print runs that do not parse as unsigned integers sort after every
// numeric run. The comparator never panics on malformed data.
func CompareByPrintRun(a, b *domain.Card) int {
	switch {
	case a.DisplayOrder != nil && b.DisplayOrder != nil:
		return *a.DisplayOrder - *b.DisplayOrder
	case a.DisplayOrder != nil:
		return -1
	case b.DisplayOrder != nil:
		return 1
	}

	aRun, aOK := parsePrintRun(a.ParallelPrintRun)
	bRun, bOK := parsePrintRun(b.ParallelPrintRun)

	switch {
	case a.ParallelPrintRun == "" && b.ParallelPrintRun == "":
		return 0
	case a.ParallelPrintRun == "":
		return -1
	case b.ParallelPrintRun == "":
		return 1
	case aOK && bOK:
		// Descending: larger run (less rare) first.
		switch {
		case aRun > bRun:
			return -1
		case aRun < bRun:
			return 1
		}
		return 0
	case aOK:
		return -1
	case bOK:
		return 1
	}
	return 0
}

func parsePrintRun(s string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

// SortCards sorts a checklist in natural card-number order, in place.
// The sort is stable so equal numbers keep their input order.
func SortCards(cards []*domain.Card) {
	slices.SortStableFunc(cards, func(a, b *domain.Card) int {
		return CompareCardNumbers(a.CardNumber, b.CardNumber)
	})
}

// SortRainbow sorts a rainbow checklist by display order and print run,
// in place.
func SortRainbow(cards []*domain.Card) {
	slices.SortStableFunc(cards, CompareByPrintRun)
}
