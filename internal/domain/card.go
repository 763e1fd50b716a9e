// Package domain contains the core types for the CardBinder server:
// sets, checklist cards, reference data, collections, and users.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// CardStatus tracks whether the collector needs, is waiting on, or owns a card.
type CardStatus string

// Card statuses.
const (
	StatusNeed    CardStatus = "need"
	StatusPending CardStatus = "pending"
	StatusOwned   CardStatus = "owned"
)

// ValidStatus reports whether s is one of the known card statuses.
func ValidStatus(s CardStatus) bool {
	switch s {
	case StatusNeed, StatusPending, StatusOwned:
		return true
	}
	return false
}

// Card is one checklist row: a specific card (and, for rainbow sets, a
// specific parallel of that card) within a set.
type Card struct {
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ID               string     `json:"id"`
	SetID            string     `json:"set_id"`
	CardNumber       string     `json:"card_number"`
	PlayerName       string     `json:"player_name"`
	Team             string     `json:"team,omitempty"`
	SubsetName       string     `json:"subset_name,omitempty"`
	Parallel         string     `json:"parallel,omitempty"`
	ParallelPrintRun string     `json:"parallel_print_run,omitempty"` // denominator of the serial run, e.g. "50" for /50
	SerialOwned      string     `json:"serial_owned,omitempty"`       // numerator the collector owns, e.g. "17" for 17/50
	Status           CardStatus `json:"status"`
	Year             *int       `json:"year,omitempty"`          // only for multi-year sets
	DisplayOrder     *int       `json:"display_order,omitempty"` // manual ordering override for rainbow sets
}

// KeyOptions controls natural-key construction for duplicate detection.
type KeyOptions struct {
	// MultiYear extends the key with year and parallel. Single-year sets
	// key on card number and player alone, matching how the checklist
	// importer has always behaved.
	MultiYear bool
	// ParallelOverride, when non-nil, replaces the card's own parallel in
	// the key. Used when an import batch carries a shared parallel label.
	ParallelOverride *string
}

// Key returns the card's natural identity key for duplicate detection:
// lowercased, trimmed card number and player name, extended with year and
// parallel for multi-year sets.
func (c *Card) Key(opts KeyOptions) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(c.CardNumber)))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(c.PlayerName)))
	if !opts.MultiYear {
		return b.String()
	}

	b.WriteByte('|')
	if c.Year != nil {
		b.WriteString(strconv.Itoa(*c.Year))
	}
	b.WriteByte('|')
	parallel := c.Parallel
	if opts.ParallelOverride != nil {
		parallel = *opts.ParallelOverride
	}
	b.WriteString(strings.ToLower(parallel))
	return b.String()
}

// IsBase reports whether this is the base (non-parallel) version of a
// card. Rainbow checklists spell the base row as a literal "Base"
// parallel, so that name counts too.
func (c *Card) IsBase() bool {
	return c.Parallel == "" || strings.EqualFold(c.Parallel, "Base")
}

// IsSerialNumbered reports whether the card carries a print run.
func (c *Card) IsSerialNumbered() bool {
	return c.ParallelPrintRun != ""
}
