// Package search provides full-text card search using Bleve. It powers
// the cross-set card finder: type a player, team, or card number and get
// every matching checklist row with set context and status filtering.
package search

import (
	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/normalize"
)

// CardDocument is the indexed shape of one checklist card.
//
// Set name and brand are denormalized into each card document so a
// search hit can be rendered without a store lookup per row. The
// trade-off is reindexing a set's cards when its metadata changes, which
// is rare compared to searches.
type CardDocument struct {
	ID         string `json:"id"`
	SetID      string `json:"set_id"`
	CardNumber string `json:"card_number"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team,omitempty"`
	SubsetName string `json:"subset_name,omitempty"`
	Parallel   string `json:"parallel,omitempty"`
	Status     string `json:"status"`
	SetName    string `json:"set_name,omitempty"`
	Brand      string `json:"brand,omitempty"`

	Year      int   `json:"year,omitempty"`
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized), but our mapping
// uses lowercase names, so we convert explicitly.
func (d *CardDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"set_id":      d.SetID,
		"card_number": d.CardNumber,
		"player_name": d.PlayerName,
		"status":      d.Status,
		"updated_at":  d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Team != "" {
		m["team"] = d.Team
	}
	if d.SubsetName != "" {
		m["subset_name"] = d.SubsetName
	}
	if d.Parallel != "" {
		m["parallel"] = d.Parallel
	}
	if d.SetName != "" {
		m["set_name"] = d.SetName
	}
	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}

	return m
}

// CardToDocument converts a domain Card to a CardDocument. Set context
// is passed by the caller since the search package shouldn't depend on
// store. Text fields are accent-folded so "Ramirez" finds "Ramírez".
func CardToDocument(card *domain.Card, set *domain.Set) *CardDocument {
	doc := &CardDocument{
		ID:         card.ID,
		SetID:      card.SetID,
		CardNumber: normalize.SearchTerm(card.CardNumber),
		PlayerName: normalize.Accents(card.PlayerName),
		Team:       normalize.Accents(card.Team),
		SubsetName: normalize.Accents(card.SubsetName),
		Parallel:   card.Parallel,
		Status:     string(card.Status),
		UpdatedAt:  card.UpdatedAt.UnixMilli(),
	}

	if card.Year != nil {
		doc.Year = *card.Year
	}

	if set != nil {
		doc.SetName = normalize.Accents(set.Name)
		doc.Brand = set.Brand
		if card.Year == nil && !set.IsMultiYear() {
			doc.Year = set.Year
		}
	}

	return doc
}
