package checklist

import (
	"strings"

	"github.com/cardbinder/cardbinder-server/internal/normalize"
)

// ErrNoPlayerName is the per-line error attached when a pasted checklist
// line has no extractable player name.
const ErrNoPlayerName = "Could not parse player name"

// ParsedCard is one line of a pasted checklist, validated but not yet
// persisted. A non-empty Err means the line must not be imported; it is
// still returned so the preview can show the operator what went wrong.
type ParsedCard struct {
	CardNumber string `json:"card_number"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team,omitempty"`
	Year       *int   `json:"year,omitempty"`
	RawLine    string `json:"raw_line"`
	LineNumber int    `json:"line_number"`
	Err        string `json:"error,omitempty"`
}

// Valid reports whether the line parsed cleanly and may be imported.
func (p *ParsedCard) Valid() bool { return p.Err == "" }

// ParseChecklistText parses pasted checklist text, one card per line.
//
// Expected line shape: a card number, a space, the player name, and
// optionally a team after " - " or a comma:
//
//	577 Trevor Story - Boston Red Sox
//	100 Pete Crow-Armstrong - Chicago Cubs
//	27 Mike Trout, Angels
//
// The name/team split searches for the LAST " - " (then the last comma)
// so hyphens inside player names survive. Player and team names are
// accent-folded so later matching and search are accent-insensitive.
// Blank lines are skipped; line numbers are 1-based over the remaining
// lines. defaultYear, when non-nil, is attached to every card (used by
// multi-year sets).
func ParseChecklistText(text string, defaultYear *int) []ParsedCard {
	var results []ParsedCard

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, parseChecklistLine(line, len(results)+1, defaultYear))
	}

	return results
}

func parseChecklistLine(line string, lineNumber int, defaultYear *int) ParsedCard {
	result := ParsedCard{
		RawLine:    line,
		LineNumber: lineNumber,
		Year:       defaultYear,
	}

	firstSpace := strings.IndexByte(line, ' ')
	if firstSpace < 0 {
		// Nothing after the card number; not importable.
		result.CardNumber = line
		result.Err = ErrNoPlayerName
		return result
	}

	result.CardNumber = strings.TrimSpace(line[:firstSpace])
	remainder := strings.TrimSpace(line[firstSpace+1:])

	var player, team string
	if idx := strings.LastIndex(remainder, " - "); idx >= 0 {
		player = strings.TrimSpace(remainder[:idx])
		team = strings.TrimSpace(remainder[idx+3:])
	} else if idx := strings.LastIndex(remainder, ","); idx >= 0 {
		player = strings.TrimSpace(remainder[:idx])
		team = strings.TrimSpace(remainder[idx+1:])
	} else {
		player = remainder
	}

	result.PlayerName = normalize.Accents(player)
	result.Team = normalize.Accents(team)
	if result.PlayerName == "" {
		result.Err = ErrNoPlayerName
	}

	return result
}
