package checklist

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// csvHeader matches the column layout collectors expect from exported
// checklists.
//
//nolint:gochecknoglobals // static header row
var csvHeader = []string{"Card Number", "Player Name", "Team", "Subset", "Parallel", "Serial Owned", "Status"}

// ExportCSV renders a checklist as CSV in the given card order.
func ExportCSV(cards []*domain.Card) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, card := range cards {
		row := []string{
			card.CardNumber,
			card.PlayerName,
			card.Team,
			card.SubsetName,
			card.Parallel,
			card.SerialOwned,
			string(card.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row for card %s: %w", card.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
