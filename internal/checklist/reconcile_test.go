package checklist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

func baseSet() *domain.Set {
	return &domain.Set{ID: "set-1", SetType: domain.SetTypeBase, Year: 2025}
}

func multiYearSet() *domain.Set {
	return &domain.Set{ID: "set-2", SetType: domain.SetTypeMultiYearInsert}
}

func TestReconcile_NewChecklist(t *testing.T) {
	candidates := ParseChecklistText("577 Trevor Story - Boston Red Sox\n581 Andruw Monasterio - Milwaukee Brewers", nil)
	require.Len(t, candidates, 2)

	result := Reconcile(candidates, nil, baseSet(), nil)

	assert.Len(t, result.New, 2)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Matches)
}

// Importing the same text twice must be a no-op: the second pass skips
// every candidate and explains each collision.
func TestReconcile_Idempotent(t *testing.T) {
	candidates := ParseChecklistText("577 Trevor Story - Boston Red Sox\n581 Andruw Monasterio - Milwaukee Brewers", nil)

	existing := make([]*domain.Card, 0, len(candidates))
	for i, c := range candidates {
		existing = append(existing, &domain.Card{
			ID:         fmt.Sprintf("card-%d", i),
			CardNumber: c.CardNumber,
			PlayerName: c.PlayerName,
			Team:       c.Team,
		})
	}

	result := Reconcile(candidates, existing, baseSet(), nil)

	assert.Empty(t, result.New)
	assert.Equal(t, len(candidates), result.Skipped)
	require.Len(t, result.Matches, len(candidates), "all-duplicate batch gets full diagnostics")
	for i, match := range result.Matches {
		assert.Equal(t, candidates[i].CardNumber, match.Candidate.CardNumber)
		require.NotNil(t, match.Existing)
		assert.Equal(t, existing[i].ID, match.Existing.ID)
	}
}

func TestReconcile_KeyNormalization(t *testing.T) {
	existing := []*domain.Card{
		{ID: "card-1", CardNumber: "577", PlayerName: "Trevor Story"},
	}

	// Case and surrounding whitespace do not defeat duplicate detection.
	candidates := ParseChecklistText("577 TREVOR STORY - Boston Red Sox", nil)
	result := Reconcile(candidates, existing, baseSet(), nil)
	assert.Empty(t, result.New)
	assert.Equal(t, 1, result.Skipped)

	// A different card number is genuinely new.
	candidates = ParseChecklistText("578 Trevor Story - Boston Red Sox", nil)
	result = Reconcile(candidates, existing, baseSet(), nil)
	assert.Len(t, result.New, 1)
	assert.Zero(t, result.Skipped)
}

func TestReconcile_PartialOverlapHasNoMatches(t *testing.T) {
	existing := []*domain.Card{
		{ID: "card-1", CardNumber: "577", PlayerName: "Trevor Story"},
	}
	candidates := ParseChecklistText("577 Trevor Story - Boston Red Sox\n581 Andruw Monasterio - Milwaukee Brewers", nil)

	result := Reconcile(candidates, existing, baseSet(), nil)

	assert.Len(t, result.New, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Matches, "diagnostics only when nothing is new")
}

func TestReconcile_MultiYearKeys(t *testing.T) {
	year2020, year2021 := 2020, 2021
	existing := []*domain.Card{
		{ID: "card-1", CardNumber: "1", PlayerName: "Derek Jeter", Year: &year2020},
	}

	t.Run("same player different year is new", func(t *testing.T) {
		candidates := ParseChecklistText("1 Derek Jeter - New York Yankees", &year2021)
		result := Reconcile(candidates, existing, multiYearSet(), nil)
		assert.Len(t, result.New, 1)
	})

	t.Run("same player same year collides", func(t *testing.T) {
		candidates := ParseChecklistText("1 Derek Jeter - New York Yankees", &year2020)
		result := Reconcile(candidates, existing, multiYearSet(), nil)
		assert.Empty(t, result.New)
		assert.Equal(t, 1, result.Skipped)
	})
}

// The batch parallel label folds into candidate keys only for
// multi-year sets, so the same card can exist there as base and as a
// labeled parallel.
func TestReconcile_ParallelLabel(t *testing.T) {
	gold := "Gold"
	year2020 := 2020

	t.Run("multi-year: label distinguishes from base", func(t *testing.T) {
		existing := []*domain.Card{
			{ID: "card-1", CardNumber: "1", PlayerName: "Derek Jeter", Year: &year2020},
		}
		candidates := ParseChecklistText("1 Derek Jeter - New York Yankees", &year2020)

		result := Reconcile(candidates, existing, multiYearSet(), &gold)
		assert.Len(t, result.New, 1)

		// Re-importing the same labeled batch collides with the stored
		// parallel row.
		existing = append(existing, &domain.Card{
			ID: "card-2", CardNumber: "1", PlayerName: "Derek Jeter", Year: &year2020, Parallel: gold,
		})
		result = Reconcile(candidates, existing, multiYearSet(), &gold)
		assert.Empty(t, result.New)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("single-year: label is ignored for keys", func(t *testing.T) {
		existing := []*domain.Card{
			{ID: "card-1", CardNumber: "577", PlayerName: "Trevor Story"},
		}
		candidates := ParseChecklistText("577 Trevor Story - Boston Red Sox", nil)

		result := Reconcile(candidates, existing, baseSet(), &gold)
		assert.Empty(t, result.New)
		assert.Equal(t, 1, result.Skipped)
	})
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantSizes []int
	}{
		{"empty", 0, nil},
		{"single partial chunk", 3, []int{3}},
		{"exact boundary", InsertChunkSize, []int{InsertChunkSize}},
		{"boundary plus one", InsertChunkSize + 1, []int{InsertChunkSize, 1}},
		{"several chunks", 2*InsertChunkSize + 7, []int{InsertChunkSize, InsertChunkSize, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]*domain.Card, tt.count)
			for i := range rows {
				rows[i] = &domain.Card{ID: fmt.Sprintf("card-%d", i)}
			}

			chunks := Chunk(rows)

			require.Len(t, chunks, len(tt.wantSizes))
			seen := 0
			for i, chunk := range chunks {
				assert.Len(t, chunk, tt.wantSizes[i])
				for _, row := range chunk {
					assert.Equal(t, rows[seen], row, "order preserved across chunks")
					seen++
				}
			}
		})
	}
}

func TestReconcileParallels(t *testing.T) {
	existing := []*domain.Card{
		{ID: "card-1", Parallel: "Sky Blue", ParallelPrintRun: "499"},
		{ID: "card-2", Parallel: "Base"},
	}
	candidates := ParseRainbowText("sky blue – /499\nPurple – /250\nBASE")

	fresh, skipped := ReconcileParallels(candidates, existing)

	require.Len(t, fresh, 1)
	assert.Equal(t, "Purple", fresh[0].Parallel)
	assert.Equal(t, 2, skipped)
}
