package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/domain"
)

// setupTestIndex creates a temporary card index for testing.
func setupTestIndex(t *testing.T) *CardIndex {
	t.Helper()

	index, err := NewCardIndex(Options{
		DataPath: t.TempDir(),
		Logger:   nil,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testSet() *domain.Set {
	return &domain.Set{
		ID:      "set-1",
		Name:    "2025 Topps Series 1",
		Brand:   "Topps",
		SetType: domain.SetTypeBase,
		Year:    2025,
	}
}

func indexTestCards(t *testing.T, index *CardIndex) {
	t.Helper()

	set := testSet()
	cards := []*domain.Card{
		{
			ID: "card-1", SetID: set.ID, CardNumber: "577",
			PlayerName: "Trevor Story", Team: "Boston Red Sox",
			Status: domain.StatusNeed, UpdatedAt: time.Now(),
		},
		{
			ID: "card-2", SetID: set.ID, CardNumber: "336",
			PlayerName: "José Ramírez", Team: "Cleveland Guardians",
			Status: domain.StatusOwned, UpdatedAt: time.Now(),
		},
		{
			ID: "card-3", SetID: set.ID, CardNumber: "90AS-10",
			PlayerName: "Shohei Ohtani", Team: "Los Angeles Dodgers",
			Status: domain.StatusNeed, UpdatedAt: time.Now(),
		},
	}

	docs := make([]*CardDocument, 0, len(cards))
	for _, card := range cards {
		docs = append(docs, CardToDocument(card, set))
	}
	require.NoError(t, index.IndexDocuments(docs))
}

func TestNewCardIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestCardIndex_IndexAndCount(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestCardIndex_SearchByPlayer(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	params := DefaultParams()
	params.Query = "story"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "card-1", result.Hits[0].ID)
	assert.Equal(t, "2025 Topps Series 1", result.Hits[0].SetName)
}

func TestCardIndex_SearchAccentInsensitive(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	// Both folded and accented input must find the accented player.
	for _, q := range []string{"ramirez", "Ramírez"} {
		params := DefaultParams()
		params.Query = q

		result, err := index.Search(context.Background(), params)
		require.NoError(t, err)
		require.NotEmpty(t, result.Hits, "query %q", q)
		assert.Equal(t, "card-2", result.Hits[0].ID, "query %q", q)
	}
}

func TestCardIndex_SearchByCardNumber(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	params := DefaultParams()
	params.Query = "90AS-10"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "card-3", result.Hits[0].ID)
}

func TestCardIndex_StatusFilter(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	params := DefaultParams()
	params.Statuses = []string{string(domain.StatusOwned)}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "card-2", result.Hits[0].ID)
}

func TestCardIndex_SetFilter(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	otherSet := &domain.Set{ID: "set-2", Name: "Other", SetType: domain.SetTypeBase, Year: 2024}
	card := &domain.Card{
		ID: "card-other", SetID: "set-2", CardNumber: "1",
		PlayerName: "Trevor Story", Status: domain.StatusNeed, UpdatedAt: time.Now(),
	}
	require.NoError(t, index.IndexDocument(CardToDocument(card, otherSet)))

	params := DefaultParams()
	params.Query = "story"
	params.SetID = "set-1"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "card-1", result.Hits[0].ID)
}

func TestCardIndex_DeleteDocuments(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	require.NoError(t, index.DeleteDocuments([]string{"card-1", "card-2"}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestCardIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	indexTestCards(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestCardToDocument(t *testing.T) {
	set := testSet()
	year := 2020
	card := &domain.Card{
		ID: "card-1", SetID: set.ID, CardNumber: "BDC-7",
		PlayerName: "José Ramírez", Team: "Cleveland Guardians",
		Parallel: "Gold", Status: domain.StatusOwned,
		Year: &year, UpdatedAt: time.Now(),
	}

	doc := CardToDocument(card, set)

	assert.Equal(t, "bdc-7", doc.CardNumber, "numbers are lowercased for term lookup")
	assert.Equal(t, "Jose Ramirez", doc.PlayerName, "accents folded")
	assert.Equal(t, 2020, doc.Year, "card year wins over set year")
	assert.Equal(t, "Gold", doc.Parallel)

	// Single-year sets fall back to the set's year.
	card.Year = nil
	doc = CardToDocument(card, set)
	assert.Equal(t, 2025, doc.Year)
}
