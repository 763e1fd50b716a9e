package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/search"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

// newSearchEnv wires a search service into the store so card writes
// flow through to the index, the way the server runs in production.
func newSearchEnv(t *testing.T) (*testEnv, *service.SearchService) {
	t.Helper()

	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	idx, err := search.NewCardIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, idx.Close())
	})

	searchSvc := service.NewSearchService(idx, env.store, logger)
	env.store.SetSearchIndexer(searchSvc)
	return env, searchSvc
}

func TestSearchAfterImport(t *testing.T) {
	env, searchSvc := newSearchEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)

	params := search.DefaultParams()
	params.Query = "trevor story"
	result, err := searchSvc.Search(t.Context(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "577", result.Hits[0].CardNumber)
	assert.Equal(t, set.ID, result.Hits[0].SetID)
}

func TestSearchAfterDelete(t *testing.T) {
	env, searchSvc := newSearchEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)

	cards, err := env.store.ListCardsBySet(t.Context(), set.ID)
	require.NoError(t, err)
	require.NoError(t, env.checklists.DeleteCards(t.Context(), set.ID, []string{cards[0].ID, cards[1].ID, cards[2].ID}))

	count, err := searchSvc.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchAfterSetDelete(t *testing.T) {
	env, searchSvc := newSearchEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)
	require.NoError(t, env.sets.DeleteSet(t.Context(), set.ID))

	count, err := searchSvc.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReindex(t *testing.T) {
	env, searchSvc := newSearchEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)

	indexed, err := searchSvc.Reindex(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)

	count, err := searchSvc.DocumentCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
