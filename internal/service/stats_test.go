package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

func TestSetStats(t *testing.T) {
	env := newTestEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)

	stats, err := env.stats.SetStats(t.Context(), set.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Need)
	assert.Equal(t, 0, stats.Percent)
}

func TestSetStats_EmptySet(t *testing.T) {
	env := newTestEnv(t)
	set := env.baseSet(t)

	stats, err := env.stats.SetStats(t.Context(), set.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Percent)
}

func TestSetStats_InvalidatedOnChange(t *testing.T) {
	env := newTestEnv(t)
	set := env.baseSet(t)

	_, err := env.checklists.ImportChecklist(t.Context(), set.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)

	before, err := env.stats.SetStats(t.Context(), set.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, before.Owned)

	// The mutation invalidates the cached entry, so the next read
	// reflects the new status immediately rather than after the TTL.
	_, err = env.checklists.BulkStatusApply(t.Context(), set.ID, "577\n27", domain.StatusOwned)
	require.NoError(t, err)

	after, err := env.stats.SetStats(t.Context(), set.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Owned)
	assert.Equal(t, 67, after.Percent)
}

func TestCollectionStats(t *testing.T) {
	env := newTestEnv(t)

	first := env.createSet(t, service.NewSet{Name: "2025 Topps Series 1", Year: 2025, Brand: "Topps", SetType: domain.SetTypeBase})
	second := env.createSet(t, service.NewSet{Name: "2025 Prizm", Year: 2025, Brand: "Panini", SetType: domain.SetTypeBase})

	_, err := env.checklists.ImportChecklist(t.Context(), first.ID, service.ImportRequest{Text: seriesOneText})
	require.NoError(t, err)
	_, err = env.checklists.ImportChecklist(t.Context(), second.ID, service.ImportRequest{Text: "1 Victor Wembanyama - Spurs"})
	require.NoError(t, err)
	_, err = env.checklists.BulkStatusApply(t.Context(), second.ID, "1", domain.StatusOwned)
	require.NoError(t, err)

	coll, err := env.sets.CreateCollection(t.Context(), "2025 releases")
	require.NoError(t, err)
	require.NoError(t, env.sets.AttachSet(t.Context(), coll.ID, first.ID))
	require.NoError(t, env.sets.AttachSet(t.Context(), coll.ID, second.ID))

	stats, err := env.stats.CollectionStats(t.Context(), coll.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Owned)
	// 1/4 across the collection, not the average of 0% and 100%.
	assert.Equal(t, 25, stats.Percent)
}
