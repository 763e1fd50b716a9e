package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/domain"
	"github.com/cardbinder/cardbinder-server/internal/service"
	"github.com/cardbinder/cardbinder-server/internal/store"
)

// testEnv wires the services against a throwaway badger store.
type testEnv struct {
	store      *store.Store
	sets       *service.SetService
	checklists *service.ChecklistService
	stats      *service.StatsService
	admin      *service.AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	stats := service.NewStatsService(st)
	return &testEnv{
		store:      st,
		sets:       service.NewSetService(st, stats, logger),
		checklists: service.NewChecklistService(st, stats, logger),
		stats:      stats,
		admin:      service.NewAdminService(st, logger),
	}
}

func (e *testEnv) createSet(t *testing.T, req service.NewSet) *domain.Set {
	t.Helper()
	set, err := e.sets.CreateSet(t.Context(), req)
	require.NoError(t, err)
	return set
}

func (e *testEnv) baseSet(t *testing.T) *domain.Set {
	t.Helper()
	return e.createSet(t, service.NewSet{
		Name:    "2025 Topps Series 1",
		Year:    2025,
		Brand:   "Topps",
		SetType: domain.SetTypeBase,
	})
}
