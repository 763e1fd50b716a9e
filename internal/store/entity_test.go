package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder-server/internal/store"
)

type testEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	data := &testEntity{ID: "1", Name: "Trevor Story", Email: "trevor@example.com"}

	err := entity.Create(context.Background(), "1", data)
	require.NoError(t, err)

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, data, retrieved)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	data := &testEntity{ID: "1", Name: "Trevor Story"}

	require.NoError(t, entity.Create(context.Background(), "1", data))

	err := entity.Create(context.Background(), "1", data)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	_, err := entity.Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Update(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	data := &testEntity{ID: "1", Name: "Trevor Story"}
	require.NoError(t, entity.Create(context.Background(), "1", data))

	data.Name = "Trevor Story Jr."
	require.NoError(t, entity.Update(context.Background(), "1", data))

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "Trevor Story Jr.", retrieved.Name)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	err := entity.Update(context.Background(), "missing", &testEntity{ID: "missing"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	require.NoError(t, entity.Create(context.Background(), "1", &testEntity{ID: "1"}))
	require.NoError(t, entity.Delete(context.Background(), "1"))

	_, err := entity.Get(context.Background(), "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, entity.Delete(context.Background(), "1"))
}

func TestEntity_IndexLookup(t *testing.T) {
	s := setupTestStore(t)

	// Mirrors how reference data is indexed: normalized unique names.
	entity := store.NewEntity[testEntity](s, "test:").
		WithIndexTransform("email",
			func(e *testEntity) []string { return []string{e.Email} },
			nil,
		)

	data := &testEntity{ID: "1", Name: "Trevor Story", Email: "trevor@example.com"}
	require.NoError(t, entity.Create(context.Background(), "1", data))

	retrieved, err := entity.GetByIndex(context.Background(), "email", "trevor@example.com")
	require.NoError(t, err)
	require.Equal(t, "1", retrieved.ID)

	_, err = entity.GetByIndex(context.Background(), "email", "other@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_IndexConflict(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:").
		WithIndex("email", func(e *testEntity) []string { return []string{e.Email} })

	require.NoError(t, entity.Create(context.Background(), "1",
		&testEntity{ID: "1", Email: "shared@example.com"}))

	err := entity.Create(context.Background(), "2",
		&testEntity{ID: "2", Email: "shared@example.com"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Update_MovesIndex(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:").
		WithIndex("email", func(e *testEntity) []string { return []string{e.Email} })

	data := &testEntity{ID: "1", Email: "old@example.com"}
	require.NoError(t, entity.Create(context.Background(), "1", data))

	data.Email = "new@example.com"
	require.NoError(t, entity.Update(context.Background(), "1", data))

	_, err := entity.GetByIndex(context.Background(), "email", "old@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	retrieved, err := entity.GetByIndex(context.Background(), "email", "new@example.com")
	require.NoError(t, err)
	require.Equal(t, "1", retrieved.ID)

	// The freed index key is usable again.
	require.NoError(t, entity.Create(context.Background(), "2",
		&testEntity{ID: "2", Email: "old@example.com"}))
}

func TestEntity_ListAll(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:").
		WithIndex("email", func(e *testEntity) []string { return []string{e.Email} })

	for i := range 5 {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Create(context.Background(), id,
			&testEntity{ID: id, Email: fmt.Sprintf("user%d@example.com", i)}))
	}

	all, err := entity.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5, "index keys must not leak into listings")
}

func TestEntity_ContextCancelled(t *testing.T) {
	s := setupTestStore(t)
	entity := store.NewEntity[testEntity](s, "test:")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := entity.Create(ctx, "1", &testEntity{ID: "1"})
	require.ErrorIs(t, err, context.Canceled)

	_, err = entity.Get(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)
}
