package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtl/core/pkg/models"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveGetRoundtrip(t *testing.T) {
	store := newTestStore(t)

	board := &models.Board{Base: models.Base{ID: "board1"}, SpaceID: "space1", Title: "ideas"}
	require.NoError(t, store.Save(board))

	var out models.Board
	found, err := store.Get("boards", "board1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "space1", out.SpaceID)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	var out models.Board
	found, err := store.Get("boards", "nope", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetUnknownTable(t *testing.T) {
	store := newTestStore(t)

	var out models.Board
	_, err := store.Get("not-a-table", "nope", &out)
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	board := &models.Board{Base: models.Base{ID: "board1"}, SpaceID: "space1"}
	require.NoError(t, store.Save(board))
	require.NoError(t, store.Delete(board))
	require.NoError(t, store.Delete(board))

	found, err := store.Get("boards", "board1", &models.Board{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAllReturnsEveryRow(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&models.Board{Base: models.Base{ID: "b1"}, SpaceID: "s1"}))
	require.NoError(t, store.Save(&models.Board{Base: models.Base{ID: "b2"}, SpaceID: "s1"}))

	rows, err := store.All("boards")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSaveUpsertOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(&models.Board{Base: models.Base{ID: "b1"}, SpaceID: "s1", Title: "first"}))
	require.NoError(t, store.Save(&models.Board{Base: models.Base{ID: "b1"}, SpaceID: "s1", Title: "second"}))

	rows, err := store.All("boards")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
