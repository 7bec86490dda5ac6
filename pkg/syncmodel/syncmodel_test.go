package syncmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newNote(id string) models.Protected {
	return &models.Note{Base: models.Base{ID: id}}
}

func TestIncomingAddSavesAndCanonicalizesData(t *testing.T) {
	store := newTestStore(t)
	item := &models.SyncRecord{
		Action: models.SyncActionAdd,
		ItemID: "note1",
		Data:   json.RawMessage(`{"user_id":"u1","space_id":"space1","has_file":false,"mod_":5}`),
	}

	require.NoError(t, Incoming(store, newNote, item, DefaultHooks(models.SyncTypeNote)))

	var out models.Note
	found, err := store.Get("notes", "note1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "space1", out.SpaceID)

	assert.Contains(t, string(item.Data), `"user_id":"u1"`)
}

func TestIncomingDeleteCallsDBDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&models.Note{Base: models.Base{ID: "note1"}, SpaceID: "s1"}))

	item := &models.SyncRecord{Action: models.SyncActionDelete, ItemID: "note1"}
	require.NoError(t, Incoming(store, newNote, item, DefaultHooks(models.SyncTypeNote)))

	found, err := store.Get("notes", "note1", &models.Note{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncomingSkipsMissingPayload(t *testing.T) {
	store := newTestStore(t)
	item := &models.SyncRecord{
		Action: models.SyncActionEdit,
		ItemID: "note1",
		Data:   json.RawMessage(`{"missing":true}`),
	}

	require.NoError(t, Incoming(store, newNote, item, DefaultHooks(models.SyncTypeNote)))

	found, err := store.Get("notes", "note1", &models.Note{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncomingMissingDataErrors(t *testing.T) {
	store := newTestStore(t)
	item := &models.SyncRecord{Action: models.SyncActionAdd, ItemID: "note1"}
	assert.Error(t, Incoming(store, newNote, item, DefaultHooks(models.SyncTypeNote)))
}

func TestOutgoingAddQueuesSyncRecord(t *testing.T) {
	store := newTestStore(t)
	note := &models.Note{Base: models.Base{ID: "note1"}, SpaceID: "s1"}

	record, err := Outgoing(note, models.SyncActionAdd, "user1", store, false, DefaultHooks(models.SyncTypeNote))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.SyncTypeNote, record.Ty)
	assert.Equal(t, "note1", record.ItemID)

	found, err := store.Get("notes", "note1", &models.Note{})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOutgoingSkipRemoteDoesNotQueue(t *testing.T) {
	store := newTestStore(t)
	note := &models.Note{Base: models.Base{ID: "note1"}, SpaceID: "s1"}

	record, err := Outgoing(note, models.SyncActionAdd, "user1", store, true, DefaultHooks(models.SyncTypeNote))
	require.NoError(t, err)
	assert.Nil(t, record)

	found, err := store.Get("notes", "note1", &models.Note{})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOutgoingDeleteRemovesModel(t *testing.T) {
	store := newTestStore(t)
	note := &models.Note{Base: models.Base{ID: "note1"}, SpaceID: "s1"}
	require.NoError(t, store.Save(note))

	record, err := Outgoing(note, models.SyncActionDelete, "user1", store, false, DefaultHooks(models.SyncTypeNote))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Contains(t, string(record.Data), "note1")

	found, err := store.Get("notes", "note1", &models.Note{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileDataIncomingWritesMarkerNotData(t *testing.T) {
	store := newTestStore(t)
	newFileData := func(id string) models.Protected { return &models.FileData{Base: models.Base{ID: id}} }
	hooks := FileDataHooks(func(string) error { return nil })

	item := &models.SyncRecord{
		Action: models.SyncActionAdd,
		ItemID: "note1",
		Data:   json.RawMessage(`{}`),
	}
	require.NoError(t, Incoming(store, newFileData, item, hooks))

	rows, err := store.All("sync")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	var marker models.SyncRecord
	require.NoError(t, json.Unmarshal(rows[0], &marker))
	assert.Equal(t, models.SyncTypeFileIncoming, marker.Ty)
	assert.Equal(t, "note1", marker.ItemID)

	found, err := store.Get("files", "note1", &models.FileData{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileDataDeleteCallsRemoveFile(t *testing.T) {
	store := newTestStore(t)
	newFileData := func(id string) models.Protected { return &models.FileData{Base: models.Base{ID: id}} }

	var removedID string
	hooks := FileDataHooks(func(id string) error {
		removedID = id
		return nil
	})

	item := &models.SyncRecord{Action: models.SyncActionDelete, ItemID: "note1"}
	require.NoError(t, Incoming(store, newFileData, item, hooks))
	assert.Equal(t, "note1", removedID)
}
