package dispatcher

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/profile"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
	"github.com/turtl/core/pkg/thredder"
)

func newTestContext(t *testing.T) Context {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pool := thredder.New(2, func(thunk func()) { thunk() })
	t.Cleanup(pool.Shutdown)

	pf := profile.New(nil)
	masterKey, err := tcrypto.RandomKey()
	require.NoError(t, err)
	pf.SetMasterKey(masterKey)

	return Context{
		Store:   store,
		Profile: pf,
		Pool:    pool,
		UserID:  "user1",
		DataDir: t.TempDir(),
	}
}

func TestDispatchAddSpaceGrantsOwnerMembership(t *testing.T) {
	ctx := newTestContext(t)
	record := &models.SyncRecord{
		Action: models.SyncActionAdd,
		Ty:     models.SyncTypeSpace,
		Data:   json.RawMessage(`{"title":"my space"}`),
	}

	data, err := Dispatch(ctx, record)
	require.NoError(t, err)
	require.NotNil(t, data)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	spaceID, _ := out["id"].(string)
	require.NotEmpty(t, spaceID)

	role, ok := ctx.Profile.RoleInSpace(spaceID, "user1")
	require.True(t, ok)
	assert.EqualValues(t, "owner", role)

	space, ok := ctx.Profile.SpaceByID(spaceID)
	require.True(t, ok)
	assert.Equal(t, "my space", space.Title)
}

func TestDispatchEditSpaceRequiresMembership(t *testing.T) {
	ctx := newTestContext(t)
	record := &models.SyncRecord{
		Action: models.SyncActionEdit,
		Ty:     models.SyncTypeSpace,
		Data:   json.RawMessage(`{"id":"space1"}`),
	}

	_, err := Dispatch(ctx, record)
	assert.Error(t, err)
}

func TestDispatchAddNoteWritesVdbEntry(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profile.PutSpace(&models.Space{Base: models.Base{ID: "space1"}, UserID: "user1"})

	record := &models.SyncRecord{
		Action: models.SyncActionAdd,
		Ty:     models.SyncTypeNote,
		Data:   json.RawMessage(`{"space_id":"space1"}`),
	}

	data, err := Dispatch(ctx, record)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	noteID, _ := out["id"].(string)
	require.NotEmpty(t, noteID)

	space, ok := ctx.Profile.SpaceByID("space1")
	require.True(t, ok)
	_, ok = space.VdbQuery(noteID)
	assert.True(t, ok)

	assert.Equal(t, false, out["has_file"])
}

func TestDispatchEditNotePreservesKeyAndAppliesFields(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profile.PutSpace(&models.Space{Base: models.Base{ID: "space1"}, UserID: "user1"})

	addRecord := &models.SyncRecord{
		Action: models.SyncActionAdd,
		Ty:     models.SyncTypeNote,
		Data:   json.RawMessage(`{"space_id":"space1","title":"first","body":"draft"}`),
	}
	addData, err := Dispatch(ctx, addRecord)
	require.NoError(t, err)

	var added map[string]any
	require.NoError(t, json.Unmarshal(addData, &added))
	noteID, _ := added["id"].(string)
	require.NotEmpty(t, noteID)

	note, ok := ctx.Profile.NoteByID(noteID)
	require.True(t, ok)
	assert.Equal(t, "first", note.Title)
	assert.Equal(t, "draft", note.Body)
	originalKey := note.Key

	editRecord := &models.SyncRecord{
		Action: models.SyncActionEdit,
		Ty:     models.SyncTypeNote,
		Data:   json.RawMessage(`{"id":"` + noteID + `","space_id":"space1","title":"second","body":"final"}`),
	}
	_, err = Dispatch(ctx, editRecord)
	require.NoError(t, err)

	note, ok = ctx.Profile.NoteByID(noteID)
	require.True(t, ok)
	assert.Equal(t, "second", note.Title)
	assert.Equal(t, "final", note.Body)
	assert.Equal(t, originalKey, note.Key)
}

func TestDispatchDeleteNoteRemovesFromProfile(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profile.PutSpace(&models.Space{Base: models.Base{ID: "space1"}, UserID: "user1"})
	ctx.Profile.PutNote(&models.Note{Base: models.Base{ID: "note1"}, SpaceID: "space1"})

	record := &models.SyncRecord{Action: models.SyncActionDelete, Ty: models.SyncTypeNote, ItemID: "note1"}
	_, err := Dispatch(ctx, record)
	require.NoError(t, err)

	_, ok := ctx.Profile.NoteByID("note1")
	assert.False(t, ok)
}

func TestDispatchDeleteFileClearsNoteHasFile(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profile.PutSpace(&models.Space{Base: models.Base{ID: "space1"}, UserID: "user1"})
	ctx.Profile.PutNote(&models.Note{Base: models.Base{ID: "note1"}, SpaceID: "space1", HasFile: true, File: &models.File{Name: "x"}})

	record := &models.SyncRecord{Action: models.SyncActionDelete, Ty: models.SyncTypeFile, ItemID: "note1"}
	_, err := Dispatch(ctx, record)
	require.NoError(t, err)

	note, ok := ctx.Profile.NoteByID("note1")
	require.True(t, ok)
	assert.False(t, note.HasFile)
	assert.Nil(t, note.File)
}

func TestDispatchEditUserOnlyTouchesSettings(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Profile.SetUser(&models.User{Base: models.Base{ID: "user1"}, Username: "alice"})

	record := &models.SyncRecord{
		Action: models.SyncActionEdit,
		Ty:     models.SyncTypeUser,
		Data:   json.RawMessage(`{"settings":{"theme":"dark"}}`),
	}
	_, err := Dispatch(ctx, record)
	require.NoError(t, err)

	assert.Equal(t, "alice", ctx.Profile.CurrentUser().Username)
	assert.Equal(t, "dark", ctx.Profile.CurrentUser().Settings["theme"])
}

func TestDispatchAddUserIsRejected(t *testing.T) {
	ctx := newTestContext(t)
	record := &models.SyncRecord{Action: models.SyncActionAdd, Ty: models.SyncTypeUser, Data: json.RawMessage(`{}`)}
	_, err := Dispatch(ctx, record)
	require.Error(t, err)
	assert.True(t, terror.Is(err, terror.KindBadValue))
}

func TestDispatchUnknownCombinationIsNotImplemented(t *testing.T) {
	ctx := newTestContext(t)
	record := &models.SyncRecord{Action: models.SyncActionMoveSpace, Ty: models.SyncTypeUser}
	_, err := Dispatch(ctx, record)
	require.Error(t, err)
	assert.True(t, terror.Is(err, terror.KindNotImplemented))
}
