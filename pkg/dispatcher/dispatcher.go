package dispatcher

import (
	gocontext "context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/turtl/core/pkg/events"
	"github.com/turtl/core/pkg/filestore"
	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/permission"
	"github.com/turtl/core/pkg/profile"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/syncmodel"
	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
	"github.com/turtl/core/pkg/thredder"
)

// Context bundles the collaborators Dispatch needs.
type Context struct {
	Store   storage.Store
	Profile *profile.Profile
	Pool    *thredder.Pool
	Broker  *events.Broker
	UserID  string
	DataDir string
}

// Model is satisfied by every Protected type Dispatch can save or delete.
type Model interface {
	models.Protected
	Validate() error
}

// Dispatch routes one SyncRecord to its handler, following the
// action/type decision table: Add/Edit fan out by type and return the
// model's canonical stored value; Delete and MoveSpace fan out the same way
// but most return no value.
func Dispatch(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.DispatchDuration, string(record.Action), string(record.Ty))

	data, err := dispatch(ctx, record)
	if err != nil {
		metrics.DispatchErrorsTotal.WithLabelValues(terror.Wrap(err).Kind.String()).Inc()
	}
	return data, err
}

func dispatch(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	switch record.Action {
	case models.SyncActionAdd, models.SyncActionEdit:
		switch record.Ty {
		case models.SyncTypeUser:
			return dispatchUser(ctx, record)
		case models.SyncTypeSpace:
			return dispatchSpace(ctx, record)
		case models.SyncTypeBoard:
			return dispatchBoard(ctx, record)
		case models.SyncTypeNote:
			return dispatchNote(ctx, record)
		}
	case models.SyncActionDelete:
		switch record.Ty {
		case models.SyncTypeSpace:
			return nil, dispatchDeleteSpace(ctx, record)
		case models.SyncTypeBoard:
			return nil, dispatchDeleteBoard(ctx, record)
		case models.SyncTypeNote:
			return nil, dispatchDeleteNote(ctx, record)
		case models.SyncTypeFile:
			return nil, dispatchDeleteFile(ctx, record)
		}
	case models.SyncActionMoveSpace:
		switch record.Ty {
		case models.SyncTypeBoard:
			return dispatchMoveBoard(ctx, record)
		case models.SyncTypeNote:
			return dispatchMoveNote(ctx, record)
		}
	}
	return nil, terror.NotImplemented(string(record.Action) + "/" + string(record.Ty))
}

// saveOpts customizes SaveModel for the Add path of one model type.
type saveOpts struct {
	// onAdd installs a fresh key (and any type-specific vdb/keychain wiring)
	// on model. Only run when action == Add.
	onAdd func(model Model) error
	// keychainResident marks that, on Add, the generated key should also be
	// persisted into the acting user's keychain entry.
	keychainResident bool
}

// SaveModel runs the common save path shared by every model type: validate,
// assign an id and key on Add, resolve the key via the profile's keychain on
// Edit, wrap the key for the current user's key targets, offload
// serialization to the crypto pool, and queue the sync record.
func SaveModel[T Model](ctx Context, action models.SyncAction, model T, skipRemote bool, hooks syncmodel.Hooks, opts saveOpts) (json.RawMessage, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	if action == models.SyncActionAdd {
		if model.GetBase().ID == "" {
			model.GetBase().ID = uuid.NewString()
		}
		if opts.onAdd != nil {
			if err := opts.onAdd(model); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Profile.FindModelKey(model); err != nil {
		return nil, err
	}

	targets := ctx.Profile.KeyTargetsFor(ctx.UserID)
	if err := models.GenerateSubkeys(model, targets); err != nil {
		return nil, err
	}

	if action == models.SyncActionAdd && opts.keychainResident {
		entry, err := ctx.Profile.PutKeychainEntry(model.GetID(), string(hooks.SyncType(model, action)), model.GetBase().Key)
		if err != nil {
			return nil, err
		}
		if err := ctx.Store.Save(&entry); err != nil {
			return nil, err
		}
	}

	future := ctx.Pool.Run(gocontext.Background(), func() (thredder.Payload, error) {
		data, err := models.Serialize(model)
		if err != nil {
			return thredder.Payload{}, err
		}
		return thredder.BytesPayload(data), nil
	})
	if _, err := future.Wait(); err != nil {
		return nil, err
	}

	record, err := syncmodel.Outgoing(model, action, ctx.UserID, ctx.Store, skipRemote, hooks)
	if err != nil {
		return nil, err
	}
	if record != nil && ctx.Broker != nil {
		ctx.Broker.Publish(events.SyncUpdate, record)
	}

	return models.DataForStorage(model)
}

// DeleteModel runs the common delete path: drop the keychain entry if this
// type keeps one, then queue the delete.
func DeleteModel[T Model](ctx Context, id string, newModel func(id string) T, hooks syncmodel.Hooks, keychainResident bool) error {
	model := newModel(id)

	if keychainResident {
		ctx.Profile.RemoveKeychainEntry(id)
		if err := ctx.Store.Delete(&models.KeychainEntry{SubjectID: id}); err != nil {
			return err
		}
	}

	record, err := syncmodel.Outgoing(model, models.SyncActionDelete, ctx.UserID, ctx.Store, false, hooks)
	if err != nil {
		return err
	}
	if record != nil && ctx.Broker != nil {
		ctx.Broker.Publish(events.SyncUpdate, record)
	}
	return nil
}

func dispatchUser(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	if record.Action != models.SyncActionEdit {
		return nil, terror.BadValue("user may only be edited, never added")
	}

	existing := ctx.Profile.CurrentUser()
	if existing == nil {
		return nil, terror.MissingData("current user")
	}

	var payload struct {
		Settings map[string]any `json:"settings"`
	}
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return nil, terror.Wrap(err)
	}

	clone := *existing
	clone.Settings = payload.Settings

	data, err := SaveModel(ctx, models.SyncActionEdit, &clone, false, syncmodel.DefaultHooks(models.SyncTypeUser), saveOpts{})
	if err != nil {
		return nil, err
	}
	ctx.Profile.SetUser(&clone)
	return data, nil
}

func dispatchSpace(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(record.Data, &fields); err != nil {
		return nil, terror.Wrap(err)
	}

	var opts saveOpts
	var model *models.Space

	if record.Action == models.SyncActionAdd {
		model = &models.Space{}
		if err := applyFields(model, fields); err != nil {
			return nil, err
		}
		model.UserID = ctx.UserID
		opts.keychainResident = true
		opts.onAdd = func(m Model) error {
			key, err := tcrypto.RandomKey()
			if err != nil {
				return terror.CryptoFailure(err)
			}
			m.GetBase().Key = key
			return nil
		}
	} else {
		spaceID, _ := fields["id"].(string)
		if err := permission.Check(ctx.Profile, spaceID, ctx.UserID, permission.EditSpace); err != nil {
			return nil, err
		}
		existing, ok := ctx.Profile.SpaceByID(spaceID)
		if !ok {
			return nil, terror.NotFound("space " + spaceID)
		}
		clone := *existing
		if err := applyFields(&clone, fields); err != nil {
			return nil, err
		}
		clone.UserID = existing.UserID
		model = &clone
	}

	data, err := SaveModel(ctx, record.Action, model, false, syncmodel.DefaultHooks(models.SyncTypeSpace), opts)
	if err != nil {
		return nil, err
	}
	ctx.Profile.PutSpace(model)
	return data, nil
}

func dispatchBoard(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(record.Data, &fields); err != nil {
		return nil, terror.Wrap(err)
	}

	var opts saveOpts
	var model *models.Board

	if record.Action == models.SyncActionAdd {
		model = &models.Board{}
		if err := applyFields(model, fields); err != nil {
			return nil, err
		}
		model.UserID = ctx.UserID
		if err := permission.Check(ctx.Profile, model.SpaceID, ctx.UserID, permission.AddBoard); err != nil {
			return nil, err
		}
		opts.keychainResident = true
		opts.onAdd = func(m Model) error {
			key, err := tcrypto.RandomKey()
			if err != nil {
				return terror.CryptoFailure(err)
			}
			m.GetBase().Key = key
			return nil
		}
	} else {
		boardID, _ := fields["id"].(string)
		existing, ok := ctx.Profile.BoardByID(boardID)
		if !ok {
			return nil, terror.NotFound("board " + boardID)
		}
		if err := permission.Check(ctx.Profile, existing.SpaceID, ctx.UserID, permission.EditBoard); err != nil {
			return nil, err
		}
		clone := *existing
		if err := applyFields(&clone, fields); err != nil {
			return nil, err
		}
		clone.UserID = existing.UserID
		model = &clone
	}

	data, err := SaveModel(ctx, record.Action, model, false, syncmodel.DefaultHooks(models.SyncTypeBoard), opts)
	if err != nil {
		return nil, err
	}
	ctx.Profile.PutBoard(model)
	return data, nil
}

func dispatchNote(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	var envelope struct {
		File *struct {
			FileData *json.RawMessage `json:"filedata"`
		} `json:"file"`
	}
	if err := json.Unmarshal(record.Data, &envelope); err != nil {
		return nil, terror.Wrap(err)
	}

	var fileData *models.FileData
	if envelope.File != nil && envelope.File.FileData != nil {
		var fileFields map[string]any
		if err := json.Unmarshal(*envelope.File.FileData, &fileFields); err != nil {
			return nil, terror.Wrap(err)
		}
		fileData = &models.FileData{}
		if err := applyFields(fileData, fileFields); err != nil {
			return nil, err
		}
	}

	var fields map[string]any
	if err := json.Unmarshal(record.Data, &fields); err != nil {
		return nil, terror.Wrap(err)
	}

	var opts saveOpts
	var model *models.Note

	if record.Action == models.SyncActionAdd {
		model = &models.Note{}
		if err := applyFields(model, fields); err != nil {
			return nil, err
		}
		model.UserID = ctx.UserID
		if err := permission.Check(ctx.Profile, model.SpaceID, ctx.UserID, permission.AddNote); err != nil {
			return nil, err
		}
		opts.onAdd = func(m Model) error {
			key, err := tcrypto.RandomKey()
			if err != nil {
				return terror.CryptoFailure(err)
			}
			m.GetBase().Key = key
			if space, ok := ctx.Profile.SpaceByID(model.SpaceID); ok {
				space.VdbPut(m.GetID(), encodeKey(key))
			}
			return nil
		}
	} else {
		noteID, _ := fields["id"].(string)
		existing, ok := ctx.Profile.NoteByID(noteID)
		if !ok {
			return nil, terror.NotFound("note " + noteID)
		}
		if err := permission.Check(ctx.Profile, existing.SpaceID, ctx.UserID, permission.EditNote); err != nil {
			return nil, err
		}
		clone := *existing
		if err := applyFields(&clone, fields); err != nil {
			return nil, err
		}
		clone.UserID = existing.UserID
		model = &clone
	}
	model.HasFile = false
	model.Mod = time.Now().Unix()

	data, err := SaveModel(ctx, record.Action, model, false, syncmodel.DefaultHooks(models.SyncTypeNote), opts)
	if err != nil {
		return nil, err
	}
	ctx.Profile.PutNote(model)

	if fileData != nil {
		if err := filestore.Save(ctx.DataDir, ctx.Pool, ctx.Profile, ctx.Store, ctx.UserID, fileData, model); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func dispatchDeleteSpace(ctx Context, record *models.SyncRecord) error {
	space, ok := ctx.Profile.SpaceByID(record.ItemID)
	if !ok {
		return terror.NotFound("space " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, space.ID, ctx.UserID, permission.DeleteSpace); err != nil {
		return err
	}

	newSpace := func(id string) *models.Space { return &models.Space{Base: models.Base{ID: id}} }
	if err := DeleteModel(ctx, record.ItemID, newSpace, syncmodel.DefaultHooks(models.SyncTypeSpace), true); err != nil {
		return err
	}
	ctx.Profile.RemoveSpace(record.ItemID)
	return nil
}

func dispatchDeleteBoard(ctx Context, record *models.SyncRecord) error {
	board, ok := ctx.Profile.BoardByID(record.ItemID)
	if !ok {
		return terror.NotFound("board " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, board.SpaceID, ctx.UserID, permission.DeleteBoard); err != nil {
		return err
	}

	newBoard := func(id string) *models.Board { return &models.Board{Base: models.Base{ID: id}} }
	if err := DeleteModel(ctx, record.ItemID, newBoard, syncmodel.DefaultHooks(models.SyncTypeBoard), true); err != nil {
		return err
	}
	ctx.Profile.RemoveBoard(record.ItemID)
	return nil
}

func dispatchDeleteNote(ctx Context, record *models.SyncRecord) error {
	note, ok := ctx.Profile.NoteByID(record.ItemID)
	if !ok {
		return terror.NotFound("note " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, note.SpaceID, ctx.UserID, permission.DeleteNote); err != nil {
		return err
	}

	newNote := func(id string) *models.Note { return &models.Note{Base: models.Base{ID: id}} }
	if err := DeleteModel(ctx, record.ItemID, newNote, syncmodel.DefaultHooks(models.SyncTypeNote), false); err != nil {
		return err
	}
	ctx.Profile.RemoveNote(record.ItemID)
	return nil
}

func dispatchDeleteFile(ctx Context, record *models.SyncRecord) error {
	note, ok := ctx.Profile.NoteByID(record.ItemID)
	if !ok {
		return terror.NotFound("note " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, note.SpaceID, ctx.UserID, permission.EditNote); err != nil {
		return err
	}

	newFileData := func(id string) *models.FileData { return &models.FileData{Base: models.Base{ID: id}} }
	if err := DeleteModel(ctx, record.ItemID, newFileData, noteFileHooks(ctx), false); err != nil {
		return err
	}

	note.HasFile = false
	note.File = nil
	ctx.Profile.PutNote(note)
	return ctx.Store.Save(note)
}

func dispatchMoveBoard(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	var payload struct {
		SpaceID string `json:"space_id"`
	}
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return nil, terror.Wrap(err)
	}

	board, ok := ctx.Profile.BoardByID(record.ItemID)
	if !ok {
		return nil, terror.NotFound("board " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, board.SpaceID, ctx.UserID, permission.DeleteBoard); err != nil {
		return nil, err
	}
	if err := permission.Check(ctx.Profile, payload.SpaceID, ctx.UserID, permission.AddBoard); err != nil {
		return nil, err
	}

	board.SpaceID = payload.SpaceID
	board.GetBase().Keys = nil

	data, err := SaveModel(ctx, models.SyncActionEdit, board, false, syncmodel.DefaultHooks(models.SyncTypeBoard), saveOpts{})
	if err != nil {
		return nil, err
	}
	ctx.Profile.PutBoard(board)
	return data, nil
}

func dispatchMoveNote(ctx Context, record *models.SyncRecord) (json.RawMessage, error) {
	var payload struct {
		SpaceID string `json:"space_id"`
		BoardID string `json:"board_id"`
	}
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return nil, terror.Wrap(err)
	}

	note, ok := ctx.Profile.NoteByID(record.ItemID)
	if !ok {
		return nil, terror.NotFound("note " + record.ItemID)
	}
	if err := permission.Check(ctx.Profile, note.SpaceID, ctx.UserID, permission.DeleteNote); err != nil {
		return nil, err
	}
	if err := permission.Check(ctx.Profile, payload.SpaceID, ctx.UserID, permission.AddNote); err != nil {
		return nil, err
	}

	oldSpaceID := note.SpaceID
	note.SpaceID = payload.SpaceID
	if payload.BoardID != "" {
		note.BoardID = payload.BoardID
	}
	note.GetBase().Keys = nil

	data, err := SaveModel(ctx, models.SyncActionEdit, note, false, syncmodel.DefaultHooks(models.SyncTypeNote), saveOpts{})
	if err != nil {
		return nil, err
	}
	ctx.Profile.PutNote(note)

	if dest, ok := ctx.Profile.SpaceByID(payload.SpaceID); ok {
		dest.VdbPut(note.ID, encodeKey(note.Key))
	}
	if src, ok := ctx.Profile.SpaceByID(oldSpaceID); ok {
		delete(src.Vdb, note.ID)
	}

	return data, nil
}
