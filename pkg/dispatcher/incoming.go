package dispatcher

import (
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/profile"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/syncmodel"
	"github.com/turtl/core/pkg/terror"
)

// ApplyIncoming applies one record fetched from the remote API to the local
// store and the in-memory profile. Unlike Dispatch (local mutation, outbound),
// this is the inbound half of the sync engine: a background downloader feeds
// it records in whatever order the API returns them.
func ApplyIncoming(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	switch item.Ty {
	case models.SyncTypeUser:
		return applyUser(store, pf, item)
	case models.SyncTypeSpace:
		return applySpace(store, pf, item)
	case models.SyncTypeBoard:
		return applyBoard(store, pf, item)
	case models.SyncTypeNote:
		return applyNote(store, pf, item)
	case models.SyncTypeFile:
		return applyFile(store, pf, item)
	}
	return terror.NotImplemented("incoming " + string(item.Ty))
}

func applyUser(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	hooks := syncmodel.DefaultHooks(models.SyncTypeUser)
	model := &models.User{}
	if err := syncmodel.Incoming(store, func(id string) models.Protected { model.ID = id; return model }, item, hooks); err != nil {
		return err
	}
	if item.Action != models.SyncActionDelete {
		pf.SetUser(model)
	}
	return nil
}

func applySpace(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	hooks := syncmodel.DefaultHooks(models.SyncTypeSpace)
	model := &models.Space{}
	if err := syncmodel.Incoming(store, func(id string) models.Protected { model.ID = id; return model }, item, hooks); err != nil {
		return err
	}
	if item.Action == models.SyncActionDelete {
		pf.RemoveSpace(item.ItemID)
		return nil
	}
	pf.PutSpace(model)
	return nil
}

func applyBoard(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	hooks := syncmodel.DefaultHooks(models.SyncTypeBoard)
	model := &models.Board{}
	if err := syncmodel.Incoming(store, func(id string) models.Protected { model.ID = id; return model }, item, hooks); err != nil {
		return err
	}
	if item.Action == models.SyncActionDelete {
		pf.RemoveBoard(item.ItemID)
		return nil
	}
	pf.PutBoard(model)
	return nil
}

func applyNote(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	hooks := syncmodel.DefaultHooks(models.SyncTypeNote)
	model := &models.Note{}
	if err := syncmodel.Incoming(store, func(id string) models.Protected { model.ID = id; return model }, item, hooks); err != nil {
		return err
	}
	if item.Action == models.SyncActionDelete {
		pf.RemoveNote(item.ItemID)
		return nil
	}
	pf.PutNote(model)
	return nil
}

// applyFile only ever arrives as a Delete in this tree (an add is driven by
// filestore.Save locally, never downloaded through the generic sync queue):
// it clears the owning note's HasFile flag. The on-disk ciphertext is left
// in place; the remove callback given to FileDataHooks here does nothing.
func applyFile(store storage.Store, pf *profile.Profile, item *models.SyncRecord) error {
	hooks := syncmodel.FileDataHooks(func(id string) error { return nil })
	model := &models.FileData{}
	if err := syncmodel.Incoming(store, func(id string) models.Protected { model.Base.ID = id; return model }, item, hooks); err != nil {
		return err
	}
	if item.Action != models.SyncActionDelete {
		return nil
	}
	note, ok := pf.NoteByID(item.ItemID)
	if !ok {
		return nil
	}
	clone := *note
	clone.HasFile = false
	clone.File = nil
	pf.PutNote(&clone)
	return nil
}
