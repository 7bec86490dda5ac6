package syncmodel

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/terror"
)

// Hooks customizes the shared Incoming/Outgoing algorithm for one model
// type. The zero value is never used directly; build one with DefaultHooks
// and override individual fields the way FileDataHooks does.
type Hooks struct {
	// DBSave persists model locally. syncItem is nil when called from
	// Outgoing (a local mutation, not yet wrapped in a record).
	DBSave func(store storage.Store, model models.Protected, syncItem *models.SyncRecord) error
	// DBDelete removes model's local row (and whatever side effects the
	// type needs, e.g. FileData also removing its ciphertext on disk).
	DBDelete func(store storage.Store, model models.Protected, syncItem *models.SyncRecord) error
	// SkipIncomingSync lets a type veto applying an incoming record
	// entirely (e.g. a conflict-resolution rule not modeled here).
	SkipIncomingSync func(syncItem *models.SyncRecord) bool
	// Transform mutates an incoming record's Data before it's parsed into
	// the model, e.g. to paper over a server-side field rename.
	Transform func(syncItem *models.SyncRecord) error
	// SyncType picks the SyncType tag an outgoing record is stamped with.
	SyncType func(model models.Protected, action models.SyncAction) models.SyncType
}

// DefaultHooks returns the common behavior: DBSave/DBDelete call straight
// through to the store, Transform is a no-op, nothing is ever skipped, and
// every outgoing record is tagged ty.
func DefaultHooks(ty models.SyncType) Hooks {
	return Hooks{
		DBSave: func(store storage.Store, model models.Protected, _ *models.SyncRecord) error {
			return store.Save(model)
		},
		DBDelete: func(store storage.Store, model models.Protected, _ *models.SyncRecord) error {
			return store.Delete(model)
		},
		SkipIncomingSync: func(*models.SyncRecord) bool { return false },
		Transform:        func(*models.SyncRecord) error { return nil },
		SyncType:         func(models.Protected, models.SyncAction) models.SyncType { return ty },
	}
}

type incomingPayload struct {
	Missing bool `json:"missing"`
}

// Incoming applies a record fetched from the remote API to the local store.
// newModel constructs a zero-value model stamped with item.ItemID, used both
// as the delete target and as the parse destination for an add/edit.
func Incoming(store storage.Store, newModel func(id string) models.Protected, item *models.SyncRecord, hooks Hooks) error {
	if hooks.SkipIncomingSync(item) {
		return nil
	}

	model := newModel(item.ItemID)

	if item.Action == models.SyncActionDelete {
		return hooks.DBDelete(store, model, item)
	}

	if len(item.Data) == 0 {
		return terror.MissingField("data")
	}

	var payload incomingPayload
	_ = json.Unmarshal(item.Data, &payload)
	if payload.Missing {
		return nil
	}

	if err := hooks.Transform(item); err != nil {
		return err
	}

	data := item.TakeData()
	if err := json.Unmarshal(data, model); err != nil {
		return terror.Wrap(err)
	}

	if err := hooks.DBSave(store, model, item); err != nil {
		return err
	}

	canonical, err := models.DataForStorage(model)
	if err != nil {
		return err
	}
	item.Data = canonical
	metrics.SyncRecordsApplied.WithLabelValues(string(item.Action), string(item.Ty)).Inc()
	return nil
}

// Outgoing persists a local mutation and, unless skipRemote is set, queues a
// SyncRecord describing it for remote propagation. Returns the queued record
// (nil if skipRemote).
func Outgoing(model models.Protected, action models.SyncAction, userID string, store storage.Store, skipRemote bool, hooks Hooks) (*models.SyncRecord, error) {
	var err error
	if action == models.SyncActionDelete {
		err = hooks.DBDelete(store, model, nil)
	} else {
		err = hooks.DBSave(store, model, nil)
	}
	if err != nil {
		return nil, err
	}

	if skipRemote {
		return nil, nil
	}

	record := &models.SyncRecord{
		ID:     uuid.NewString(),
		Action: action,
		Ty:     hooks.SyncType(model, action),
		ItemID: model.GetID(),
		UserID: userID,
	}

	if action == models.SyncActionDelete {
		record.Data, err = json.Marshal(map[string]string{"id": model.GetID()})
	} else {
		record.Data, err = models.DataForStorage(model)
	}
	if err != nil {
		return nil, terror.Wrap(err)
	}

	if err := store.Save(record); err != nil {
		return nil, err
	}
	metrics.SyncRecordsQueued.WithLabelValues(string(action), string(record.Ty)).Inc()
	return record, nil
}
