package syncmodel

import (
	"github.com/google/uuid"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/storage"
)

// FileDataHooks builds the Hooks FileData uses in place of DefaultHooks.
// removeFile is called on delete to drop the ciphertext pkg/filestore wrote
// to disk; FileDataHooks takes it as a parameter rather than importing
// pkg/filestore directly, so the dependency runs filestore -> syncmodel and
// not the other way.
//
// FileData never stores its bytes in the KV store: an incoming add/edit
// only leaves behind a FileIncoming marker record for the (out of scope)
// downloader to pick up, and an outgoing add/edit is a no-op because
// pkg/filestore.Save already wrote the ciphertext before calling Outgoing.
func FileDataHooks(removeFile func(id string) error) Hooks {
	return Hooks{
		DBSave: func(store storage.Store, model models.Protected, syncItem *models.SyncRecord) error {
			if syncItem == nil {
				return nil
			}
			marker := &models.SyncRecord{
				ID:     uuid.NewString(),
				Action: syncItem.Action,
				Ty:     models.SyncTypeFileIncoming,
				ItemID: model.GetID(),
				UserID: syncItem.UserID,
			}
			return store.Save(marker)
		},
		DBDelete: func(store storage.Store, model models.Protected, _ *models.SyncRecord) error {
			return removeFile(model.GetID())
		},
		SkipIncomingSync: func(*models.SyncRecord) bool { return false },
		Transform:        func(*models.SyncRecord) error { return nil },
		SyncType: func(_ models.Protected, action models.SyncAction) models.SyncType {
			if action == models.SyncActionDelete {
				return models.SyncTypeFile
			}
			return models.SyncTypeFileOutgoing
		},
	}
}
