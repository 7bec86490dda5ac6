package models

import "encoding/json"

// SyncAction classifies what happened to the model a SyncRecord describes.
type SyncAction string

const (
	SyncActionAdd       SyncAction = "add"
	SyncActionEdit      SyncAction = "edit"
	SyncActionDelete    SyncAction = "delete"
	SyncActionMoveSpace SyncAction = "move-space"
)

// SyncType names the model kind a SyncRecord carries.
type SyncType string

const (
	SyncTypeUser         SyncType = "user"
	SyncTypeSpace        SyncType = "space"
	SyncTypeBoard        SyncType = "board"
	SyncTypeNote         SyncType = "note"
	SyncTypeFile         SyncType = "file"
	SyncTypeFileOutgoing SyncType = "file:outgoing"
	// SyncTypeFileIncoming marks a file body not yet present locally; the
	// downloader that consumes these records is out of scope of this core.
	SyncTypeFileIncoming SyncType = "file:incoming"
)

// SyncRecord is an append-only queue item describing one mutation that needs
// remote propagation (or, for FileIncoming, a local download).
type SyncRecord struct {
	ID     string          `json:"id"`
	Action SyncAction      `json:"action"`
	Ty     SyncType        `json:"ty"`
	ItemID string          `json:"item_id"`
	UserID string          `json:"user_id"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (r *SyncRecord) TableName() string { return "sync" }
func (r *SyncRecord) GetID() string     { return r.ID }

// TakeData removes and returns r's Data, leaving r with a nil payload. Used
// at the one call site (SyncModel.Incoming) that must move the payload into
// a freshly parsed model without copying it, per the engine's "data is owned
// by exactly one record" rule.
func (r *SyncRecord) TakeData() json.RawMessage {
	data := r.Data
	r.Data = nil
	return data
}
