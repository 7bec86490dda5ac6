package dispatcher

import (
	"encoding/base64"

	"github.com/turtl/core/pkg/filestore"
	"github.com/turtl/core/pkg/syncmodel"
	"github.com/turtl/core/pkg/tcrypto"
)

func encodeKey(key tcrypto.Key) string {
	return base64.StdEncoding.EncodeToString(key[:])
}

// applyFields overlays the public and private fields present in payload
// onto model, leaving any field payload omits at whatever value model
// already carries. This is the only path that installs a model's private
// (encrypted) fields from an incoming Add/Edit payload; a plain
// json.Unmarshal into the typed struct can never do it, since every private
// field is tagged json:"-".
func applyFields(model Model, payload map[string]any) error {
	if id, ok := payload["id"].(string); ok {
		model.GetBase().ID = id
	}
	if err := model.ApplyPublic(payload); err != nil {
		return err
	}
	return model.ApplyPrivate(payload)
}

// noteFileHooks builds the FileData hooks for a note's attached file,
// wiring FileDataHooks' on-delete callback to this context's data directory.
func noteFileHooks(ctx Context) syncmodel.Hooks {
	return syncmodel.FileDataHooks(func(id string) error {
		return filestore.RemoveAll(ctx.DataDir, ctx.UserID, id)
	})
}
