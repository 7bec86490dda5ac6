package storage

import (
	"encoding/json"

	"github.com/turtl/core/pkg/models"
)

// Store defines the local persistence interface. Implementations are
// expected to be safe for concurrent use.
type Store interface {
	// Save upserts item under its table/id.
	Save(item models.Storable) error
	// Delete removes item's row, identified by table/id. Idempotent.
	Delete(item models.Storable) error
	// Get loads the row at (table, id) into out. ok is false if no row exists.
	Get(table, id string, out any) (ok bool, err error)
	// All returns every row in table as raw JSON, in bucket iteration order.
	All(table string) ([]json.RawMessage, error)

	Close() error
}
