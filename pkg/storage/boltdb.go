package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/terror"
	bolt "go.etcd.io/bbolt"
)

var buckets = [][]byte{
	[]byte("spaces"),
	[]byte("boards"),
	[]byte("notes"),
	[]byte("files"),
	[]byte("sync"),
	[]byte("keychain"),
	[]byte("user"),
}

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at <dataDir>/turtlcore.db
// and ensures every table's bucket exists.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "turtlcore.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("storage: create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save upserts item into its declared table.
func (s *BoltStore) Save(item models.Storable) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "save", item.TableName())

	data, err := json.Marshal(item)
	if err != nil {
		return terror.Wrap(err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(item.TableName()))
		if b == nil {
			return terror.NotFound(fmt.Sprintf("table %q", item.TableName()))
		}
		return b.Put([]byte(item.GetID()), data)
	})
}

// Delete removes item's row. Idempotent: deleting a missing key is not an
// error.
func (s *BoltStore) Delete(item models.Storable) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "delete", item.TableName())

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(item.TableName()))
		if b == nil {
			return terror.NotFound(fmt.Sprintf("table %q", item.TableName()))
		}
		return b.Delete([]byte(item.GetID()))
	})
}

// Get loads the row at (table, id) into out via json.Unmarshal.
func (s *BoltStore) Get(table, id string, out any) (bool, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "get", table)

	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return terror.NotFound(fmt.Sprintf("table %q", table))
		}
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, out)
	})
	return found, err
}

// All returns every row in table as raw JSON values.
func (s *BoltStore) All(table string) ([]json.RawMessage, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "all", table)

	var rows []json.RawMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return terror.NotFound(fmt.Sprintf("table %q", table))
		}
		return b.ForEach(func(k, v []byte) error {
			row := make(json.RawMessage, len(v))
			copy(row, v)
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}
