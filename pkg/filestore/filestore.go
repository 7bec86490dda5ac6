package filestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/profile"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/syncmodel"
	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
	"github.com/turtl/core/pkg/thredder"
)

const wildcard = "*"

func filename(userID, noteID string) string {
	if userID == "" {
		userID = wildcard
	}
	if noteID == "" {
		noteID = wildcard
	}
	return fmt.Sprintf("u_%s.n_%s.enc", userID, noteID)
}

func filesDir(dataDir string) string {
	return filepath.Join(dataDir, "files")
}

// NewFile returns the canonical path a file for (userID, noteID) should be
// written to. It does not create the file.
func NewFile(dataDir, userID, noteID string) string {
	return filepath.Join(filesDir(dataDir), filename(userID, noteID))
}

// FileFinderAll returns every on-disk path matching userID/noteID; an empty
// string wildcards that component.
func FileFinderAll(dataDir, userID, noteID string) ([]string, error) {
	pattern := filepath.Join(filesDir(dataDir), filename(userID, noteID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, terror.Wrap(err)
	}
	return matches, nil
}

// FileFinder returns the first path matching userID/noteID.
func FileFinder(dataDir, userID, noteID string) (string, error) {
	matches, err := FileFinderAll(dataDir, userID, noteID)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", terror.NotFound("file not found")
	}
	return matches[0], nil
}

// RemoveAll deletes every on-disk file belonging to noteID, across any
// user_id.
func RemoveAll(dataDir, _ string, noteID string) error {
	matches, err := FileFinderAll(dataDir, "", noteID)
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return terror.Wrap(err)
		}
	}
	return nil
}

// noteKey resolves a note's symmetric key via its owning space's vdb, by a
// direct SpaceByID lookup on note.SpaceID rather than a scan over every
// space in the profile.
func noteKey(pf *profile.Profile, note *models.Note) (tcrypto.Key, error) {
	space, ok := pf.SpaceByID(note.SpaceID)
	if !ok {
		return tcrypto.Key{}, terror.NotFound("space " + note.SpaceID)
	}
	encoded, ok := space.VdbQuery(note.ID)
	if !ok {
		return tcrypto.Key{}, terror.MissingData("note key for " + note.ID)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return tcrypto.Key{}, terror.Wrap(err)
	}
	if len(raw) != tcrypto.KeySize {
		return tcrypto.Key{}, terror.BadValue("note key has wrong length")
	}
	var key tcrypto.Key
	copy(key[:], raw)
	return key, nil
}

// Save encrypts fileData's bytes under the owning note's key and writes the
// ciphertext to disk, then queues a sync record for upload. fileData is left
// body-less: its Data slice is taken, not copied.
func Save(dataDir string, pool *thredder.Pool, pf *profile.Profile, store storage.Store, userID string, fileData *models.FileData, note *models.Note) error {
	if note.ID == "" {
		return terror.MissingField("note.id")
	}
	key, err := noteKey(pf, note)
	if err != nil {
		return err
	}

	data := fileData.TakeData()
	if data == nil {
		return terror.MissingField("FileData.data")
	}

	future := pool.Run(context.Background(), func() (thredder.Payload, error) {
		enc, err := tcrypto.Encrypt(key, data)
		if err != nil {
			return thredder.Payload{}, terror.CryptoFailure(err)
		}
		return thredder.BytesPayload(enc), nil
	})
	payload, err := future.Wait()
	if err != nil {
		return err
	}
	ciphertext, err := payload.AsBytes()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filesDir(dataDir), 0o700); err != nil {
		return terror.Wrap(err)
	}
	path := NewFile(dataDir, userID, note.ID)
	if err := os.WriteFile(path, ciphertext, 0o600); err != nil {
		return terror.Wrap(err)
	}
	metrics.FileBytesWritten.Add(float64(len(ciphertext)))

	fileData.Base.ID = note.ID
	fileData.NoteID = note.ID
	hooks := syncmodel.FileDataHooks(func(id string) error {
		return RemoveAll(dataDir, userID, id)
	})
	if _, err := syncmodel.Outgoing(fileData, models.SyncActionAdd, userID, store, false, hooks); err != nil {
		_ = os.Remove(path)
		return err
	}

	return nil
}

// LoadFile resolves note's key via its space's vdb, reads the ciphertext
// from disk, and decrypts it on the crypto pool.
func LoadFile(dataDir string, pool *thredder.Pool, pf *profile.Profile, note *models.Note) ([]byte, error) {
	key, err := noteKey(pf, note)
	if err != nil {
		return nil, err
	}

	path, err := FileFinder(dataDir, "", note.ID)
	if err != nil {
		return nil, err
	}
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, terror.Wrap(err)
	}
	metrics.FileBytesRead.Add(float64(len(enc)))

	future := pool.Run(context.Background(), func() (thredder.Payload, error) {
		plain, err := tcrypto.Decrypt(key, enc)
		if err != nil {
			return thredder.Payload{}, terror.CryptoFailure(err)
		}
		return thredder.BytesPayload(plain), nil
	})
	payload, err := future.Wait()
	if err != nil {
		return nil, err
	}
	return payload.AsBytes()
}
