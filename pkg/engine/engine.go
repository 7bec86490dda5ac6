package engine

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/turtl/core/pkg/config"
	"github.com/turtl/core/pkg/dispatcher"
	"github.com/turtl/core/pkg/events"
	"github.com/turtl/core/pkg/filestore"
	"github.com/turtl/core/pkg/loop"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/profile"
	"github.com/turtl/core/pkg/storage"
	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
	"github.com/turtl/core/pkg/thredder"
)

// Messenger is the IPC boundary to the UI. A real transport frames and ships
// events over some wire; the CLI and tests instead register directly on
// Engine's events.Broker and never need a concrete Messenger.
type Messenger interface {
	Publish(event string, payload any) error
}

// APIClient is the remote sync API boundary. No concrete HTTP client lives
// in this tree, and nothing in it calls Do.
type APIClient interface {
	Do(ctx context.Context, method, path string, body []byte) (status int, respBody []byte, err error)
}

// Uploader drains the local sync queue (table "sync") and pushes each
// record to the remote API, retrying on transient failure. Unimplemented
// here; it runs as a goroutine outside this tree that feeds results back to
// the engine by pushing a thunk onto its main loop.
type Uploader interface {
	Upload(ctx context.Context, record *models.SyncRecord) error
}

// Engine is the single handle a CLI or embedder holds. It owns the local
// store, the crypto worker pool, the single-writer main loop, the in-memory
// profile, and the event broker. Local mutations go through Dispatch and
// SaveFile, records from the remote API through ApplyIncoming.
type Engine struct {
	cfg    *config.Config
	store  storage.Store
	pool   *thredder.Pool
	loop   *loop.Loop[*Engine]
	userID string

	Profile *profile.Profile
	Broker  *events.Broker
}

// New opens the local store at cfg.Data.Dir, starts the crypto pool wired to
// deliver results back onto the main loop, and loads whatever profile state
// (user, spaces, boards, notes, keychain) already exists on disk.
func New(cfg *config.Config) (*Engine, error) {
	store, err := storage.NewBoltStore(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker()
	e := &Engine{
		cfg:     cfg,
		store:   store,
		loop:    loop.New[*Engine](64),
		Profile: profile.New(broker),
		Broker:  broker,
	}
	e.pool = thredder.New(cfg.Workers.Crypto, func(thunk func()) {
		e.loop.Push(func(*Engine) { thunk() })
	})

	if err := e.loadProfile(); err != nil {
		e.pool.Shutdown()
		_ = store.Close()
		return nil, err
	}
	return e, nil
}

// loadProfile rehydrates the in-memory profile from whatever rows already
// exist in the store, a reconcile-on-boot pass run once before Start.
func (e *Engine) loadProfile() error {
	users, err := e.store.All("user")
	if err != nil {
		return err
	}
	for _, raw := range users {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return terror.Wrap(err)
		}
		e.Profile.SetUser(&u)
		e.userID = u.ID
	}

	spaces, err := e.store.All("spaces")
	if err != nil {
		return err
	}
	for _, raw := range spaces {
		var s models.Space
		if err := json.Unmarshal(raw, &s); err != nil {
			return terror.Wrap(err)
		}
		e.Profile.PutSpace(&s)
	}

	boards, err := e.store.All("boards")
	if err != nil {
		return err
	}
	for _, raw := range boards {
		var b models.Board
		if err := json.Unmarshal(raw, &b); err != nil {
			return terror.Wrap(err)
		}
		e.Profile.PutBoard(&b)
	}

	notes, err := e.store.All("notes")
	if err != nil {
		return err
	}
	for _, raw := range notes {
		var n models.Note
		if err := json.Unmarshal(raw, &n); err != nil {
			return terror.Wrap(err)
		}
		e.Profile.PutNote(&n)
	}

	entries, err := e.store.All("keychain")
	if err != nil {
		return err
	}
	for _, raw := range entries {
		var entry models.KeychainEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return terror.Wrap(err)
		}
		e.Profile.LoadKeychainEntry(entry)
	}

	return nil
}

// Login installs the logged-in user and their master key, assigning the
// user a fresh id if it has none and persisting the user row, then
// rehydrates every note loaded by loadProfile with its in-memory key, vdb
// entry and decrypted private fields. loadProfile runs during New, before
// the master key is known, so notes come back from disk with a zero-value
// key; this is the first point key material can be recovered from their
// own keyrefs. Key derivation from the user's passphrase and the remote
// authentication handshake both live outside this tree.
func (e *Engine) Login(user *models.User, masterKey tcrypto.Key) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	e.Profile.SetMasterKey(masterKey)
	e.Profile.SetUser(user)
	e.userID = user.ID
	if err := e.Profile.RehydrateNoteKeys(user.ID); err != nil {
		return err
	}
	return e.store.Save(user)
}

// Start launches the broker's broadcast goroutine and the main loop's
// receive goroutine. Returns once both are running; it does not block.
func (e *Engine) Start() {
	e.Broker.Start()
	go e.loop.Run(e)
}

// Shutdown drains the crypto pool, unblocks the main loop, stops the
// broker, and closes the store, in that order so no goroutine observes a
// closed store.
func (e *Engine) Shutdown() error {
	e.Broker.Publish(events.AppShutdown, nil)
	e.pool.Shutdown()
	e.loop.Shutdown()
	e.Broker.Stop()
	return e.store.Close()
}

// dispatchContext builds the dispatcher.Context this Engine's Dispatch and
// file operations delegate to.
func (e *Engine) dispatchContext() dispatcher.Context {
	return dispatcher.Context{
		Store:   e.store,
		Profile: e.Profile,
		Pool:    e.pool,
		Broker:  e.Broker,
		UserID:  e.userID,
		DataDir: e.cfg.Data.Dir,
	}
}

// Dispatch is the entrypoint every local mutation (UI request or CLI
// command) funnels through.
func (e *Engine) Dispatch(record *models.SyncRecord) (json.RawMessage, error) {
	return dispatcher.Dispatch(e.dispatchContext(), record)
}

// ApplyIncoming applies one record fetched from the remote API (via an
// Uploader/downloader pair running outside this tree) to the local store
// and profile.
func (e *Engine) ApplyIncoming(record *models.SyncRecord) error {
	return dispatcher.ApplyIncoming(e.store, e.Profile, record)
}

// SaveFile encrypts and writes fileData to disk under note's key, and
// queues it for upload.
func (e *Engine) SaveFile(fileData *models.FileData, note *models.Note) error {
	return filestore.Save(e.cfg.Data.Dir, e.pool, e.Profile, e.store, e.userID, fileData, note)
}

// LoadFile reads and decrypts the on-disk ciphertext belonging to note.
func (e *Engine) LoadFile(note *models.Note) ([]byte, error) {
	return filestore.LoadFile(e.cfg.Data.Dir, e.pool, e.Profile, note)
}
