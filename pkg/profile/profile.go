package profile

import (
	"encoding/base64"
	"sync"

	"github.com/turtl/core/pkg/events"
	"github.com/turtl/core/pkg/models"
	"github.com/turtl/core/pkg/permission"
	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
)

// Profile is the engine's in-memory working set for the logged-in user.
type Profile struct {
	mu sync.RWMutex

	User   *models.User
	Spaces []*models.Space
	Boards []*models.Board
	Notes  []*models.Note

	masterKey tcrypto.Key
	keychain  map[string]models.KeychainEntry
	members   map[string]map[string]permission.Role // spaceID -> userID -> role

	broker *events.Broker
}

// New constructs an empty profile. broker may be nil in tests that don't
// care about notifications.
func New(broker *events.Broker) *Profile {
	return &Profile{
		keychain: make(map[string]models.KeychainEntry),
		members:  make(map[string]map[string]permission.Role),
		broker:   broker,
	}
}

// SetMasterKey installs the user's master key, derived elsewhere from their
// passphrase. Object keys are wrapped/unwrapped under this key via the
// keychain.
func (p *Profile) SetMasterKey(key tcrypto.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterKey = key
}

// CurrentUser returns the logged-in user, or nil before one has been set.
func (p *Profile) CurrentUser() *models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.User
}

// SetUser installs the logged-in user and notifies listeners.
func (p *Profile) SetUser(u *models.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.User = u
	p.notifyLocked()
}

// --- Spaces ---

func (p *Profile) SpaceByID(id string) (*models.Space, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.Spaces {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// PutSpace upserts a space by id and grants its owner the owner role.
func (p *Profile) PutSpace(s *models.Space) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.UserID != "" {
		p.setMemberLocked(s.ID, s.UserID, permission.RoleOwner)
	}
	for i, existing := range p.Spaces {
		if existing.ID == s.ID {
			p.Spaces[i] = s
			p.notifyLocked()
			return
		}
	}
	p.Spaces = append(p.Spaces, s)
	p.notifyLocked()
}

func (p *Profile) RemoveSpace(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.Spaces {
		if s.ID == id {
			p.Spaces = append(p.Spaces[:i], p.Spaces[i+1:]...)
			delete(p.members, id)
			p.notifyLocked()
			return
		}
	}
}

// --- Boards ---

func (p *Profile) BoardByID(id string) (*models.Board, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.Boards {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (p *Profile) PutBoard(b *models.Board) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.Boards {
		if existing.ID == b.ID {
			p.Boards[i] = b
			p.notifyLocked()
			return
		}
	}
	p.Boards = append(p.Boards, b)
	p.notifyLocked()
}

func (p *Profile) RemoveBoard(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.Boards {
		if b.ID == id {
			p.Boards = append(p.Boards[:i], p.Boards[i+1:]...)
			p.notifyLocked()
			return
		}
	}
}

// --- Notes ---

func (p *Profile) NoteByID(id string) (*models.Note, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, n := range p.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

func (p *Profile) PutNote(n *models.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.Notes {
		if existing.ID == n.ID {
			p.Notes[i] = n
			p.notifyLocked()
			return
		}
	}
	p.Notes = append(p.Notes, n)
	p.notifyLocked()
}

func (p *Profile) RemoveNote(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, n := range p.Notes {
		if n.ID == id {
			p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
			p.notifyLocked()
			return
		}
	}
}

func (p *Profile) notifyLocked() {
	if p.broker != nil {
		p.broker.Publish(events.ProfileUpdate, nil)
	}
}

// --- Membership / permission.Membership ---

// RoleInSpace implements permission.Membership.
func (p *Profile) RoleInSpace(spaceID, userID string) (permission.Role, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	roles, ok := p.members[spaceID]
	if !ok {
		return "", false
	}
	role, ok := roles[userID]
	return role, ok
}

func (p *Profile) SetMember(spaceID, userID string, role permission.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setMemberLocked(spaceID, userID, role)
}

func (p *Profile) setMemberLocked(spaceID, userID string, role permission.Role) {
	if p.members[spaceID] == nil {
		p.members[spaceID] = make(map[string]permission.Role)
	}
	p.members[spaceID][userID] = role
}

// --- Keychain ---

// FindModelKey installs model's key if it's missing. The user's own key is
// the profile's master key; any other model's key is found by unwrapping
// the keychain entry for model's id under the master key.
func (p *Profile) FindModelKey(model models.Protected) error {
	if models.HasKey(model) {
		return nil
	}
	if user, ok := model.(*models.User); ok {
		p.mu.RLock()
		user.Key = p.masterKey
		p.mu.RUnlock()
		return nil
	}
	p.mu.RLock()
	entry, ok := p.keychain[model.GetID()]
	p.mu.RUnlock()
	if !ok {
		return terror.MissingData("keychain entry for " + model.GetID())
	}
	key, err := tcrypto.UnwrapKey(p.masterKey, entry.EncryptedKey)
	if err != nil {
		return terror.CryptoFailure(err)
	}
	model.GetBase().Key = key
	return nil
}

// KeyTargetsFor returns the keyrefs a freshly created object's key should be
// wrapped for. This client only ever shares keys with the owning user's own
// master key; multi-user sharing is out of scope.
func (p *Profile) KeyTargetsFor(userID string) []models.KeyTarget {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return []models.KeyTarget{{SubjectID: userID, SubjectType: "user", Key: p.masterKey}}
}

// PutKeychainEntry wraps key under the profile's master key and stores the
// result in the in-memory keychain under subjectID. Returns the entry so the
// caller can persist it to storage.Store.
func (p *Profile) PutKeychainEntry(subjectID, subjectType string, key tcrypto.Key) (models.KeychainEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	wrapped, err := tcrypto.WrapKey(p.masterKey, key)
	if err != nil {
		return models.KeychainEntry{}, terror.CryptoFailure(err)
	}
	entry := models.KeychainEntry{SubjectID: subjectID, SubjectType: subjectType, EncryptedKey: wrapped}
	p.keychain[subjectID] = entry
	return entry, nil
}

// LoadKeychainEntry installs a keychain entry read back from storage (used
// at startup, before any PutKeychainEntry call for that subject has run this
// process).
func (p *Profile) LoadKeychainEntry(entry models.KeychainEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keychain[entry.SubjectID] = entry
}

func (p *Profile) RemoveKeychainEntry(subjectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.keychain, subjectID)
}

// RehydrateNoteKeys restores every loaded note's in-memory key and its
// owning space's vdb entry from the note's own Keys keyref, unwrapped under
// the profile's master key, and decrypts the note's private fields from its
// Body with that key. Notes are never keychain-resident (unlike
// Space/Board, they're looked up through their space's vdb instead), so
// FindModelKey can't recover a note's key on its own; the only durable
// record of it is the keyref the note wrapped for userID at Add time. Call
// this once per process, after the master key is known and notes have been
// loaded from disk but before any note is dispatched against.
func (p *Profile) RehydrateNoteKeys(userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.Notes {
		if models.HasKey(n) {
			continue
		}
		keyref, ok := models.FindKeyref(n, userID)
		if !ok {
			continue
		}
		key, err := tcrypto.UnwrapKey(p.masterKey, keyref.EncryptedKey)
		if err != nil {
			return terror.CryptoFailure(err)
		}
		n.Key = key
		if err := models.Deserialize(n, nil); err != nil {
			return err
		}
		for _, s := range p.Spaces {
			if s.ID == n.SpaceID {
				s.VdbPut(n.ID, base64.StdEncoding.EncodeToString(key[:]))
				break
			}
		}
	}
	return nil
}
