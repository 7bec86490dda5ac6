package models

import (
	"encoding/json"
	"fmt"

	"github.com/turtl/core/pkg/tcrypto"
	"github.com/turtl/core/pkg/terror"
)

// Keyref lets a subject (almost always the owning user) unwrap an object's
// key without having a copy of the plaintext key.
type Keyref struct {
	SubjectID    string `json:"subject_id"`
	SubjectType  string `json:"subject_type"`
	EncryptedKey []byte `json:"encrypted_key"`
}

// KeyTarget is a subject this object's key should be wrapped for.
type KeyTarget struct {
	SubjectID   string
	SubjectType string
	Key         tcrypto.Key
}

// Base is embedded by every Protected type. Key is never marshaled; it only
// ever lives in memory for the lifetime of the process holding the object.
type Base struct {
	ID   string      `json:"id"`
	Body []byte      `json:"body,omitempty"`
	Keys []Keyref    `json:"keys,omitempty"`
	Key  tcrypto.Key `json:"-"`
}

// Storable is satisfied by every entity the local store persists.
type Storable interface {
	TableName() string
	GetID() string
}

// Protected is satisfied by every encrypted entity (User, Space, Board,
// Note, File, FileData). Implementations hand-split their fields rather than
// relying on struct-tag reflection.
type Protected interface {
	Storable
	GetBase() *Base
	PublicPrivateSplit() (public, private map[string]any)
	ApplyPublic(fields map[string]any) error
	ApplyPrivate(fields map[string]any) error
}

// HasKey reports whether the object's in-memory key has been set.
func HasKey(p Protected) bool {
	return p.GetBase().Key != (tcrypto.Key{})
}

// Serialize collects p's private fields, encrypts them under p.GetBase().Key,
// assigns the result to Body, and returns the canonical stored form (public
// fields + id + body + keys). The caller is responsible for running this on
// the crypto pool; Serialize itself does no offloading.
func Serialize(p Protected) (json.RawMessage, error) {
	base := p.GetBase()
	if !HasKey(p) {
		return nil, terror.MissingData("key")
	}

	_, private := p.PublicPrivateSplit()
	plaintext, err := json.Marshal(private)
	if err != nil {
		return nil, terror.Wrap(err)
	}

	ciphertext, err := tcrypto.Encrypt(base.Key, plaintext)
	if err != nil {
		return nil, terror.CryptoFailure(err)
	}
	base.Body = ciphertext

	return DataForStorage(p)
}

// Deserialize decrypts p's Body and installs the plaintext private fields on
// p. If p's own key isn't set, outerKey is used instead (and installed on p).
func Deserialize(p Protected, outerKey *tcrypto.Key) error {
	base := p.GetBase()
	key := base.Key
	if key == (tcrypto.Key{}) {
		if outerKey == nil {
			return terror.MissingData("key")
		}
		key = *outerKey
	}

	if len(base.Body) == 0 {
		base.Key = key
		return nil
	}

	plaintext, err := tcrypto.Decrypt(key, base.Body)
	if err != nil {
		return terror.CryptoFailure(err)
	}

	var private map[string]any
	if err := json.Unmarshal(plaintext, &private); err != nil {
		return terror.Wrap(err)
	}
	if err := p.ApplyPrivate(private); err != nil {
		return err
	}
	base.Key = key
	return nil
}

// DataForStorage renders p's public fields merged with id/body/keys — the
// canonical JSON value persisted to the store and handed to the UI.
func DataForStorage(p Protected) (json.RawMessage, error) {
	base := p.GetBase()
	public, _ := p.PublicPrivateSplit()

	out := make(map[string]any, len(public)+3)
	for k, v := range public {
		out[k] = v
	}
	out["id"] = base.ID
	if len(base.Body) > 0 {
		out["body"] = base.Body
	}
	if len(base.Keys) > 0 {
		out["keys"] = base.Keys
	}
	return json.Marshal(out)
}

// MergeFields overlays src onto dst, field by field; values in src win.
// dst is mutated and returned.
func MergeFields(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// GenerateSubkeys wraps p's key under each target's key, appending the
// resulting keyrefs to p's Keys.
func GenerateSubkeys(p Protected, targets []KeyTarget) error {
	base := p.GetBase()
	if !HasKey(p) {
		return terror.MissingData("key")
	}
	for _, t := range targets {
		wrapped, err := tcrypto.WrapKey(t.Key, base.Key)
		if err != nil {
			return terror.CryptoFailure(err)
		}
		base.Keys = append(base.Keys, Keyref{
			SubjectID:    t.SubjectID,
			SubjectType:  t.SubjectType,
			EncryptedKey: wrapped,
		})
	}
	return nil
}

// FindKeyref looks for a Keyref belonging to subjectID among p's Keys.
func FindKeyref(p Protected, subjectID string) (Keyref, bool) {
	for _, kr := range p.GetBase().Keys {
		if kr.SubjectID == subjectID {
			return kr, true
		}
	}
	return Keyref{}, false
}

func requireString(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", terror.MissingField(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", terror.BadValue(fmt.Sprintf("%s must be a string", name))
	}
	return s, nil
}
