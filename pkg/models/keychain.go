package models

// KeychainEntry is the persisted wrap of one object's key under the current
// user's master key. The local store's "keychain" bucket holds these, keyed
// by SubjectID.
type KeychainEntry struct {
	SubjectID    string `json:"subject_id"`
	SubjectType  string `json:"subject_type"`
	EncryptedKey []byte `json:"encrypted_key"`
}

func (k *KeychainEntry) TableName() string { return "keychain" }
func (k *KeychainEntry) GetID() string     { return k.SubjectID }
