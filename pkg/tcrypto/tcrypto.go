package tcrypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size in bytes of a Key.
const KeySize = chacha20poly1305.KeySize

// Key is symmetric key material for one protected object or file.
type Key [KeySize]byte

// RandomKey generates a new random Key from crypto/rand.
func RandomKey() (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return k, fmt.Errorf("tcrypto: generate key: %w", err)
	}
	return k, nil
}

// Encrypt seals plaintext under key, returning nonce-prepended ciphertext.
func Encrypt(key Key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("tcrypto: new cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("tcrypto: generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt under key.
func Decrypt(key Key, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("tcrypto: new cipher: %w", err)
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("tcrypto: ciphertext too short")
	}

	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("tcrypto: decrypt: %w", err)
	}
	return plaintext, nil
}

// WrapKey encrypts inner under outer, producing the encrypted key a keychain
// entry or keyref stores. Used to wrap an object's key under the user's
// master key without keeping key material in plaintext.
func WrapKey(outer Key, inner Key) ([]byte, error) {
	return Encrypt(outer, inner[:])
}

// UnwrapKey reverses WrapKey, recovering inner from a wrapped body.
func UnwrapKey(outer Key, wrapped []byte) (Key, error) {
	var inner Key
	plaintext, err := Decrypt(outer, wrapped)
	if err != nil {
		return inner, err
	}
	if len(plaintext) != KeySize {
		return inner, fmt.Errorf("tcrypto: unwrapped key has wrong length %d", len(plaintext))
	}
	copy(inner[:], plaintext)
	return inner, nil
}
