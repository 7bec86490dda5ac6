package tcrypto

import "bytes"

import "testing"

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key, err := RandomKey()
	if err != nil {
		t.Fatalf("RandomKey() error = %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "simple string", plaintext: []byte("hello world")},
		{name: "json data", plaintext: []byte(`{"title":"hi","body":"there"}`)},
		{name: "binary data", plaintext: []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}},
		{name: "large data", plaintext: bytes.Repeat([]byte("note"), 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := Encrypt(key, tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Equal(ciphertext, tt.plaintext) {
				t.Error("ciphertext should not equal plaintext")
			}

			decrypted, err := Decrypt(key, ciphertext)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecryptErrors(t *testing.T) {
	key, _ := RandomKey()

	tests := []struct {
		name       string
		ciphertext []byte
	}{
		{name: "empty", ciphertext: []byte{}},
		{name: "too short", ciphertext: []byte{0x01, 0x02}},
		{name: "corrupted", ciphertext: bytes.Repeat([]byte("x"), 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decrypt(key, tt.ciphertext); err == nil {
				t.Error("Decrypt() should fail")
			}
		})
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	key1, _ := RandomKey()
	key2, _ := RandomKey()

	plaintext := []byte("secret note body")
	ciphertext, err := Encrypt(key1, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := Decrypt(key2, ciphertext); err == nil {
		t.Error("Decrypt() should fail with wrong key")
	}
}

func TestWrapUnwrapKey(t *testing.T) {
	outer, _ := RandomKey()
	inner, _ := RandomKey()

	wrapped, err := WrapKey(outer, inner)
	if err != nil {
		t.Fatalf("WrapKey() error = %v", err)
	}

	recovered, err := UnwrapKey(outer, wrapped)
	if err != nil {
		t.Fatalf("UnwrapKey() error = %v", err)
	}
	if recovered != inner {
		t.Error("UnwrapKey() did not recover the original key")
	}
}

func TestUnwrapKeyWrongOuter(t *testing.T) {
	outer1, _ := RandomKey()
	outer2, _ := RandomKey()
	inner, _ := RandomKey()

	wrapped, _ := WrapKey(outer1, inner)
	if _, err := UnwrapKey(outer2, wrapped); err == nil {
		t.Error("UnwrapKey() should fail with wrong outer key")
	}
}

func TestRandomKeyIsRandom(t *testing.T) {
	k1, _ := RandomKey()
	k2, _ := RandomKey()
	if k1 == k2 {
		t.Error("RandomKey() produced identical keys twice")
	}
}
