/*
Package tcrypto is the crypto codec used to seal and open protected object
bodies and file bodies.

Every encrypted blob this core produces uses the same framing: a random
chacha20poly1305 key, a random nonce prepended to the ciphertext, no
additional authenticated data. Models never implement their own framing —
pkg/models and pkg/filestore both call through Encrypt/Decrypt here.

Key material (a Key) is always 32 random bytes from crypto/rand; there is no
password-based key derivation in this package. A user's master key is
derived outside this tree and installed on the profile, which uses
WrapKey/UnwrapKey to protect per-object keys under it.
*/
package tcrypto
