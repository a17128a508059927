// Package crypto implements the config encryption layer: a per-domain key
// derived from the device seed, and an authenticated XChaCha20-Poly1305
// envelope around serialized config payloads.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Aerilym/libsession-util/internal/mem"
)

const (
	// SeedSize is the required secret seed length. A 64-byte ed25519 secret
	// key is also accepted by callers, which pass only its first 32 bytes.
	SeedSize = 32

	// KeySize is the derived encryption key length.
	KeySize = 32

	// envelopeVersion is the blob format version byte. It is authenticated
	// as additional data, so tampering with it fails decryption.
	envelopeVersion byte = 1
)

var (
	// ErrDecryptFailed indicates an authentication failure: the blob was
	// tampered with, truncated, or encrypted under a different key.
	ErrDecryptFailed = errors.New("crypto: decryption failed")

	// ErrBadSeed indicates a seed of invalid length.
	ErrBadSeed = errors.New("crypto: seed must be 32 bytes")
)

// DeriveKey derives the encryption key for one config domain from the
// 32-byte device seed, using the domain label as the BLAKE2b hash key.
// Distinct domains sharing one seed therefore never share ciphertext keys.
// The derived key lives in a guarded buffer owned by the caller, which must
// Reset it on teardown; no unguarded copy survives the call.
func DeriveKey(seed []byte, domain string) (*mem.Buffer, error) {
	if len(seed) != SeedSize {
		return nil, ErrBadSeed
	}
	h, err := blake2b.New256([]byte(domain))
	if err != nil {
		return nil, fmt.Errorf("crypto: key derivation setup: %w", err)
	}
	h.Write(seed)
	key := h.Sum(nil)
	// NewBufferFrom wipes the intermediate copy
	return mem.NewBufferFrom(key)
}

// Seal encrypts plaintext under key with a fresh random 24-byte nonce,
// returning version || nonce || ciphertext. Repeated calls on identical
// plaintext produce different blobs; the nonce source is the system CSPRNG,
// so nonce reuse does not occur.
func Seal(plaintext []byte, key *mem.Buffer) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	out := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	out[0] = envelopeVersion
	nonce := out[1 : 1+aead.NonceSize()]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}
	return aead.Seal(out, nonce, plaintext, out[:1]), nil
}

// Open authenticates and decrypts a blob produced by Seal. Any failure is
// reported as ErrDecryptFailed without further detail; callers merging
// foreign blobs treat it as a silently skippable condition.
func Open(blob []byte, key *mem.Buffer) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}

	if len(blob) < 1+aead.NonceSize()+aead.Overhead() || blob[0] != envelopeVersion {
		return nil, ErrDecryptFailed
	}
	nonce := blob[1 : 1+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, blob[1+aead.NonceSize():], blob[:1])
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
