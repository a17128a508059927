package session

import "errors"

var (
	// ErrClosed is returned by operations on a config object after Close.
	ErrClosed = errors.New("session: config object is closed")

	// ErrInvalidSeed is returned when the secret seed is not 32 bytes (or
	// a 64-byte ed25519 secret key).
	ErrInvalidSeed = errors.New("session: secret seed must be 32 or 64 bytes")

	// ErrInvalidDump is returned at construction when a supplied dump
	// cannot be decrypted or deserialized. The construction attempt is
	// fatal; no partially-usable object is returned.
	ErrInvalidDump = errors.New("session: cannot load dump: decryption or parse failure")

	// ErrInvalidSessionID is returned for a malformed hex Session ID.
	ErrInvalidSessionID = errors.New("session: invalid session ID")

	// ErrInvalidPubkey is returned for a server pubkey that is not valid
	// hex, base32z, or base64 for 32 bytes.
	ErrInvalidPubkey = errors.New("session: invalid server pubkey encoding")

	// ErrInvalidURL is returned for an empty or oversized community base URL.
	ErrInvalidURL = errors.New("session: invalid community base URL")
)
