// Package ffi expresses the construction and error-reporting contract
// consumed by other-language bindings: a small closed set of integer
// status codes plus a bounded, NUL-terminated message buffer. No
// unbounded error object crosses this boundary. Internal code uses normal
// Go errors; this package exists only at the literal external edge.
package ffi

import (
	"errors"

	session "github.com/Aerilym/libsession-util"
)

// Status is a boundary-level result code.
type Status int

const (
	// StatusOK indicates success.
	StatusOK Status = 0

	// StatusInvalidSeed indicates a secret key of invalid length.
	StatusInvalidSeed Status = 1

	// StatusInvalidDump indicates that a supplied dump could not be
	// decrypted or deserialized; the construction attempt failed.
	StatusInvalidDump Status = 2
)

// ErrorBufSize is the fixed capacity of a boundary error buffer: up to
// 255 message bytes plus the terminating NUL.
const ErrorBufSize = 256

// ErrorBuf is the bounded, NUL-terminated message buffer handed across
// the boundary alongside a Status.
type ErrorBuf [ErrorBufSize]byte

// set truncates msg to 255 bytes and stores it NUL-terminated.
func (e *ErrorBuf) set(msg string) {
	if len(msg) > ErrorBufSize-1 {
		msg = msg[:ErrorBufSize-1]
	}
	n := copy(e[:], msg)
	e[n] = 0
}

// String returns the stored message up to the terminating NUL.
func (e *ErrorBuf) String() string {
	for i, c := range e {
		if c == 0 {
			return string(e[:i])
		}
	}
	return string(e[:])
}

// NewConversations constructs a conversation config from a 32-byte secret
// seed (or 64-byte ed25519 secret key) and an optional prior dump (nil for
// a fresh object). On failure the returned handle is nil, the status
// identifies the failure class, and errBuf (if non-nil) receives a short
// human-readable message.
func NewConversations(seed, dump []byte, errBuf *ErrorBuf) (*session.Conversations, Status) {
	convos, err := session.NewConversations(seed, dump)
	if err == nil {
		return convos, StatusOK
	}
	if errBuf != nil {
		errBuf.set(err.Error())
	}
	if errors.Is(err, session.ErrInvalidSeed) {
		return nil, StatusInvalidSeed
	}
	// Anything failing construction beyond the seed check is a dump
	// problem: wrong key, tampered blob, or garbage state data
	return nil, StatusInvalidDump
}
