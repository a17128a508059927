// Package persist stores encrypted config dumps between runs. All data
// passed through this interface is already encrypted by the config layer;
// a store never sees plaintext or key material. Dumps are keyed by the
// config's storage namespace.
package persist

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no dump exists for a namespace.
var ErrNotFound = errors.New("persist: dump not found")

// VersionedDump is a stored dump with its bookkeeping metadata.
type VersionedDump struct {
	Data      []byte
	Timestamp time.Time
}

// Store defines the interface for persisting encrypted config dumps.
type Store interface {

	// SaveDump stores the encrypted dump for the given namespace,
	// replacing any previous one.
	SaveDump(namespace int16, dump []byte) error

	// LoadDump retrieves the stored dump for the given namespace.
	// Returns ErrNotFound if none exists.
	LoadDump(namespace int16) (*VersionedDump, error)

	// DumpExists checks whether a dump is present for the namespace.
	DumpExists(namespace int16) (bool, error)

	// DeleteDump removes the stored dump for the namespace, if any.
	DeleteDump(namespace int16) error

	// ListNamespaces returns the namespaces that currently have a dump.
	ListNamespaces() ([]int16, error)

	// Close releases any resources held by the store.
	Close() error
}
