package persist

import "fmt"

// StoreType selects a storage backend.
type StoreType string

const (
	StoreTypeFileSystem StoreType = "filesystem"
	StoreTypeBolt       StoreType = "bolt"
)

// Config holds the parameters needed to build a store.
type Config struct {
	Type StoreType

	// Path is the base directory for a filesystem store or the database
	// file for a bolt store.
	Path string
}

// NewStore builds the store described by cfg.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case StoreTypeFileSystem, "":
		return NewFileSystemStore(cfg.Path)
	case StoreTypeBolt:
		return NewBoltStore(cfg.Path)
	default:
		return nil, fmt.Errorf("persist: unknown store type %q", cfg.Type)
	}
}
