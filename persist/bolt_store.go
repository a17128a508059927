package persist

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	dumpsBucket = []byte("dumps")
	timesBucket = []byte("dump_times")
)

// BoltStore implements Store on a single bbolt database file, which keeps
// every namespace's dump in one transactional file. Preferred over
// FileSystemStore when the surrounding application already ships bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, FilePermissions, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{dumpsBucket, timesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bolt store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func namespaceKey(namespace int16) []byte {
	key := make([]byte, 2)
	binary.BigEndian.PutUint16(key, uint16(namespace))
	return key
}

func (s *BoltStore) SaveDump(namespace int16, dump []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(dumpsBucket).Put(namespaceKey(namespace), dump); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		ts, err := time.Now().UTC().MarshalBinary()
		if err != nil {
			return err
		}
		return tx.Bucket(timesBucket).Put(namespaceKey(namespace), ts)
	})
}

func (s *BoltStore) LoadDump(namespace int16) (*VersionedDump, error) {
	var out *VersionedDump
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(dumpsBucket).Get(namespaceKey(namespace))
		if data == nil {
			return ErrNotFound
		}
		dump := &VersionedDump{Data: append([]byte(nil), data...)}
		if ts := tx.Bucket(timesBucket).Get(namespaceKey(namespace)); ts != nil {
			_ = dump.Timestamp.UnmarshalBinary(ts)
		}
		out = dump
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) DumpExists(namespace int16) (bool, error) {
	exists := false
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(dumpsBucket).Get(namespaceKey(namespace)) != nil
		return nil
	})
	return exists, err
}

func (s *BoltStore) DeleteDump(namespace int16) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(dumpsBucket).Delete(namespaceKey(namespace)); err != nil {
			return fmt.Errorf("failed to delete dump: %w", err)
		}
		return tx.Bucket(timesBucket).Delete(namespaceKey(namespace))
	})
}

func (s *BoltStore) ListNamespaces() ([]int16, error) {
	var out []int16
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(dumpsBucket).ForEach(func(k, _ []byte) error {
			out = append(out, int16(binary.BigEndian.Uint16(k)))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

// ensure interface compliance
var _ Store = (*BoltStore)(nil)
