package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	FilePermissions os.FileMode = 0600
	DirPermissions  os.FileMode = 0700
)

// FileSystemStore implements Store on a local directory, one file per
// namespace. Writes go through a temp file plus rename so a crash never
// leaves a truncated dump behind.
type FileSystemStore struct {
	basePath string
	tempDir  string
}

// NewFileSystemStore initializes a store rooted at basePath, creating the
// directory layout if needed.
func NewFileSystemStore(basePath string) (*FileSystemStore, error) {
	fs := &FileSystemStore{
		basePath: basePath,
		tempDir:  filepath.Join(basePath, "temp"),
	}
	for _, dir := range []string{fs.basePath, fs.tempDir} {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return fs, nil
}

func (fs *FileSystemStore) dumpPath(namespace int16) string {
	return filepath.Join(fs.basePath, fmt.Sprintf("config-%d.dump", namespace))
}

func (fs *FileSystemStore) SaveDump(namespace int16, dump []byte) error {
	tmp, err := os.CreateTemp(fs.tempDir, "dump-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(dump); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write dump: %w", err)
	}
	if err := tmp.Chmod(FilePermissions); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set dump permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.dumpPath(namespace)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move dump into place: %w", err)
	}
	return nil
}

func (fs *FileSystemStore) LoadDump(namespace int16) (*VersionedDump, error) {
	path := fs.dumpPath(namespace)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat dump: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	return &VersionedDump{Data: data, Timestamp: info.ModTime().UTC()}, nil
}

func (fs *FileSystemStore) DumpExists(namespace int16) (bool, error) {
	_, err := os.Stat(fs.dumpPath(namespace))
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to stat dump: %w", err)
	}
	return true, nil
}

func (fs *FileSystemStore) DeleteDump(namespace int16) error {
	err := os.Remove(fs.dumpPath(namespace))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	return nil
}

func (fs *FileSystemStore) ListNamespaces() ([]int16, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}
	var out []int16
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "config-") || !strings.HasSuffix(name, ".dump") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".dump"), 10, 16)
		if err != nil {
			continue
		}
		out = append(out, int16(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (fs *FileSystemStore) Close() error { return nil }

// ensure interface compliance
var _ Store = (*FileSystemStore)(nil)
