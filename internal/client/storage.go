package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Storage keys used by the stores
const (
	StorageKeyAuth = "auth"
	StorageKeyCart = "cart"
)

// ErrKeyNotFound is returned when a storage key has never been written
var ErrKeyNotFound = errors.New("storage key not found")

// Storage persists small state blobs on the device
type Storage interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FileStorage keeps each key in its own file under a directory.
// Writes go through a temp file and rename, so a crashed write never
// leaves a half-written blob behind.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a FileStorage rooted at dir, creating it if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Read returns the stored bytes for key, or ErrKeyNotFound
func (s *FileStorage) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write stores data under key atomically
func (s *FileStorage) Write(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path(key))
}

// Delete removes the stored bytes for key; deleting a missing key is not an error
func (s *FileStorage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
