package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Storage = (*FileStorage)(nil)

// FileStorage keeps all keys in a single JSON file. Writes go through a
// temp file plus rename so a crash mid-write never leaves a torn file.
type FileStorage struct {
	path string
	lock sync.Mutex
}

// NewFileStorage creates a file-backed storage at path, creating parent
// directories as needed.
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStorage] create state directory")
	}
	return &FileStorage{path: path}, nil
}

func (fs *FileStorage) Get(key string) (string, bool, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	entries, err := fs.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (fs *FileStorage) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	entries, err := fs.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return fs.write(entries)
}

func (fs *FileStorage) Remove(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	entries, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return fs.write(entries)
}

func (fs *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStorage.read]")
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// An unreadable state file is treated as empty rather than wedging
		// every session operation behind a parse error.
		return map[string]string{}, nil
	}
	return entries, nil
}

func (fs *FileStorage) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "[FileStorage.write] marshal")
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage.write] write temp file")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStorage.write] rename")
	}
	return nil
}
