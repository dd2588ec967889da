// Package storagefake provides an in-memory Storage for tests.
package storagefake

import (
	"sync"

	"github.com/aubattle/battle-client/tokenstore"
)

var _ tokenstore.Storage = (*FakeStorage)(nil)

// FakeStorage is a map-backed Storage. Optional per-call error injection
// lets tests exercise failure paths.
type FakeStorage struct {
	lock    sync.Mutex
	entries map[string]string

	// GetErr, SetErr, RemoveErr are returned by the corresponding call
	// when non-nil.
	GetErr    error
	SetErr    error
	RemoveErr error
}

func New() *FakeStorage {
	return &FakeStorage{entries: make(map[string]string)}
}

func (f *FakeStorage) Get(key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *FakeStorage) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.entries[key] = value
	return nil
}

func (f *FakeStorage) Remove(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.entries, key)
	return nil
}

// Len reports the number of stored keys.
func (f *FakeStorage) Len() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.entries)
}

// Put seeds a key directly, bypassing error injection.
func (f *FakeStorage) Put(key, value string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.entries[key] = value
}
