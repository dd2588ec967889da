// Package tokenstore persists the bearer credential and the cached identity
// snapshot so a session can be restored across process restarts without an
// immediate network round trip.
package tokenstore

// Storage is the durable key-value primitive the store is built on. Values
// are opaque strings; Get reports ok=false for missing keys and Remove is a
// no-op for keys that do not exist.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
