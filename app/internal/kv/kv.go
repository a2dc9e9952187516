// Package kv is the narrow key-value capability the history layer is built
// on: point get/set, an atomic read-modify-write, prefix scans and deletes.
// Backends only have to honor this contract, which keeps the storage engine
// swappable between the embedded database, Redis and an in-memory map.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("kv: key not found")

// UpdateFunc transforms the current value of a key. old is nil when the key
// is absent. The returned bytes become the new value.
type UpdateFunc func(old []byte) ([]byte, error)

// Store is the capability set shared by every backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// Update applies fn to the current value of key as a check-then-set
	// transaction: the write only lands against the value that was read.
	// Backends either serialize the read-modify-write or retry it, so a
	// concurrent writer can never silently lose an update.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Keys returns every key with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the given keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int, error)

	Close() error
}
