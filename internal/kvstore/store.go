// Package kvstore provides the durable key-value surface used to persist
// forecast cache entries and scheduled outfits. All keys are scoped to a
// device identity so that wiping or switching a device never leaks data
// between profiles.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNoIdentity is returned when a store is opened before the device
	// identity has been established. This is a programmer error upstream
	// (broken initialization order), so callers should fail fast.
	ErrNoIdentity = errors.New("kvstore: device identity not established")

	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("kvstore: key not found")
)

// Store is the contract the SQLite store (and the in-memory test store)
// must satisfy. Values are opaque byte blobs; callers serialize JSON.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
