// Package kvdb defines the interfaces of the signer's key/value store.
//
// Every durable fact the signer keeps (chain specs, schemas, verifiers,
// staged actions) lives in one KeyValueStore. Named collections are key
// prefixes laid out by package rawdb.
package kvdb

import (
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the key is absent. Every backend
// returns this exact value.
var ErrNotFound = errors.New("kvdb: not found")

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// Flusher forces previously written data onto durable storage.
type Flusher interface {
	Flush() error
}

// Reader is the read-side of a store including iteration.
type Reader interface {
	KeyValueReader
	Iteratee
}

// KeyValueStore contains all the methods required to allow handling different
// key-value data stores backing the signer.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	Batcher
	Iteratee
	Flusher
	io.Closer
}
