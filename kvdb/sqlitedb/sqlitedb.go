// Package sqlitedb implements the key-value database layer on a single
// SQLite file, for hosts where a LevelDB directory is inconvenient.
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
) WITHOUT ROWID`

var errClosed = errors.New("sqlitedb: database closed")

// Database is a key-value store backed by one SQLite table.
type Database struct {
	path string
	db   *sql.DB

	lock   sync.RWMutex
	closed bool
}

// New opens (creating if needed) the SQLite file at path. The special path
// ":memory:" yields a private in-memory database.
func New(path string) (*Database, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Opened sqlite key-value store", "path", path)
	return &Database{path: path, db: db}, nil
}

// Close releases the underlying connection.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	return db.db.Close()
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	_, err := db.Get(key)
	if err == kvdb.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, errClosed
	}
	var value []byte
	err := db.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, kvdb.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return errClosed
	}
	_, err := db.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, nonNil(value))
	return err
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return errClosed
	}
	_, err := db.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Flush checkpoints the write-ahead log into the main database file.
func (db *Database) Flush() error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return errClosed
	}
	if db.path == ":memory:" {
		return nil
	}
	_, err := db.db.Exec(`PRAGMA wal_checkpoint(FULL)`)
	return err
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{db: db}
}

// NewIterator returns the matching rows as a snapshot. Rows are read eagerly
// so writers are never blocked behind an open cursor.
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	it := &iterator{index: -1}
	if db.closed {
		it.err = errClosed
		return it
	}
	var (
		from  = append(common.CopyBytes(prefix), start...)
		limit = upperBound(prefix)
		rows  *sql.Rows
		err   error
	)
	if limit == nil {
		rows, err = db.db.Query(`SELECT key, value FROM kv WHERE key >= ? ORDER BY key`, nonNil(from))
	} else {
		rows, err = db.db.Query(`SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`, nonNil(from), limit)
	}
	if err != nil {
		it.err = err
		return it
	}
	defer rows.Close()
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			it.err = err
			return it
		}
		it.keys = append(it.keys, k)
		it.values = append(it.values, v)
	}
	it.err = rows.Err()
	return it
}

// upperBound returns the smallest key greater than every key with the given
// prefix, or nil if no such key exists.
func upperBound(prefix []byte) []byte {
	limit := common.CopyBytes(prefix)
	for i := len(limit) - 1; i >= 0; i-- {
		if limit[i] < 0xff {
			limit[i]++
			return limit[:i+1]
		}
	}
	return nil
}

// nonNil maps nil to an empty blob; SQLite stores nil as NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// batch applies its writes inside a single SQL transaction.
type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{common.CopyBytes(key), common.CopyBytes(value), false})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{common.CopyBytes(key), nil, true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

func (b *batch) Write() error {
	b.db.lock.RLock()
	defer b.db.lock.RUnlock()

	if b.db.closed {
		return errClosed
	}
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	for _, kv := range b.writes {
		if kv.delete {
			_, err = tx.Exec(`DELETE FROM kv WHERE key = ?`, kv.key)
		} else {
			_, err = tx.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, kv.key, nonNil(kv.value))
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

func (b *batch) Replay(w kvdb.KeyValueWriter) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

type iterator struct {
	index  int
	keys   [][]byte
	values [][]byte
	err    error
}

func (it *iterator) Next() bool {
	if it.err != nil || it.index >= len(it.keys) {
		return false
	}
	it.index++
	return it.index < len(it.keys)
}

func (it *iterator) Error() error { return it.err }

func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.keys[it.index]
}

func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}
