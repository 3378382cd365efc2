// Copyright 2025 The parity-go Authors
// This file is part of the parity-go library.
//
// The parity-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The parity-go library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the parity-go library. If not, see <http://www.gnu.org/licenses/>.

// Package memorydb implements the column-oriented key-value store in memory.
package memorydb

import (
	"errors"
	"sort"
	"sync"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/common"
)

// errMemorydbClosed is returned if a memory database was already closed at
// the invocation of a data access operation.
var errMemorydbClosed = errors.New("database closed")

// Database is an ephemeral column-oriented key-value store. Apart from basic
// data storage functionality it also supports batch writes and iterating over
// each column's keyspace in binary-alphabetical order.
type Database struct {
	cols []map[string][]byte
	lock sync.RWMutex
}

// New returns a wrapped map with all the required column store interface
// methods implemented.
func New(columns kvdb.Column) *Database {
	cols := make([]map[string][]byte, columns)
	for i := range cols {
		cols[i] = make(map[string][]byte)
	}
	return &Database{cols: cols}
}

// Close deallocates the internal maps and ensures any consecutive data access
// operation fails with an error.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.cols = nil
	return nil
}

// Columns returns the number of columns the store was created with.
func (db *Database) Columns() kvdb.Column {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return kvdb.Column(len(db.cols))
}

// Has retrieves if a key is present in the given column.
func (db *Database) Has(col kvdb.Column, key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.cols == nil {
		return false, errMemorydbClosed
	}
	_, ok := db.cols[col][string(key)]
	return ok, nil
}

// Get retrieves the given key from the given column if it's present.
func (db *Database) Get(col kvdb.Column, key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.cols == nil {
		return nil, errMemorydbClosed
	}
	if entry, ok := db.cols[col][string(key)]; ok {
		return common.CopyBytes(entry), nil
	}
	return nil, kvdb.ErrNotFound
}

// Put inserts the given value into the given column.
func (db *Database) Put(col kvdb.Column, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.cols == nil {
		return errMemorydbClosed
	}
	db.cols[col][string(key)] = common.CopyBytes(value)
	return nil
}

// Delete removes the key from the given column.
func (db *Database) Delete(col kvdb.Column, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.cols == nil {
		return errMemorydbClosed
	}
	delete(db.cols[col], string(key))
	return nil
}

// NewBatch creates a write-only transaction that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{db: db}
}

// NewIterator creates a binary-alphabetical iterator over a column's
// contents, starting at a particular initial key (or after, if it does not
// exist).
func (db *Database) NewIterator(col kvdb.Column, start []byte) kvdb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.cols == nil {
		return &iterator{index: -1}
	}
	var (
		st     = string(start)
		keys   = make([]string, 0, len(db.cols[col]))
		values = make([][]byte, 0, len(db.cols[col]))
	)
	// Collect the keys from the column corresponding to the start position
	for key := range db.cols[col] {
		if key >= st {
			keys = append(keys, key)
		}
	}
	// Sort the items and retrieve the associated values
	sort.Strings(keys)
	for _, key := range keys {
		values = append(values, db.cols[col][key])
	}
	return &iterator{
		index:  -1,
		keys:   keys,
		values: values,
	}
}

// Len returns the number of entries currently present in the given column.
//
// Note, this method is only used for testing (i.e. not public in general) and
// does not have explicit checks for closed-ness to allow simpler testing code.
func (db *Database) Len(col kvdb.Column) int {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return len(db.cols[col])
}

// keyvalue is a column-scoped key-value tuple tagged with a deletion field to
// allow creating memory-database write batches.
type keyvalue struct {
	col    kvdb.Column
	key    string
	value  []byte
	delete bool
}

// batch is a write-only memory transaction that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(col kvdb.Column, key, value []byte) error {
	b.writes = append(b.writes, keyvalue{col, string(key), common.CopyBytes(value), false})
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts the key removal into the batch for later committing.
func (b *batch) Delete(col kvdb.Column, key []byte) error {
	b.writes = append(b.writes, keyvalue{col, string(key), nil, true})
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to the memory database.
func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.cols == nil {
		return errMemorydbClosed
	}
	for _, keyvalue := range b.writes {
		if keyvalue.delete {
			delete(b.db.cols[keyvalue.col], keyvalue.key)
			continue
		}
		b.db.cols[keyvalue.col][keyvalue.key] = keyvalue.value
	}
	return nil
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents against the given writer.
func (b *batch) Replay(w kvdb.Writer) error {
	for _, keyvalue := range b.writes {
		if keyvalue.delete {
			if err := w.Delete(keyvalue.col, []byte(keyvalue.key)); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(keyvalue.col, []byte(keyvalue.key), keyvalue.value); err != nil {
			return err
		}
	}
	return nil
}

// iterator can walk over the (potentially partial) keyspace of one column.
// Internally it is a deep copy of the entire iterated state, sorted by keys.
type iterator struct {
	index  int
	keys   []string
	values [][]byte
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted.
func (it *iterator) Next() bool {
	// Short circuit if iterator is already exhausted in the forward direction.
	if it.index >= len(it.keys) {
		return false
	}
	it.index += 1
	return it.index < len(it.keys)
}

// Error returns any accumulated error. Exhausting all the key/value pairs is
// not considered to be an error. A memory iterator cannot encounter errors.
func (it *iterator) Error() error {
	return nil
}

// Key returns the key of the current key/value pair, or nil if done.
func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.index])
}

// Value returns the value of the current key/value pair, or nil if done.
func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

// Release releases associated resources. Release should always succeed and
// can be called multiple times without causing error.
func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}
