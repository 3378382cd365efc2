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

// Package leveldb implements the column-oriented key-value store on top of a
// single LevelDB instance. Every logical column is mapped into the flat key
// space by a one-byte prefix, so a column iterator is a prefix iterator over
// the underlying store.
package leveldb

import (
	"fmt"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to
	// leveldb read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the
	// open database files.
	minHandles = 16
)

// Database is a persistent column-oriented key-value store backed by LevelDB.
type Database struct {
	fn      string      // filename for reporting
	db      *leveldb.DB // LevelDB instance
	columns kvdb.Column // number of logical columns

	log log.Logger // Contextual logger tracking the database path
}

// New returns a column-oriented store backed by a LevelDB instance at the
// given path, laid out for the given number of columns. Sources of an offline
// migration are opened with readonly set.
func New(file string, cache int, handles int, columns kvdb.Column, readonly bool) (*Database, error) {
	// Ensure we have some minimal caching and file guarantees
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		ReadOnly:               readonly,
	}
	logger := log.New("database", file)
	logCtx := []interface{}{"cache", common.StorageSize(cache * opt.MiB), "handles", handles, "columns", columns}
	if readonly {
		logCtx = append(logCtx, "readonly", "true")
	}
	logger.Info("Allocated cache and file handles", logCtx...)

	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(file, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted && !readonly {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{
		fn:      file,
		db:      db,
		columns: columns,
		log:     logger,
	}, nil
}

// Close flushes any pending data to disk and closes all io accesses to the
// underlying key-value store.
func (db *Database) Close() error {
	return db.db.Close()
}

// Columns returns the number of logical columns the store was opened with.
func (db *Database) Columns() kvdb.Column {
	return db.columns
}

// Path returns the path to the database directory.
func (db *Database) Path() string {
	return db.fn
}

// Has retrieves if a key is present in the given column.
func (db *Database) Has(col kvdb.Column, key []byte) (bool, error) {
	return db.db.Has(colKey(col, key), nil)
}

// Get retrieves the given key from the given column if it's present.
func (db *Database) Get(col kvdb.Column, key []byte) ([]byte, error) {
	dat, err := db.db.Get(colKey(col, key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, kvdb.ErrNotFound
		}
		return nil, err
	}
	return dat, nil
}

// Put inserts the given value into the given column.
func (db *Database) Put(col kvdb.Column, key []byte, value []byte) error {
	return db.db.Put(colKey(col, key), value, nil)
}

// Delete removes the key from the given column.
func (db *Database) Delete(col kvdb.Column, key []byte) error {
	return db.db.Delete(colKey(col, key), nil)
}

// NewBatch creates a write-only transaction that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{
		db: db.db,
		b:  new(leveldb.Batch),
	}
}

// NewIterator creates an iterator over the given column's contents in storage
// order, starting at a particular initial key (or after, if it does not
// exist).
func (db *Database) NewIterator(col kvdb.Column, start []byte) kvdb.Iterator {
	r := util.BytesPrefix([]byte{byte(col)})
	r.Start = append(r.Start, start...)
	return &iterator{iter: db.db.NewIterator(r, nil)}
}

// Compact flattens the underlying data store for the given column. Deleted
// and overwritten versions are discarded, and the data is rearranged to
// reduce the cost of operations needed to access them.
func (db *Database) Compact(col kvdb.Column) error {
	return db.db.CompactRange(*util.BytesPrefix([]byte{byte(col)}))
}

// colKey maps a column-scoped key into the flat leveldb key space.
func colKey(col kvdb.Column, key []byte) []byte {
	if col > 0xff {
		panic(fmt.Sprintf("column out of range: %d", col))
	}
	out := make([]byte, 0, len(key)+1)
	out = append(out, byte(col))
	return append(out, key...)
}

// batch is a write-only leveldb transaction that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(col kvdb.Column, key, value []byte) error {
	b.b.Put(colKey(col, key), value)
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts the key removal into the batch for later committing.
func (b *batch) Delete(col kvdb.Column, key []byte) error {
	b.b.Delete(colKey(col, key))
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to disk in one atomic write.
func (b *batch) Write() error {
	return b.db.Write(b.b, nil)
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

// Replay replays the batch contents against the given writer.
func (b *batch) Replay(w kvdb.Writer) error {
	return b.b.Replay(&replayer{writer: w})
}

// replayer is a small wrapper to implement the correct replay methods. It
// splits the flat leveldb keys back into (column, key) pairs.
type replayer struct {
	writer  kvdb.Writer
	failure error
}

// Put inserts the given value into the key-value data store.
func (r *replayer) Put(key, value []byte) {
	// If the replay already failed, stop executing ops
	if r.failure != nil {
		return
	}
	r.failure = r.writer.Put(kvdb.Column(key[0]), key[1:], value)
}

// Delete removes the key from the key-value data store.
func (r *replayer) Delete(key []byte) {
	// If the replay already failed, stop executing ops
	if r.failure != nil {
		return
	}
	r.failure = r.writer.Delete(kvdb.Column(key[0]), key[1:])
}

// iterator wraps a leveldb iterator, stripping the column prefix off the
// exposed keys.
type iterator struct {
	iter ldbIterator
}

// ldbIterator is the subset of goleveldb's iterator interface the wrapper
// relies on, split out to keep the adapter testable.
type ldbIterator interface {
	Next() bool
	Error() error
	Key() []byte
	Value() []byte
	Release()
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted.
func (it *iterator) Next() bool {
	return it.iter.Next()
}

// Error returns any accumulated error.
func (it *iterator) Error() error {
	return it.iter.Error()
}

// Key returns the key of the current key/value pair, without the column
// prefix, or nil if done.
func (it *iterator) Key() []byte {
	key := it.iter.Key()
	if len(key) == 0 {
		return nil
	}
	return key[1:]
}

// Value returns the value of the current key/value pair, or nil if done.
func (it *iterator) Value() []byte {
	return it.iter.Value()
}

// Release releases associated resources.
func (it *iterator) Release() {
	it.iter.Release()
}
