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

// Package kvdb defines the interfaces for a column-oriented key-value store.
//
// A database is a set of numbered columns, each holding an independent ordered
// mapping from byte keys to byte values. All mutations go through batches,
// which are applied atomically as one unit.
package kvdb

import (
	"errors"
	"io"
)

// Column identifies one logical partition of the database.
type Column uint32

// ErrNotFound is returned by Get when the requested key does not exist in the
// given column. Backends translate their native not-found errors into this
// one so callers can distinguish absence from I/O failure.
var ErrNotFound = errors.New("kvdb: not found")

// Reader wraps the Has and Get methods of a backing data store.
type Reader interface {
	// Has retrieves if a key is present in the given column.
	Has(col Column, key []byte) (bool, error)

	// Get retrieves the given key if it's present in the given column.
	// A missing key yields ErrNotFound.
	Get(col Column, key []byte) ([]byte, error)
}

// Writer wraps the Put and Delete methods of a backing data store.
type Writer interface {
	// Put inserts the given value into the given column.
	Put(col Column, key []byte, value []byte) error

	// Delete removes the key from the given column.
	Delete(col Column, key []byte) error
}

// Batch is a write-only transaction that commits its column-scoped upserts to
// the host database atomically when Write is called. A batch cannot be used
// concurrently.
type Batch interface {
	Writer

	// ValueSize retrieves the amount of data queued up for writing.
	ValueSize() int

	// Write flushes any accumulated data to disk as one atomic unit.
	Write() error

	// Reset resets the batch for reuse.
	Reset()

	// Replay replays the batch contents against the given writer.
	Replay(w Writer) error
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	// NewBatch creates a write-only transaction that buffers changes to its
	// host database until a final write is called.
	NewBatch() Batch
}

// Iterator iterates over one column's key/value pairs in ascending key order.
// Call Next to advance, inspect Key/Value, and check Error once exhausted.
type Iterator interface {
	// Next moves the iterator to the next key/value pair. It returns whether
	// the iterator is exhausted.
	Next() bool

	// Error returns any accumulated error. Exhausting all the key/value pairs
	// is not considered to be an error.
	Error() error

	// Key returns the key of the current key/value pair, or nil if done. The
	// caller should not modify the contents of the returned slice, and its
	// contents may change on the next call to Next.
	Key() []byte

	// Value returns the value of the current key/value pair, or nil if done.
	// The caller should not modify the contents of the returned slice, and
	// its contents may change on the next call to Next.
	Value() []byte

	// Release releases associated resources. Release should always succeed
	// and can be called multiple times without causing error.
	Release()
}

// Iteratee wraps the NewIterator method of a backing data store.
type Iteratee interface {
	// NewIterator creates an iterator over the given column's contents in
	// storage order, starting at a particular initial key (or after, if it
	// does not exist). A nil start iterates the whole column.
	NewIterator(col Column, start []byte) Iterator
}

// Database contains all the methods required to read and migrate a
// column-oriented key-value store.
type Database interface {
	Reader
	Batcher
	Iteratee

	// Columns returns the number of columns the database was opened with.
	Columns() Column

	io.Closer
}
