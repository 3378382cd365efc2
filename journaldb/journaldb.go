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

// Package journaldb exposes a historical-state view over one column of the
// chain database as a hash-addressed node store.
//
// The view is strictly read-only. The algorithm tag describes how state
// overlays were journaled by the writer; since reads resolve nodes by hash
// regardless of the overlay strategy, the tag has no effect on the returned
// data and is carried for diagnostics only.
package journaldb

import (
	"bytes"
	"errors"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/ethdb"
)

// Algorithm identifies the state-overlay journaling strategy a database was
// written with.
type Algorithm uint8

const (
	// Archive keeps all state forever, no journal overlays.
	Archive Algorithm = iota

	// EarlyMerge journals overlays and merges them at the earliest block.
	EarlyMerge

	// OverlayRecent keeps recent overlays in memory, the default strategy.
	OverlayRecent

	// RefCounted keeps reference-counted overlays.
	RefCounted
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case Archive:
		return "archive"
	case EarlyMerge:
		return "earlymerge"
	case OverlayRecent:
		return "overlayrecent"
	case RefCounted:
		return "refcounted"
	default:
		return "unknown"
	}
}

// errReadOnly is returned for any mutation attempted on the view.
var errReadOnly = errors.New("journaldb: read only")

// New returns a read-only hash-addressed node store over the given column.
// Any journaling algorithm yields the same reads, so callers may pass any
// fixed tag.
func New(store kvdb.Database, algo Algorithm, col kvdb.Column) ethdb.KeyValueStore {
	return &view{store: store, algo: algo, col: col}
}

// view adapts one column of the chain database to the key-value store
// interface the trie database consumes.
type view struct {
	store kvdb.Database
	algo  Algorithm
	col   kvdb.Column
}

// Has retrieves if a node hash is present in the backing column.
func (v *view) Has(key []byte) (bool, error) {
	return v.store.Has(v.col, key)
}

// Get retrieves the node stored under the given hash.
func (v *view) Get(key []byte) ([]byte, error) {
	return v.store.Get(v.col, key)
}

// Put is rejected: the view is read-only.
func (v *view) Put(key []byte, value []byte) error {
	return errReadOnly
}

// Delete is rejected: the view is read-only.
func (v *view) Delete(key []byte) error {
	return errReadOnly
}

// DeleteRange is rejected: the view is read-only.
func (v *view) DeleteRange(start, end []byte) error {
	return errReadOnly
}

// NewBatch returns a batch whose write fails; nothing may mutate the view.
func (v *view) NewBatch() ethdb.Batch {
	return readOnlyBatch{}
}

// NewBatchWithSize returns a batch whose write fails.
func (v *view) NewBatchWithSize(size int) ethdb.Batch {
	return readOnlyBatch{}
}

// NewIterator creates an iterator over a subset of the backing column's
// content with a particular key prefix, starting at a particular initial key.
func (v *view) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	position := make([]byte, 0, len(prefix)+len(start))
	position = append(position, prefix...)
	position = append(position, start...)
	return &prefixIterator{
		iter:   v.store.NewIterator(v.col, position),
		prefix: prefix,
	}
}

// Stat returns the statistic data of the database.
func (v *view) Stat() (string, error) {
	return "", nil
}

// Compact is a no-op on a read-only view.
func (v *view) Compact(start []byte, limit []byte) error {
	return nil
}

// Close is a no-op; the backing store is owned by the caller.
func (v *view) Close() error {
	return nil
}

// readOnlyBatch refuses to accumulate or commit anything.
type readOnlyBatch struct{}

func (readOnlyBatch) Put(key, value []byte) error           { return errReadOnly }
func (readOnlyBatch) Delete(key []byte) error               { return errReadOnly }
func (readOnlyBatch) ValueSize() int                        { return 0 }
func (readOnlyBatch) Write() error                          { return errReadOnly }
func (readOnlyBatch) Reset()                                {}
func (readOnlyBatch) Replay(w ethdb.KeyValueWriter) error   { return nil }

// prefixIterator trims a column iterator down to keys carrying the requested
// prefix, the contract the flat-store iterator interface expects.
type prefixIterator struct {
	iter     kvdb.Iterator
	prefix   []byte
	finished bool
}

// Next moves the iterator to the next key/value pair.
func (it *prefixIterator) Next() bool {
	if it.finished {
		return false
	}
	if !it.iter.Next() {
		it.finished = true
		return false
	}
	if !bytes.HasPrefix(it.iter.Key(), it.prefix) {
		it.finished = true
		return false
	}
	return true
}

// Error returns any accumulated error.
func (it *prefixIterator) Error() error {
	return it.iter.Error()
}

// Key returns the key of the current key/value pair, or nil if done.
func (it *prefixIterator) Key() []byte {
	if it.finished {
		return nil
	}
	return it.iter.Key()
}

// Value returns the value of the current key/value pair, or nil if done.
func (it *prefixIterator) Value() []byte {
	if it.finished {
		return nil
	}
	return it.iter.Value()
}

// Release releases associated resources.
func (it *prefixIterator) Release() {
	it.iter.Release()
}
