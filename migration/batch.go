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

package migration

import (
	"sort"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/common"
)

// Batch is a bounded accumulator of key/value inserts bound to one column.
// Whenever the number of buffered entries reaches the configured threshold,
// the buffer is written to the destination as a single atomic transaction and
// cleared. Each flush is its own atomic unit; there is no atomicity across
// flushes, which is what keeps memory bounded regardless of column size.
type Batch struct {
	inserts   map[string][]byte
	batchSize int
	col       kvdb.Column
}

// NewBatch creates an empty accumulator for the given column.
func NewBatch(config Config, col kvdb.Column) *Batch {
	size := config.BatchSize
	if size <= 0 {
		size = DefaultConfig.BatchSize
	}
	return &Batch{
		inserts:   make(map[string][]byte, size),
		batchSize: size,
		col:       col,
	}
}

// Insert buffers one key/value pair, flushing the whole buffer to dest if it
// has reached the threshold. The pair's bytes are copied, so the caller may
// reuse iterator-owned slices. A failed flush is returned unchanged; the
// accumulator must not be used further after an error.
func (b *Batch) Insert(key, value []byte, dest kvdb.Database) error {
	b.inserts[string(key)] = common.CopyBytes(value)
	if len(b.inserts) >= b.batchSize {
		return b.flush(dest)
	}
	return nil
}

// Commit flushes any remaining buffered entries. After a successful commit
// every inserted pair is present in the destination byte for byte.
func (b *Batch) Commit(dest kvdb.Database) error {
	return b.flush(dest)
}

// flush writes the buffered entries as one transaction and clears the buffer.
// Keys are written in sorted order so a flush is deterministic for a given
// buffer content.
func (b *Batch) flush(dest kvdb.Database) error {
	if len(b.inserts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.inserts))
	for key := range b.inserts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	batch := dest.NewBatch()
	for _, key := range keys {
		if err := batch.Put(b.col, []byte(key), b.inserts[key]); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	b.inserts = make(map[string][]byte, b.batchSize)
	return nil
}
