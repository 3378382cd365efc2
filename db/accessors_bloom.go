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

package db

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ariesdevil/parity/bloom"
	"github.com/ariesdevil/parity/kvdb"
)

// WriteBloomJournal queues all of a drained bloom journal into the given
// transaction: the hash function count under its well-known key, then every
// touched part under its little-endian part index. The journal only becomes
// visible once the transaction is written, so partial filters never land.
func WriteBloomJournal(batch kvdb.Batch, journal bloom.Journal) error {
	if journal.HashFunctions == 0 || journal.HashFunctions > 255 {
		return fmt.Errorf("invalid bloom hash function count: %d", journal.HashFunctions)
	}
	if err := batch.Put(ColAccountBloom, accountBloomHashCountKey, []byte{byte(journal.HashFunctions)}); err != nil {
		return err
	}
	for _, entry := range journal.Entries {
		var key, val [8]byte
		binary.LittleEndian.PutUint64(key[:], entry.Index)
		binary.LittleEndian.PutUint64(val[:], entry.Value)
		if err := batch.Put(ColAccountBloom, key[:], val[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadAccountBloom reconstructs the persisted account bloom filter. Parts
// that were never journaled read back as zero. Returns (nil, nil) if no bloom
// was ever committed.
func ReadAccountBloom(r kvdb.Reader) (*bloom.Bloom, error) {
	data, err := r.Get(ColAccountBloom, accountBloomHashCountKey)
	if errors.Is(err, kvdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) != 1 {
		return nil, fmt.Errorf("invalid bloom hash count entry: %d bytes", len(data))
	}
	parts := make([]uint64, AccountBloomSpace/8)
	for i := range parts {
		var key [8]byte
		binary.LittleEndian.PutUint64(key[:], uint64(i))
		part, err := r.Get(ColAccountBloom, key[:])
		if errors.Is(err, kvdb.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(part) != 8 {
			return nil, fmt.Errorf("invalid bloom part %d: %d bytes", i, len(part))
		}
		parts[i] = binary.LittleEndian.Uint64(part)
	}
	return bloom.FromParts(parts, uint32(data[0]))
}
