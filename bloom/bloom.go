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

// Package bloom implements a journaled bloom filter.
//
// The filter is a fixed bit space split into 64-bit parts; the part is the
// unit of journaling. Mutations track which parts have been touched since the
// last drain, so a persisted copy of the filter can be refreshed by writing
// only the dirty parts instead of the whole bit array.
package bloom

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
)

// maxHashFunctions bounds k so a journal can encode it in a single byte.
const maxHashFunctions = 255

// JournalEntry is one touched part of the filter: its index within the bit
// array and its full current value.
type JournalEntry struct {
	Index uint64
	Value uint64
}

// Journal is the minimal set of filter parts modified since the last drain,
// in ascending part order, together with the hash function count needed to
// interpret the filter.
type Journal struct {
	HashFunctions uint32
	Entries       []JournalEntry
}

// Bloom is a probabilistic set over byte keys with no false negatives and a
// bounded false-positive rate. Bit positions are derived deterministically
// from the key alone, so the final bit pattern is invariant to the order keys
// are inserted in. It is not safe for concurrent use.
type Bloom struct {
	parts []uint64            // the bit array, in 64-bit journaling units
	k     uint32              // number of hash-derived bit positions per key
	dirty map[uint64]struct{} // parts touched since the last drain
}

// New creates an all-zero filter over space bytes of bit array, tuned for the
// given expected number of elements. space must be a positive multiple of 8.
func New(space uint64, preset uint64) *Bloom {
	if space == 0 || space%8 != 0 {
		panic(fmt.Sprintf("invalid bloom space: %d bytes", space))
	}
	return &Bloom{
		parts: make([]uint64, space/8),
		k:     optimalHashes(space*8, preset),
		dirty: make(map[uint64]struct{}),
	}
}

// FromParts reconstructs a filter from previously persisted parts and hash
// function count. The journal starts out clean.
func FromParts(parts []uint64, hashFunctions uint32) (*Bloom, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty bloom bit array")
	}
	if hashFunctions == 0 || hashFunctions > maxHashFunctions {
		return nil, fmt.Errorf("invalid bloom hash function count: %d", hashFunctions)
	}
	bits := make([]uint64, len(parts))
	copy(bits, parts)
	return &Bloom{
		parts: bits,
		k:     hashFunctions,
		dirty: make(map[uint64]struct{}),
	}, nil
}

// optimalHashes derives the hash function count from the classic m/n·ln2
// optimum for a filter of m bits and n expected elements.
func optimalHashes(mbits, elements uint64) uint32 {
	if elements == 0 {
		return 1
	}
	k := uint64(math.Round(float64(mbits) / float64(elements) * math.Ln2))
	if k < 1 {
		k = 1
	}
	if k > maxHashFunctions {
		k = maxHashFunctions
	}
	return uint32(k)
}

// K returns the number of hash functions the filter was tuned with.
func (b *Bloom) K() uint32 {
	return b.k
}

// Parts returns a copy of the filter's bit array in journaling units.
func (b *Bloom) Parts() []uint64 {
	parts := make([]uint64, len(b.parts))
	copy(parts, b.parts)
	return parts
}

// Set marks the key's derived bit positions as set. Setting the same key
// twice is a no-op; a part only becomes dirty when one of its bits actually
// flips.
func (b *Bloom) Set(key []byte) {
	g1, g2 := b.hashPair(key)
	m := uint64(len(b.parts)) * 64
	for i := uint32(0); i < b.k; i++ {
		bit := (g1 + uint64(i)*g2) % m
		part, mask := bit/64, uint64(1)<<(bit%64)
		if b.parts[part]&mask == 0 {
			b.parts[part] |= mask
			b.dirty[part] = struct{}{}
		}
	}
}

// Check reports whether the key is possibly a member of the set. A false
// return is definite.
func (b *Bloom) Check(key []byte) bool {
	g1, g2 := b.hashPair(key)
	m := uint64(len(b.parts)) * 64
	for i := uint32(0); i < b.k; i++ {
		bit := (g1 + uint64(i)*g2) % m
		if b.parts[bit/64]&(uint64(1)<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// DrainJournal returns the parts touched since construction or the previous
// drain, in ascending part order, and resets the dirty tracking. The bits
// themselves are left untouched.
func (b *Bloom) DrainJournal() Journal {
	indexes := make([]uint64, 0, len(b.dirty))
	for index := range b.dirty {
		indexes = append(indexes, index)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	entries := make([]JournalEntry, 0, len(indexes))
	for _, index := range indexes {
		entries = append(entries, JournalEntry{Index: index, Value: b.parts[index]})
	}
	b.dirty = make(map[uint64]struct{})
	return Journal{HashFunctions: b.k, Entries: entries}
}

// hashPair derives the two base hashes for double hashing. Every derived bit
// position is (g1 + i*g2) mod m, which depends only on the key bytes.
func (b *Bloom) hashPair(key []byte) (uint64, uint64) {
	h := crypto.Keccak256(key)
	g1 := binary.BigEndian.Uint64(h[:8])
	g2 := binary.BigEndian.Uint64(h[8:16])
	if g2%2 == 0 {
		g2++ // keep the stride odd so it cycles the whole bit space
	}
	return g1, g2
}
