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

// Package db contains the column layout of the chain database along with
// typed accessors for the entries the migration engine needs.
package db

import "github.com/ariesdevil/parity/kvdb"

// Column assignments of the chain database.
const (
	// ColState holds the hash-addressed state trie nodes.
	ColState kvdb.Column = 0

	// ColHeaders maps block hashes to RLP-encoded headers.
	ColHeaders kvdb.Column = 1

	// ColBodies maps block hashes to block bodies.
	ColBodies kvdb.Column = 2

	// ColExtra holds auxiliary chain pointers, among them the best block.
	ColExtra kvdb.Column = 3

	// ColTrace holds execution traces.
	ColTrace kvdb.Column = 4

	// ColAccountBloom holds the journaled account bloom filter parts.
	ColAccountBloom kvdb.Column = 5
)

// TotalColumns is the column count of the current schema version.
const TotalColumns kvdb.Column = 6

// Account bloom dimensioning. The bit space is fixed; the preset is the
// expected account count the hash function count is tuned for.
const (
	// AccountBloomSpace is the size of the account bloom bit array in bytes.
	AccountBloomSpace = 1048576

	// AccountBloomPreset is the expected number of accounts the bloom's
	// false-positive rate is targeted at.
	AccountBloomPreset = 1000000
)

var (
	// headBlockKey tracks the hash of the best known block.
	headBlockKey = []byte("best")

	// accountBloomHashCountKey stores the bloom's hash function count as a
	// single byte.
	accountBloomHashCountKey = []byte("account_hash_count")
)
