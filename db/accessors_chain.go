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
	"errors"
	"fmt"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadHeadBlockHash retrieves the hash of the current canonical head block.
// A zero hash with a nil error means the pointer was never written, i.e. the
// store is empty or was never synced.
func ReadHeadBlockHash(r kvdb.Reader) (common.Hash, error) {
	data, err := r.Get(ColExtra, headBlockKey)
	if errors.Is(err, kvdb.ErrNotFound) {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(data), nil
}

// WriteHeadBlockHash stores the head block's hash.
func WriteHeadBlockHash(w kvdb.Writer, hash common.Hash) error {
	return w.Put(ColExtra, headBlockKey, hash.Bytes())
}

// ReadHeaderRLP retrieves a block header in its raw RLP database encoding,
// or nil if no header is stored under the hash.
func ReadHeaderRLP(r kvdb.Reader, hash common.Hash) (rlp.RawValue, error) {
	data, err := r.Get(ColHeaders, hash.Bytes())
	if errors.Is(err, kvdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ReadHeader retrieves the block header corresponding to the hash. A missing
// header yields (nil, nil); header bytes that cannot be decoded are an error,
// since they mean the store itself is malformed.
func ReadHeader(r kvdb.Reader, hash common.Hash) (*types.Header, error) {
	data, err := ReadHeaderRLP(r, hash)
	if err != nil || data == nil {
		return nil, err
	}
	header := new(types.Header)
	if err := rlp.DecodeBytes(data, header); err != nil {
		return nil, fmt.Errorf("invalid block header %x: %w", hash, err)
	}
	return header, nil
}

// WriteHeader stores a block header under its hash.
func WriteHeader(w kvdb.Writer, header *types.Header) error {
	data, err := rlp.EncodeToBytes(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	return w.Put(ColHeaders, header.Hash().Bytes(), data)
}
