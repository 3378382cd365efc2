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
	"math/big"
	"testing"

	"github.com/ariesdevil/parity/bloom"
	"github.com/ariesdevil/parity/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestHeadBlockHash(t *testing.T) {
	store := memorydb.New(TotalColumns)
	defer store.Close()

	// An unsynced store has no head pointer, which is not an error.
	hash, err := ReadHeadBlockHash(store)
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, hash)

	want := common.HexToHash("0xdeadbeef")
	require.NoError(t, WriteHeadBlockHash(store, want))

	hash, err = ReadHeadBlockHash(store)
	require.NoError(t, err)
	require.Equal(t, want, hash)
}

func TestHeaderStorage(t *testing.T) {
	store := memorydb.New(TotalColumns)
	defer store.Close()

	header := &types.Header{
		Number:     big.NewInt(1337),
		Difficulty: big.NewInt(1),
		Extra:      []byte("test header"),
	}
	// Missing headers read back as nil without error.
	got, err := ReadHeader(store, header.Hash())
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, WriteHeader(store, header))

	got, err = ReadHeader(store, header.Hash())
	require.NoError(t, err)
	require.Equal(t, header.Hash(), got.Hash())
	require.Equal(t, header.Number.Uint64(), got.Number.Uint64())

	// Garbage under a header key is a malformed store, not a miss.
	badHash := common.HexToHash("0xbad")
	require.NoError(t, store.Put(ColHeaders, badHash.Bytes(), []byte("not rlp")))
	_, err = ReadHeader(store, badHash)
	require.Error(t, err)
}

func TestBloomJournalStorage(t *testing.T) {
	store := memorydb.New(TotalColumns)
	defer store.Close()

	// Nothing committed yet.
	restored, err := ReadAccountBloom(store)
	require.NoError(t, err)
	require.Nil(t, restored)

	filter := bloom.New(AccountBloomSpace, AccountBloomPreset)
	keys := [][]byte{
		common.HexToHash("0x01").Bytes(),
		common.HexToHash("0x02").Bytes(),
		common.HexToHash("0x03").Bytes(),
	}
	for _, key := range keys {
		filter.Set(key)
	}
	batch := store.NewBatch()
	require.NoError(t, WriteBloomJournal(batch, filter.DrainJournal()))
	require.NoError(t, batch.Write())

	restored, err = ReadAccountBloom(store)
	require.NoError(t, err)
	require.NotNil(t, restored)
	require.Equal(t, filter.K(), restored.K())
	require.Equal(t, filter.Parts(), restored.Parts())
	for _, key := range keys {
		require.True(t, restored.Check(key))
	}
	require.False(t, restored.Check(common.HexToHash("0x04").Bytes()))
}

func TestBloomJournalValidation(t *testing.T) {
	store := memorydb.New(TotalColumns)
	defer store.Close()

	batch := store.NewBatch()
	err := WriteBloomJournal(batch, bloom.Journal{HashFunctions: 0})
	require.Error(t, err)
	err = WriteBloomJournal(batch, bloom.Journal{HashFunctions: 256})
	require.Error(t, err)

	// A corrupt hash count entry fails the read.
	require.NoError(t, store.Put(ColAccountBloom, accountBloomHashCountKey, []byte{1, 2}))
	_, err = ReadAccountBloom(store)
	require.Error(t, err)
}
