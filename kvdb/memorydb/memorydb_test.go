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

package memorydb

import (
	"testing"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/stretchr/testify/require"
)

func TestDatabaseReadWrite(t *testing.T) {
	db := New(2)
	defer db.Close()

	require.Equal(t, kvdb.Column(2), db.Columns())

	require.NoError(t, db.Put(0, []byte("key"), []byte("value")))

	ok, err := db.Has(0, []byte("key"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := db.Get(0, []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)

	// Columns are fully independent key spaces.
	ok, err = db.Has(1, []byte("key"))
	require.NoError(t, err)
	require.False(t, ok)
	_, err = db.Get(1, []byte("key"))
	require.ErrorIs(t, err, kvdb.ErrNotFound)

	require.NoError(t, db.Delete(0, []byte("key")))
	_, err = db.Get(0, []byte("key"))
	require.ErrorIs(t, err, kvdb.ErrNotFound)
}

func TestDatabaseClosed(t *testing.T) {
	db := New(1)
	require.NoError(t, db.Close())

	require.Error(t, db.Put(0, []byte("key"), []byte("value")))
	_, err := db.Get(0, []byte("key"))
	require.Error(t, err)
	_, err = db.Has(0, []byte("key"))
	require.Error(t, err)
	require.Error(t, db.Delete(0, []byte("key")))
	require.False(t, db.NewIterator(0, nil).Next())
}

func TestBatchWrite(t *testing.T) {
	db := New(2)
	defer db.Close()

	require.NoError(t, db.Put(1, []byte("stale"), []byte("x")))

	b := db.NewBatch()
	require.NoError(t, b.Put(0, []byte("a"), []byte("1")))
	require.NoError(t, b.Put(1, []byte("b"), []byte("2")))
	require.NoError(t, b.Delete(1, []byte("stale")))
	require.Equal(t, 1+1+1+1+5, b.ValueSize())

	// Nothing lands before Write.
	require.Equal(t, 0, db.Len(0))
	require.NoError(t, b.Write())

	got, err := db.Get(0, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
	got, err = db.Get(1, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
	_, err = db.Get(1, []byte("stale"))
	require.ErrorIs(t, err, kvdb.ErrNotFound)

	b.Reset()
	require.Zero(t, b.ValueSize())
}

func TestBatchReplay(t *testing.T) {
	src := New(2)
	dst := New(2)
	defer src.Close()
	defer dst.Close()

	b := src.NewBatch()
	require.NoError(t, b.Put(0, []byte("a"), []byte("1")))
	require.NoError(t, b.Put(1, []byte("b"), []byte("2")))
	require.NoError(t, b.Replay(dst))

	got, err := dst.Get(0, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
	got, err = dst.Get(1, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
}

func TestIterator(t *testing.T) {
	db := New(2)
	defer db.Close()

	for _, key := range []string{"c", "a", "b", "ab"} {
		require.NoError(t, db.Put(0, []byte(key), []byte("v"+key)))
	}
	require.NoError(t, db.Put(1, []byte("other"), []byte("column")))

	collect := func(it kvdb.Iterator) []string {
		defer it.Release()
		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		return keys
	}

	// Full column walk in binary-alphabetical order.
	require.Equal(t, []string{"a", "ab", "b", "c"}, collect(db.NewIterator(0, nil)))

	// Walk from a start position, inclusive.
	require.Equal(t, []string{"ab", "b", "c"}, collect(db.NewIterator(0, []byte("ab"))))

	// A start past the last key yields nothing.
	require.Empty(t, collect(db.NewIterator(0, []byte("d"))))

	// The other column only sees its own keys.
	require.Equal(t, []string{"other"}, collect(db.NewIterator(1, nil)))
}
