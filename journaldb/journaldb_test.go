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

package journaldb

import (
	"testing"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ariesdevil/parity/kvdb/memorydb"
	"github.com/stretchr/testify/require"
)

func TestViewReadThrough(t *testing.T) {
	store := memorydb.New(2)
	defer store.Close()

	require.NoError(t, store.Put(0, []byte("node"), []byte("data")))
	require.NoError(t, store.Put(1, []byte("node"), []byte("wrong column")))

	view := New(store, OverlayRecent, 0)
	got, err := view.Get([]byte("node"))
	require.NoError(t, err)
	require.Equal(t, []byte("data"), got)

	ok, err := view.Has([]byte("node"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = view.Has([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
	_, err = view.Get([]byte("missing"))
	require.ErrorIs(t, err, kvdb.ErrNotFound)
}

func TestViewRejectsWrites(t *testing.T) {
	store := memorydb.New(1)
	defer store.Close()

	view := New(store, Archive, 0)
	require.ErrorIs(t, view.Put([]byte("key"), []byte("value")), errReadOnly)
	require.ErrorIs(t, view.Delete([]byte("key")), errReadOnly)
	require.ErrorIs(t, view.(interface {
		DeleteRange(start, end []byte) error
	}).DeleteRange([]byte("a"), []byte("z")), errReadOnly)

	batch := view.NewBatch()
	require.ErrorIs(t, batch.Put([]byte("key"), []byte("value")), errReadOnly)
	require.ErrorIs(t, batch.Write(), errReadOnly)

	// The backing store stays untouched.
	require.Zero(t, store.Len(0))
}

func TestViewPrefixIterator(t *testing.T) {
	store := memorydb.New(2)
	defer store.Close()

	for _, key := range []string{"aa1", "aa2", "ab1", "b"} {
		require.NoError(t, store.Put(0, []byte(key), []byte("v"+key)))
	}
	require.NoError(t, store.Put(1, []byte("aa3"), []byte("other")))

	view := New(store, OverlayRecent, 0)

	collect := func(prefix, start []byte) []string {
		it := view.NewIterator(prefix, start)
		defer it.Release()
		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		return keys
	}

	require.Equal(t, []string{"aa1", "aa2", "ab1", "b"}, collect(nil, nil))
	require.Equal(t, []string{"aa1", "aa2"}, collect([]byte("aa"), nil))
	require.Equal(t, []string{"aa2"}, collect([]byte("aa"), []byte("2")))
	require.Empty(t, collect([]byte("zz"), nil))
}

func TestAlgorithmString(t *testing.T) {
	for algo, want := range map[Algorithm]string{
		Archive:       "archive",
		EarlyMerge:    "earlymerge",
		OverlayRecent: "overlayrecent",
		RefCounted:    "refcounted",
		Algorithm(42): "unknown",
	} {
		require.Equal(t, want, algo.String())
	}
}
