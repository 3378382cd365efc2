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

package migrations

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariesdevil/parity/db"
	"github.com/ariesdevil/parity/kvdb"
	"github.com/ariesdevil/parity/kvdb/leveldb"
	"github.com/ariesdevil/parity/migration"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestUpgradeFreshInstall(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chaindata")

	version, err := Upgrade(dbPath, migration.DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(dbPath), versionFile))
	require.NoError(t, err)
	require.Equal(t, "10", string(data))

	// A second run finds the version current and does nothing.
	version, err = Upgrade(dbPath, migration.DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)
}

func TestUpgradeUnknownVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chaindata")
	require.NoError(t, os.MkdirAll(dbPath, 0755))

	// A database without a version file cannot be safely migrated.
	_, err := Upgrade(dbPath, migration.DefaultConfig)
	require.ErrorIs(t, err, ErrUnknownVersion)
}

func TestUpgradeFutureVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chaindata")
	require.NoError(t, os.MkdirAll(dbPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dbPath), versionFile), []byte("11"), 0644))

	_, err := Upgrade(dbPath, migration.DefaultConfig)
	require.ErrorIs(t, err, ErrFutureVersion)
}

func TestUpgradeCorruptVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chaindata")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dbPath), versionFile), []byte("not a number"), 0644))

	_, err := Upgrade(dbPath, migration.DefaultConfig)
	require.Error(t, err)
}

func TestUpgradeFullChain(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "chaindata")

	// A v8 database has four columns and, here, no chain data worth a bloom.
	source, err := leveldb.New(dbPath, 0, 0, 4, false)
	require.NoError(t, err)
	batch := source.NewBatch()
	for col := kvdb.Column(0); col < 4; col++ {
		for i := 0; i < 50; i++ {
			require.NoError(t, batch.Put(col, []byte(fmt.Sprintf("key-%d-%02d", col, i)), []byte(fmt.Sprintf("value-%d", i))))
		}
	}
	require.NoError(t, batch.Write())
	require.NoError(t, source.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, versionFile), []byte("8"), 0644))

	version, err := Upgrade(dbPath, migration.DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)

	// The migrated database replaced the original in place; nothing of the
	// working directories or the backup survives.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	require.ElementsMatch(t, []string{"chaindata", versionFile, "migration.lock"}, names)

	data, err := os.ReadFile(filepath.Join(dir, versionFile))
	require.NoError(t, err)
	require.Equal(t, "10", string(data))

	migrated, err := leveldb.New(dbPath, 0, 0, db.TotalColumns, true)
	require.NoError(t, err)
	defer migrated.Close()
	for col := kvdb.Column(0); col < 4; col++ {
		for i := 0; i < 50; i++ {
			got, err := migrated.Get(col, []byte(fmt.Sprintf("key-%d-%02d", col, i)))
			require.NoError(t, err)
			require.Equal(t, []byte(fmt.Sprintf("value-%d", i)), got)
		}
	}
	// No chain head, so no bloom was committed.
	filter, err := db.ReadAccountBloom(migrated)
	require.NoError(t, err)
	require.Nil(t, filter)
}

func TestUpgradeRebuildsBloom(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "chaindata")
	accountKeys := makeAccountKeys(16)
	root, stateNodes := makeStateTrie(t, accountKeys)

	// A v9 database carrying a small but real account trie.
	source, err := leveldb.New(dbPath, 0, 0, db.TotalColumns-1, false)
	require.NoError(t, err)
	batch := source.NewBatch()
	for key, value := range stateNodes {
		require.NoError(t, batch.Put(db.ColState, []byte(key), value))
	}
	header := &types.Header{
		Root:       root,
		Number:     big.NewInt(0),
		Difficulty: big.NewInt(0),
	}
	require.NoError(t, db.WriteHeader(batch, header))
	require.NoError(t, db.WriteHeadBlockHash(batch, header.Hash()))
	require.NoError(t, batch.Write())
	require.NoError(t, source.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, versionFile), []byte("9"), 0644))

	version, err := Upgrade(dbPath, migration.DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)

	migrated, err := leveldb.New(dbPath, 0, 0, db.TotalColumns, true)
	require.NoError(t, err)
	defer migrated.Close()

	filter, err := db.ReadAccountBloom(migrated)
	require.NoError(t, err)
	require.NotNil(t, filter)
	for _, key := range accountKeys {
		require.True(t, filter.Check(key))
	}
}
