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

	"github.com/ariesdevil/parity/bloom"
	"github.com/ariesdevil/parity/db"
	"github.com/ariesdevil/parity/journaldb"
	"github.com/ariesdevil/parity/kvdb"
	"github.com/ariesdevil/parity/migration"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/triedb"
)

// generateBloom rebuilds the account bloom filter by replaying the account
// trie at the best block's state root. The trie is the source of truth, so
// whatever filter was persisted before is ignored rather than patched; the
// regenerated journal exactly reflects canonical state.
//
// An empty database (no best block) and a best block without a stored header
// are both fine: there is nothing to index yet, so the upgrade succeeds
// without writing a journal.
func generateBloom(source kvdb.Database, dest kvdb.Database) error {
	log.Debug("Account bloom upgrade started")
	bestHash, err := db.ReadHeadBlockHash(source)
	if err != nil {
		return err
	}
	if bestHash == (common.Hash{}) {
		log.Debug("No best block hash, skipping bloom regeneration")
		return nil
	}
	header, err := db.ReadHeader(source, bestHash)
	if err != nil {
		return err
	}
	if header == nil {
		log.Debug("No best block header, skipping bloom regeneration")
		return nil
	}
	stateRoot := header.Root

	log.Info("Regenerating account bloom", "root", stateRoot)
	filter := bloom.New(db.AccountBloomSpace, db.AccountBloomPreset)

	// The journaling algorithm makes no difference here, since the state
	// view is only ever read.
	nodes := journaldb.New(source, journaldb.OverlayRecent, db.ColState)
	states := triedb.NewDatabase(rawdb.NewDatabase(nodes), triedb.HashDefaults)
	accountTrie, err := trie.New(trie.StateTrieID(stateRoot), states)
	if err != nil {
		return fmt.Errorf("%w: cannot open account trie at %x: %v", migration.ErrImpossible, stateRoot, err)
	}
	nodeIt, err := accountTrie.NodeIterator(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", migration.ErrImpossible, err)
	}
	var accounts uint64
	it := trie.NewIterator(nodeIt)
	for it.Next() {
		filter.Set(it.Key)
		accounts++
	}
	if it.Err != nil {
		return fmt.Errorf("%w: account trie traversal failed at %x: %v", migration.ErrImpossible, stateRoot, it.Err)
	}
	journal := filter.DrainJournal()
	log.Info("Generated account bloom", "accounts", accounts, "parts", len(journal.Entries))

	batch := dest.NewBatch()
	if err := db.WriteBloomJournal(batch, journal); err != nil {
		return fmt.Errorf("failed to commit bloom: %w", err)
	}
	if err := batch.Write(); err != nil {
		return err
	}
	log.Debug("Finished bloom update")
	return nil
}

// ToV10 introduces the account bloom column. All existing columns are copied
// verbatim; once the state column has landed, the bloom filter is rebuilt
// from the copied trie and journaled into the new column.
type ToV10 struct {
	progress migration.Progress
}

// NewToV10 creates the v10 migration step.
func NewToV10() *ToV10 {
	return &ToV10{}
}

// Version returns the schema version this migration produces.
func (m *ToV10) Version() uint32 {
	return 10
}

// PreColumns returns the column count this migration applies to.
func (m *ToV10) PreColumns() kvdb.Column {
	return db.TotalColumns - 1
}

// Columns returns the column count this migration produces.
func (m *ToV10) Columns() kvdb.Column {
	return db.TotalColumns
}

// Migrate copies one column in storage order through the batch accumulator
// and, after the state column completes, regenerates the account bloom as a
// side effect. A bloom failure fails the whole step.
func (m *ToV10) Migrate(source kvdb.Database, config migration.Config, dest kvdb.Database, col kvdb.Column) error {
	batch := migration.NewBatch(config, col)
	it := source.NewIterator(col, nil)
	defer it.Release()

	for it.Next() {
		m.progress.Tick()
		if err := batch.Insert(it.Key(), it.Value(), dest); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	if err := batch.Commit(dest); err != nil {
		return err
	}

	if col == db.ColState {
		return generateBloom(source, dest)
	}
	return nil
}
