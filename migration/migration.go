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

// Package migration implements the offline schema-migration engine for the
// column-oriented chain database.
//
// A migration step copies one schema version into the next, column by column,
// through a memory-bounded batch accumulator. Steps never mutate their source:
// each one populates a freshly created destination store, so an aborted
// migration leaves the original database untouched and the partially written
// destination is simply discarded.
package migration

import (
	"errors"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ethereum/go-ethereum/log"
)

var (
	// ErrImpossible means the database content cannot be carried over to the
	// next schema version: a structure it relies on is missing or malformed.
	// This is a hard stop, not a transient condition.
	ErrImpossible = errors.New("migration impossible")

	// ErrCannotAddMigration is returned when registering a migration that
	// does not extend the chain in strictly ascending version order.
	ErrCannotAddMigration = errors.New("migrations must be registered in ascending version order")

	// ErrInProgress is returned when another process holds the migration
	// lock for the same database.
	ErrInProgress = errors.New("database migration already in progress")
)

// Config tunes a migration run.
type Config struct {
	// BatchSize is the number of buffered entries that triggers a flush of
	// the batch accumulator. It bounds memory usage regardless of database
	// size.
	BatchSize int
}

// DefaultConfig is the configuration used when the caller leaves the zero
// value in place.
var DefaultConfig = Config{
	BatchSize: 1024,
}

// Migration is one step of the versioned schema chain. A step declares the
// version it produces and the column layouts on either side; the manager uses
// those to decide applicability and how to lay out the destination before
// invoking Migrate once per source column.
type Migration interface {
	// Version returns the schema version this migration produces.
	Version() uint32

	// PreColumns returns the column count of the schema this migration
	// applies to.
	PreColumns() kvdb.Column

	// Columns returns the column count of the schema this migration
	// produces.
	Columns() kvdb.Column

	// Migrate carries one column from the source store into the destination
	// store. The source is opened read-only; the destination is freshly
	// created and owned by this run.
	Migrate(source kvdb.Database, config Config, dest kvdb.Database, col kvdb.Column) error
}

// ChangeColumns is a migration that only changes the database's column
// layout; every existing column is carried over verbatim.
type ChangeColumns struct {
	// TargetVersion is the schema version this step produces.
	TargetVersion uint32

	// Pre and Post are the column counts before and after the step.
	Pre, Post kvdb.Column

	progress Progress
}

// Version returns the schema version this migration produces.
func (m *ChangeColumns) Version() uint32 {
	return m.TargetVersion
}

// PreColumns returns the column count this migration applies to.
func (m *ChangeColumns) PreColumns() kvdb.Column {
	return m.Pre
}

// Columns returns the column count this migration produces.
func (m *ChangeColumns) Columns() kvdb.Column {
	return m.Post
}

// Migrate copies the column byte for byte into the new layout.
func (m *ChangeColumns) Migrate(source kvdb.Database, config Config, dest kvdb.Database, col kvdb.Column) error {
	batch := NewBatch(config, col)
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
	return batch.Commit(dest)
}

// Progress counts migrated entries and periodically reports them, so long
// runs over large databases stay observable.
type Progress struct {
	entries uint64
}

// Tick registers one migrated entry.
func (p *Progress) Tick() {
	p.entries++
	if p.entries%100000 == 0 {
		log.Info("Migrating database", "entries", p.entries)
	}
}
