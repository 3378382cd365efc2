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

package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariesdevil/parity/kvdb"
	"github.com/ariesdevil/parity/kvdb/leveldb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
)

const (
	// migrationCache is the memory in megabytes given to each store opened
	// during a migration. Kept small: migration throughput is dominated by
	// sequential iteration, not cache hits.
	migrationCache = 64

	// migrationHandles is the number of file handles given to each store.
	migrationHandles = 128
)

// Manager owns the closed, version-ordered chain of migration steps and runs
// the ones needed to bring a database from its stored version to the latest.
type Manager struct {
	config     Config
	migrations []Migration
}

// NewManager creates a manager with no registered migrations.
func NewManager(config Config) *Manager {
	return &Manager{config: config}
}

// Register appends a migration step to the chain. Steps must be added in
// strictly ascending version order so version lookup stays unambiguous.
func (m *Manager) Register(migration Migration) error {
	if last := len(m.migrations); last > 0 && migration.Version() <= m.migrations[last-1].Version() {
		return ErrCannotAddMigration
	}
	m.migrations = append(m.migrations, migration)
	return nil
}

// LatestVersion returns the version the full chain produces, or zero if no
// migrations are registered.
func (m *Manager) LatestVersion() uint32 {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version()
}

// IsNeeded reports whether a database at the given version has migrations
// left to run.
func (m *Manager) IsNeeded(version uint32) bool {
	return version < m.LatestVersion()
}

// Execute runs every migration needed above the given version against the
// database at oldPath. Each step reads its predecessor read-only and writes a
// fresh sibling directory; intermediate directories are dropped as the chain
// advances. On success the path of the fully migrated database is returned
// and the original directory is left untouched — the caller is responsible
// for swapping it into place. On failure the temp directory of the failed
// step is removed and the error surfaces unchanged.
func (m *Manager) Execute(oldPath string, version uint32) (string, error) {
	migrations := m.migrationsFrom(version)
	if len(migrations) == 0 {
		return "", fmt.Errorf("%w: no migration path from version %d", ErrImpossible, version)
	}
	parent := filepath.Dir(oldPath)

	// Hold an exclusive lock for the whole run; two migrators racing over
	// the same database would corrupt the temp directories.
	lock := flock.New(filepath.Join(parent, "migration.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return "", err
	}
	if !locked {
		return "", ErrInProgress
	}
	defer lock.Unlock()

	currentPath := oldPath
	for _, migration := range migrations {
		start := time.Now()
		log.Info("Starting database migration", "version", migration.Version(),
			"columns", migration.Columns(), "from", currentPath)

		tempPath, err := m.runStep(migration, currentPath, parent)
		if err != nil {
			return "", err
		}
		// The intermediate result of the previous step is no longer needed.
		if currentPath != oldPath {
			if err := os.RemoveAll(currentPath); err != nil {
				return "", err
			}
		}
		currentPath = tempPath
		log.Info("Finished database migration", "version", migration.Version(),
			"elapsed", common.PrettyDuration(time.Since(start)))
	}
	return currentPath, nil
}

// runStep migrates every column of one step into a fresh temp directory and
// returns its path. The temp directory is removed again on any failure.
func (m *Manager) runStep(migration Migration, sourcePath, parent string) (string, error) {
	source, err := leveldb.New(sourcePath, migrationCache, migrationHandles, migration.PreColumns(), true)
	if err != nil {
		return "", err
	}
	defer source.Close()

	tempPath := filepath.Join(parent, fmt.Sprintf("migration-%d", migration.Version()))
	if err := os.RemoveAll(tempPath); err != nil {
		return "", err
	}
	dest, err := leveldb.New(tempPath, migrationCache, migrationHandles, migration.Columns(), false)
	if err != nil {
		return "", err
	}
	for col := kvdb.Column(0); col < migration.PreColumns(); col++ {
		if err := migration.Migrate(source, m.config, dest, col); err != nil {
			dest.Close()
			os.RemoveAll(tempPath)
			return "", fmt.Errorf("migration to version %d failed on column %d: %w", migration.Version(), col, err)
		}
	}
	if err := dest.Close(); err != nil {
		os.RemoveAll(tempPath)
		return "", err
	}
	return tempPath, nil
}

// migrationsFrom returns the chain suffix strictly above the given version.
func (m *Manager) migrationsFrom(version uint32) []Migration {
	for i, migration := range m.migrations {
		if migration.Version() > version {
			return m.migrations[i:]
		}
	}
	return nil
}
