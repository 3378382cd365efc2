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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ariesdevil/parity/migration"
	"github.com/ethereum/go-ethereum/log"
)

var (
	// ErrUnknownVersion means a database exists but carries no version file,
	// so there is no way to tell which migration chain applies. Guessing a
	// version could silently run the wrong migrations, so this is a hard
	// stop.
	ErrUnknownVersion = errors.New("unknown database version")

	// ErrFutureVersion means the database was written by a newer release.
	ErrFutureVersion = errors.New("database version is newer than this tool")
)

// versionFile is the name of the schema-version sidecar, stored next to the
// database directory so it survives database re-creation.
const versionFile = "db_version"

// Upgrade brings the database at dbPath up to CurrentVersion and returns the
// resulting version. All migration work happens in sibling temp directories;
// the original database is only replaced once the full chain has succeeded,
// so a failed upgrade leaves it untouched. A missing database is initialised
// as fresh at CurrentVersion without running any migrations.
func Upgrade(dbPath string, config migration.Config) (uint32, error) {
	versionPath := filepath.Join(filepath.Dir(dbPath), versionFile)
	version, haveVersion, err := readVersion(versionPath)
	if err != nil {
		return 0, err
	}
	exists, err := databaseExists(dbPath)
	if err != nil {
		return 0, err
	}
	switch {
	case !haveVersion && !exists:
		// Fresh installation, nothing to migrate.
		if err := writeVersion(versionPath, CurrentVersion); err != nil {
			return 0, err
		}
		return CurrentVersion, nil
	case !haveVersion:
		return 0, fmt.Errorf("%w: no version file at %s", ErrUnknownVersion, versionPath)
	case version > CurrentVersion:
		return 0, fmt.Errorf("%w: have %d, supported %d", ErrFutureVersion, version, CurrentVersion)
	}

	manager, err := Default(config)
	if err != nil {
		return 0, err
	}
	if !manager.IsNeeded(version) {
		log.Debug("No database migration needed", "version", version)
		return version, nil
	}
	log.Info("Migrating database", "path", dbPath, "from", version, "to", CurrentVersion)
	migratedPath, err := manager.Execute(dbPath, version)
	if err != nil {
		return 0, err
	}
	// Swap the migrated database into place. The original is parked under a
	// backup name until the rename of the new one has succeeded.
	backupPath := dbPath + ".bak"
	if err := os.RemoveAll(backupPath); err != nil {
		return 0, err
	}
	if err := os.Rename(dbPath, backupPath); err != nil {
		return 0, err
	}
	if err := os.Rename(migratedPath, dbPath); err != nil {
		// Restore the original so the failure is recoverable.
		os.Rename(backupPath, dbPath)
		return 0, err
	}
	if err := os.RemoveAll(backupPath); err != nil {
		return 0, err
	}
	if err := writeVersion(versionPath, CurrentVersion); err != nil {
		return 0, err
	}
	log.Info("Database migrated", "version", CurrentVersion)
	return CurrentVersion, nil
}

// databaseExists reports whether anything is present at the database path.
func databaseExists(dbPath string) (bool, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// readVersion loads the schema version from the sidecar file. A missing file
// is not an error; the second return reports presence.
func readVersion(path string) (uint32, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	version, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt version file %s: %w", path, err)
	}
	return uint32(version), true, nil
}

// writeVersion persists the schema version to the sidecar file.
func writeVersion(path string, version uint32) error {
	return os.WriteFile(path, []byte(strconv.FormatUint(uint64(version), 10)), 0644)
}
