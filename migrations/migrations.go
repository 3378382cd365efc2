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

// Package migrations holds the versioned schema-migration steps of the chain
// database and the upgrade entry point that applies them.
package migrations

import (
	"github.com/ariesdevil/parity/migration"
)

// CurrentVersion is the schema version this release reads and writes.
const CurrentVersion uint32 = 10

// Default builds the manager with the full migration chain registered:
//
//	v9:  trace column added, plain re-column copy
//	v10: account bloom column added, filter rebuilt from the state trie
func Default(config migration.Config) (*migration.Manager, error) {
	manager := migration.NewManager(config)
	for _, step := range []migration.Migration{
		&migration.ChangeColumns{TargetVersion: 9, Pre: 4, Post: 5},
		NewToV10(),
	} {
		if err := manager.Register(step); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
