// Copyright 2025 The parity-go Authors
// This file is part of parity-go.
//
// parity-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// parity-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with parity-go. If not, see <http://www.gnu.org/licenses/>.

// parity-migrate upgrades an offline chain database to the current schema
// version.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariesdevil/parity/migration"
	"github.com/ariesdevil/parity/migrations"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	datadirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory containing the chain database",
		Required: true,
	}
	batchSizeFlag = &cli.IntFlag{
		Name:  "batch-size",
		Usage: "Number of buffered entries per migration write transaction",
		Value: migration.DefaultConfig.BatchSize,
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
)

func main() {
	app := &cli.App{
		Name:   "parity-migrate",
		Usage:  "upgrade a chain database to the current schema version",
		Flags:  []cli.Flag{datadirFlag, batchSizeFlag, verbosityFlag},
		Action: migrate,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrate(ctx *cli.Context) error {
	usecolor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)), usecolor)
	log.SetDefault(log.NewLogger(handler))

	dbPath := filepath.Join(ctx.String(datadirFlag.Name), "chaindata")
	config := migration.Config{BatchSize: ctx.Int(batchSizeFlag.Name)}

	version, err := migrations.Upgrade(dbPath, config)
	if err != nil {
		return err
	}
	log.Info("Database schema is current", "version", version)
	return nil
}
