/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/checkup/cmd"
	"github.com/humaidq/checkup/logging"
)

func main() {
	logging.Init()

	app := &cli.Command{
		Name:  "checkup",
		Usage: "Checkup - Health Screening Tracker",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdUsers,
			cmd.CmdGuidelines,
			cmd.CmdSchedule,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal("Command failed", "error", err)
	}
}
