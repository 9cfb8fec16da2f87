/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

var CmdGuidelines = &cli.Command{
	Name:  "guidelines",
	Usage: "Manage screening guidelines",
	Flags: []cli.Flag{databaseURLFlag},
	Commands: []*cli.Command{
		{
			Name:      "import",
			Usage:     "Import guidelines from a JSON file",
			ArgsUsage: "<file.json>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner",
					Required: true,
					Usage:    "username the imported guidelines belong to",
				},
			},
			Action: importGuidelines,
		},
		{
			Name:  "list",
			Usage: "List guidelines visible to a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user",
					Required: true,
					Usage:    "username whose view to list",
				},
			},
			Action: listGuidelines,
		},
	},
}

// readGuidelineFile decodes a guideline file. Malformed records come back
// alongside the error.
func readGuidelineFile(path string) ([]screening.Guideline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guideline file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			appLogger.Warn("Failed to close guideline file", "path", path, "error", err)
		}
	}()

	return screening.DecodeGuidelines(f)
}

func importGuidelines(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return errGuidelineFileRequired
	}

	guidelines, err := readGuidelineFile(cmd.Args().First())
	if err != nil {
		return err
	}

	return withDatabase(ctx, cmd, func(ctx context.Context) error {
		owner, err := db.GetUserByUsername(ctx, cmd.String("owner"))
		if err != nil {
			return err
		}

		for _, g := range guidelines {
			created, err := db.CreateGuideline(ctx, db.GuidelineInputFrom(g), owner.Actor())
			if err != nil {
				return fmt.Errorf("failed to import %q: %w", g.Name, err)
			}

			appLogger.Info("Imported guideline", "guideline_id", created.ID, "name", created.Name)
		}

		fmt.Fprintf(cmd.Root().Writer, "Imported %d guidelines\n", len(guidelines))

		return nil
	})
}

func listGuidelines(ctx context.Context, cmd *cli.Command) error {
	return withDatabase(ctx, cmd, func(ctx context.Context) error {
		user, err := db.GetUserByUsername(ctx, cmd.String("user"))
		if err != nil {
			return err
		}

		guidelines, err := db.ListVisibleGuidelines(ctx, user.ID)
		if err != nil {
			return err
		}

		return writeGuidelineTable(cmd.Root().Writer, guidelines)
	})
}

func writeGuidelineTable(w io.Writer, guidelines []screening.Guideline) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tGENDERS\tVISIBILITY\tOWNER")

	for _, g := range guidelines {
		genders := make([]string, len(g.Genders))
		for i, gender := range g.Genders {
			genders[i] = string(gender)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.ID, g.Name, g.Category, strings.Join(genders, ","), g.Visibility, g.CreatedBy)
	}

	return tw.Flush()
}
