/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

var CmdSchedule = &cli.Command{
	Name:  "schedule",
	Usage: "Print a screening schedule without a database",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "age",
			Usage: "age in whole years (ignored when --dob is set)",
		},
		&cli.StringFlag{
			Name:     "gender",
			Required: true,
			Usage:    "male, female or other",
		},
		&cli.StringFlag{
			Name:  "dob",
			Usage: "date of birth (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "today",
			Usage: "date to compute the schedule for (YYYY-MM-DD, default today)",
		},
		&cli.StringFlag{
			Name:  "guidelines",
			Usage: "JSON guideline file; defaults to the built-in catalogue",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "completed-first or due-date; default keeps guideline order",
		},
	},
	Action: printSchedule,
}

// scheduleOptions is the parsed form of the schedule command's flags.
type scheduleOptions struct {
	Person     screening.Person
	Today      time.Time
	Guidelines []screening.Guideline
	Sort       screening.SortOrder
}

func parseDateFlag(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDateFlag, raw)
	}

	return t, nil
}

func parseScheduleOptions(cmd *cli.Command, clock screening.Clock) (scheduleOptions, error) {
	opts := scheduleOptions{
		Today: screening.DateOnly(clock.Now()),
		Sort:  screening.ParseSortOrder(cmd.String("sort")),
	}

	if raw := cmd.String("today"); raw != "" {
		today, err := parseDateFlag(raw)
		if err != nil {
			return opts, err
		}
		opts.Today = today
	}

	gender, err := screening.ParseGender(cmd.String("gender"))
	if err != nil {
		return opts, err
	}

	switch {
	case cmd.String("dob") != "":
		dob, err := parseDateFlag(cmd.String("dob"))
		if err != nil {
			return opts, err
		}
		opts.Person = screening.NewPersonFromBirthDate(dob, gender, opts.Today)
	case cmd.IsSet("age"):
		opts.Person = screening.Person{Age: cmd.Int("age"), Gender: gender}
	default:
		return opts, errAgeOrBirthDateRequired
	}

	opts.Guidelines = db.SystemGuidelines()

	if path := cmd.String("guidelines"); path != "" {
		guidelines, err := readGuidelineFile(path)
		if guidelines == nil && err != nil {
			return opts, err
		}
		if err != nil {
			appLogger.Warn("Some guidelines could not be parsed", "path", path, "error", err)
		}
		opts.Guidelines = guidelines
	}

	return opts, nil
}

func printSchedule(_ context.Context, cmd *cli.Command) error {
	opts, err := parseScheduleOptions(cmd, screening.RealClock{})
	if err != nil {
		return err
	}

	return writeSchedule(cmd.Root().Writer, opts)
}

// writeSchedule prints the derived schedule followed by the guidelines in
// relevance order for the person's age.
func writeSchedule(w io.Writer, opts scheduleOptions) error {
	entries := screening.BuildSchedule(screening.ScheduleInput{
		Today:      opts.Today,
		Person:     &opts.Person,
		Guidelines: opts.Guidelines,
	})
	entries = screening.SortEntries(entries, opts.Sort)

	fmt.Fprintf(w, "Schedule for age %d (%s) as of %s\n\n",
		opts.Person.Age, opts.Person.Gender, opts.Today.Format(time.DateOnly))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tDUE\tFREQUENCY\tNOTES")

	for _, e := range entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Status, e.DueDateLabel(), e.FrequencyText, notes)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nBy relevance:")

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, g := range screening.RankForPerson(opts.Guidelines, &opts.Person) {
		fmt.Fprintf(tw, "%d.\t%s\t%d\n", i+1, g.Name, screening.RelevanceScore(g, opts.Person.Age))
	}

	return tw.Flush()
}
