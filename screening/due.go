/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import (
	"fmt"
	"strings"
	"time"
)

// DueDate is the computed next occurrence of a screening
type DueDate struct {
	Date     time.Time
	Notes    string
	Upcoming bool
}

// CalculateDue derives the next due date for the matched band.
//
// An upcoming band is due on the day the person reaches its minimum age,
// counted in whole years from today; completion history is ignored. A
// current band is due MinMonths calendar months after the last completion,
// or today when there is no completion on record.
func CalculateDue(today time.Time, lastCompleted *time.Time, freq Frequency, match BandMatch, age int) (DueDate, error) {
	band, upcoming := match.Band()
	if band == nil {
		return DueDate{}, ErrNotApplicable
	}

	today = DateOnly(today)

	var due DueDate

	switch {
	case upcoming:
		years := band.Min - age
		due = DueDate{
			Date:     AddYears(today, years),
			Notes:    relevantInNote(years),
			Upcoming: true,
		}
	case lastCompleted != nil:
		due = DueDate{Date: AddMonths(DateOnly(*lastCompleted), freq.MinMonths)}
	default:
		due = DueDate{Date: today}
	}

	if band.Notes != nil {
		due.Notes = joinNotes(due.Notes, *band.Notes)
	}

	return due, nil
}

func relevantInNote(years int) string {
	unit := "years"
	if years == 1 {
		unit = "year"
	}

	return fmt.Sprintf("Will become relevant in %d %s", years, unit)
}

func joinNotes(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}

	return strings.Join(kept, "; ")
}
