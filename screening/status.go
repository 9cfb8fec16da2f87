/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import "time"

// DueSoonMonths is the horizon within which a screening reads as due.
const DueSoonMonths = 3

// Classify compares dates at day granularity: overdue before today, due up
// to DueSoonMonths ahead (inclusive), upcoming after that.
func Classify(today, due time.Time) Status {
	today = DateOnly(today)
	due = DateOnly(due)

	switch {
	case due.Before(today):
		return StatusOverdue
	case !due.After(AddMonths(today, DueSoonMonths)):
		return StatusDue
	default:
		return StatusUpcoming
	}
}

func statusRank(s Status) int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusOverdue:
		return 1
	case StatusDue:
		return 2
	default:
		return 3
	}
}
