/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import (
	"fmt"
	"slices"
	"time"

	"github.com/humaidq/checkup/logging"
)

var logger = logging.Logger(logging.SourceScreening)

// ScheduleInput is everything BuildSchedule needs; nothing is fetched.
type ScheduleInput struct {
	Today      time.Time
	Person     *Person
	Guidelines []Guideline
	// Selected holds the user's chosen guideline IDs. Empty means no
	// preference, in which case every guideline scoped to the person's
	// gender is scheduled.
	Selected map[string]bool
	// CompletedNow holds guidelines the user just marked completed; they
	// read as completed until the next request recomputes them.
	CompletedNow map[string]bool
}

// BuildSchedule derives one entry per applicable guideline, in input order.
//
// A guideline that fails validation or panics becomes a placeholder entry
// (upcoming, due date unknown) instead of failing the batch. Guidelines
// whose bands are all behind the person are left out.
func BuildSchedule(in ScheduleInput) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(in.Guidelines))
	if in.Person == nil {
		return entries
	}

	for _, g := range in.Guidelines {
		if !isScheduled(in, g) {
			continue
		}

		entry, ok, err := buildEntry(in, g)
		if err != nil {
			logger.Warn("Failed to derive schedule entry",
				"guideline_id", g.ID,
				"guideline", g.Name,
				"error", err,
			)
			entries = append(entries, placeholderEntry(g))
			continue
		}

		if ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

func isScheduled(in ScheduleInput, g Guideline) bool {
	if len(in.Selected) > 0 {
		return in.Selected[g.ID]
	}

	return g.AppliesTo(in.Person.Gender)
}

func buildEntry(in ScheduleInput, g Guideline) (entry ScheduleEntry, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, ok, err = ScheduleEntry{}, false, fmt.Errorf("%w: %v", ErrGuidelinePanic, r)
		}
	}()

	if in.Person.Age < 0 {
		return ScheduleEntry{}, false, fmt.Errorf("%w: %d", ErrInvalidAge, in.Person.Age)
	}

	if err := g.Validate(); err != nil {
		return ScheduleEntry{}, false, err
	}

	match := MatchBand(in.Person.Age, g.AgeRanges)
	if !match.Applicable() {
		return ScheduleEntry{}, false, nil
	}

	band, _ := match.Band()
	freq := ResolveFrequency(band, g)

	due, err := CalculateDue(in.Today, g.LastCompletedDate, freq, match, in.Person.Age)
	if err != nil {
		return ScheduleEntry{}, false, err
	}

	status := Classify(in.Today, due.Date)

	switch {
	case due.Upcoming:
		status = StatusUpcoming
	case in.CompletedNow[g.ID]:
		status = StatusCompleted
	}

	dueDate := due.Date
	entry = ScheduleEntry{
		GuidelineID:   g.ID,
		Name:          g.Name,
		Description:   g.Description,
		Category:      g.Category,
		FrequencyText: freq.Text,
		Status:        status,
		DueDate:       &dueDate,
	}

	if g.LastCompletedDate != nil && !due.Upcoming {
		last := DateOnly(*g.LastCompletedDate)
		entry.LastCompletedDate = &last
	}

	if due.Notes != "" {
		notes := due.Notes
		entry.Notes = &notes
	}

	return entry, true, nil
}

func placeholderEntry(g Guideline) ScheduleEntry {
	return ScheduleEntry{
		GuidelineID: g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		Status:      StatusUpcoming,
		Placeholder: true,
	}
}

// SortOrder selects an explicit display order for schedule entries
type SortOrder string

// Supported sort orders. SortNone keeps input order.
const (
	SortNone           SortOrder = ""
	SortCompletedFirst SortOrder = "completed-first"
	SortDueDate        SortOrder = "due-date"
)

// ParseSortOrder maps a query value to a SortOrder; unknown values keep
// input order.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortCompletedFirst, SortDueDate:
		return SortOrder(raw)
	default:
		return SortNone
	}
}

// SortEntries returns a stably sorted copy of entries.
func SortEntries(entries []ScheduleEntry, order SortOrder) []ScheduleEntry {
	out := slices.Clone(entries)

	switch order {
	case SortCompletedFirst:
		slices.SortStableFunc(out, func(a, b ScheduleEntry) int {
			return statusRank(a.Status) - statusRank(b.Status)
		})
	case SortDueDate:
		slices.SortStableFunc(out, compareDueDates)
	}

	return out
}

// compareDueDates orders earliest first with unknown dates last.
func compareDueDates(a, b ScheduleEntry) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}
