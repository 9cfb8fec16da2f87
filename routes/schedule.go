/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/checkup/calendar"
	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/metrics"
	"github.com/humaidq/checkup/screening"
)

var (
	lastCompletionDatesFn   = db.LastCompletionDates
	recordScreeningResultFn = db.RecordScreeningResult
	listScreeningResultsFn  = db.ListScreeningResults
	deleteScreeningResultFn = db.DeleteScreeningResult
)

type scheduleResponse struct {
	Today           string                    `json:"today"`
	Person          *screening.Person         `json:"person"`
	ProfileRequired bool                      `json:"profile_required"`
	Entries         []screening.ScheduleEntry `json:"entries"`
}

type completeRequest struct {
	Date  string  `json:"date"`
	Notes *string `json:"notes"`
}

type completeResponse struct {
	Result *db.ScreeningResult       `json:"result"`
	Entry  *screening.ScheduleEntry `json:"entry"`
}

// scheduleDeps groups what a schedule build needs from the request.
type scheduleDeps struct {
	cache   *db.ProfileCache
	clock   screening.Clock
	metrics *metrics.Metrics
}

type builtSchedule struct {
	today   time.Time
	person  *screening.Person
	entries []screening.ScheduleEntry
}

// build derives the user's schedule from their profile, visible guidelines,
// selections and recorded completions.
func (d scheduleDeps) build(ctx context.Context, userID uuid.UUID, completedNow map[string]bool) (builtSchedule, error) {
	today := d.clock.Now()

	person, err := loadPerson(ctx, d.cache, userID, d.clock)
	if err != nil {
		return builtSchedule{}, err
	}

	guidelines, err := listVisibleGuidelinesFn(ctx, userID)
	if err != nil {
		return builtSchedule{}, err
	}

	selected, err := listSelectedGuidelineIDsFn(ctx, userID)
	if err != nil {
		return builtSchedule{}, err
	}

	last, err := lastCompletionDatesFn(ctx, userID)
	if err != nil {
		return builtSchedule{}, err
	}

	entries := screening.BuildSchedule(screening.ScheduleInput{
		Today:        today,
		Person:       person,
		Guidelines:   db.ApplyCompletions(guidelines, last),
		Selected:     selected,
		CompletedNow: completedNow,
	})

	d.metrics.ObserveSchedule(entries)

	return builtSchedule{today: today, person: person, entries: entries}, nil
}

// GetSchedule returns the user's screening schedule, ordered by the sort
// query parameter.
func GetSchedule(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock, m *metrics.Metrics) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	built, err := scheduleDeps{cache: cache, clock: clock, metrics: m}.build(ctx, actor.UserID, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, scheduleResponse{
		Today:           built.today.Format(time.DateOnly),
		Person:          built.person,
		ProfileRequired: built.person == nil,
		Entries:         screening.SortEntries(built.entries, screening.ParseSortOrder(c.Query("sort"))),
	})
}

// ScheduleCalendar serves the schedule as an iCalendar feed.
func ScheduleCalendar(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock, m *metrics.Metrics) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	built, err := scheduleDeps{cache: cache, clock: clock, metrics: m}.build(ctx, actor.UserID, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	body, err := calendar.Encode(built.entries, built.today)
	if err != nil {
		writeError(c, err)
		return
	}

	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="checkup.ics"`)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		logger.Warn("Failed to write calendar", "error", err)
	}
}

// CompleteGuideline records a completion and returns the guideline's
// recomputed schedule entry.
func CompleteGuideline(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock, m *metrics.Metrics) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	guidelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, db.ErrGuidelineNotFound)
		return
	}

	var req completeRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	today := clock.Now()
	completedOn := screening.DateOnly(today)

	if strings.TrimSpace(req.Date) != "" {
		completedOn, err = parseDate(req.Date)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	result, err := recordScreeningResultFn(ctx, db.RecordResultInput{
		UserID:      actor.UserID,
		GuidelineID: guidelineID,
		CompletedOn: completedOn,
		Notes:       req.Notes,
	}, today)
	if err != nil {
		writeError(c, err)
		return
	}

	built, err := scheduleDeps{cache: cache, clock: clock, metrics: m}.build(ctx, actor.UserID, map[string]bool{guidelineID.String(): true})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := completeResponse{Result: result}

	for i := range built.entries {
		if built.entries[i].GuidelineID == guidelineID.String() {
			resp.Entry = &built.entries[i]
			break
		}
	}

	writeJSON(c, http.StatusCreated, resp)
}

// ListResults returns the user's completions of a guideline, newest first.
func ListResults(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	guidelineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, db.ErrGuidelineNotFound)
		return
	}

	results, err := listScreeningResultsFn(ctx, actor.UserID, guidelineID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, results)
}

// DeleteResult removes one of the user's recorded completions.
func DeleteResult(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := deleteScreeningResultFn(ctx, actor.UserID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}
