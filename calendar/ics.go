/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package calendar renders a screening schedule as an iCalendar feed.
package calendar

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/humaidq/checkup/screening"
)

const (
	prodID       = "-//Checkup//Screening Schedule//EN"
	calendarName = "Health screenings"
	uidDomain    = "checkup"

	// ReminderTrigger fires a display alarm one week before the due date.
	ReminderTrigger = "-P7D"

	// RefreshInterval is the polling hint given to subscribed clients.
	RefreshInterval = 12 * time.Hour

	propRefresh     = "REFRESH-INTERVAL"
	propCalName     = "X-WR-CALNAME"
	propCategories  = "CATEGORIES"
	propDescription = "DESCRIPTION"
)

// stubCalendar is served for an empty schedule; encoders reject a
// VCALENDAR with no components.
const stubCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"

// Encode builds a VCALENDAR with one all-day event per entry that has a
// known due date. Placeholder entries are skipped.
func Encode(entries []screening.ScheduleEntry, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(propCalName, calendarName)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	refresh := ical.NewProp(propRefresh)
	refresh.SetDuration(RefreshInterval)
	cal.Props.Set(refresh)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, entry := range entries {
		if entry.DueDate == nil || entry.Placeholder {
			continue
		}

		event := newEvent(entry)
		event.Props.Set(stamp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(stubCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode iCalendar data: %w", err)
	}

	return buf.Bytes(), nil
}

// EventUID is stable for a guideline and due date so clients update events
// in place across refreshes.
func EventUID(entry screening.ScheduleEntry) string {
	sum := sha256.Sum256([]byte(entry.GuidelineID + "|" + entry.DueDateLabel()))
	return fmt.Sprintf("%x@%s", sum[:12], uidDomain)
}

func newEvent(entry screening.ScheduleEntry) *ical.Event {
	summary := fmt.Sprintf("%s (%s)", entry.Name, entry.Status)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(entry))
	event.Props.SetText(ical.PropSummary, summary)

	if description := eventDescription(entry); description != "" {
		event.Props.SetText(propDescription, description)
	}

	if entry.Category != "" {
		event.Props.SetText(propCategories, entry.Category)
	}

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDate(*entry.DueDate)
	event.Props.Set(start)

	addAlarm(event, summary)

	return event
}

func eventDescription(entry screening.ScheduleEntry) string {
	var lines []string

	if entry.FrequencyText != "" {
		lines = append(lines, "Frequency: "+entry.FrequencyText)
	}

	if entry.LastCompletedDate != nil {
		lines = append(lines, "Last completed: "+entry.LastCompletedDate.Format(time.DateOnly))
	}

	if entry.Notes != nil && *entry.Notes != "" {
		lines = append(lines, *entry.Notes)
	}

	return strings.Join(lines, "\n")
}

func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(propDescription, description)

	// Set directly so the value is not tagged VALUE=TEXT.
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = ReminderTrigger
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}
