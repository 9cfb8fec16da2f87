// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaidq/checkup/screening"
)

func due(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEncodeEmptyScheduleReturnsStub(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	for _, entries := range [][]screening.ScheduleEntry{
		nil,
		{{GuidelineID: "broken", Name: "Broken", Status: screening.StatusUpcoming, Placeholder: true}},
	} {
		data, err := Encode(entries, now)
		require.NoError(t, err)
		assert.Equal(t, stubCalendar, string(data))
	}
}

func TestEncodeEvents(t *testing.T) {
	t.Parallel()

	notes := "Will become relevant in 2 years"
	entries := []screening.ScheduleEntry{
		{
			GuidelineID:   "bp",
			Name:          "Blood pressure",
			Category:      "Cardiovascular",
			FrequencyText: "Every year (min 12 months)",
			Status:        screening.StatusOverdue,
			DueDate:       due(2025, time.January, 4),
		},
		{
			GuidelineID: "mammogram",
			Name:        "Mammogram",
			Status:      screening.StatusUpcoming,
			DueDate:     due(2027, time.June, 15),
			Notes:       &notes,
		},
		{GuidelineID: "broken", Name: "Broken", Status: screening.StatusUpcoming, Placeholder: true},
	}

	data, err := Encode(entries, time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	name, err := cal.Props.Text("X-WR-CALNAME")
	require.NoError(t, err)
	assert.Equal(t, calendarName, name)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Blood pressure (overdue)", summary)

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, EventUID(entries[0]), uid)

	start := events[0].Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, start)
	assert.Equal(t, "20250104", start.Value)

	description, err := events[1].Props.Text("DESCRIPTION")
	require.NoError(t, err)
	assert.Contains(t, description, notes)

	require.Len(t, events[0].Children, 1)
	assert.Equal(t, ical.CompAlarm, events[0].Children[0].Name)
	assert.True(t, strings.Contains(string(data), "TRIGGER:"+ReminderTrigger))
}

func TestEventUIDIsStable(t *testing.T) {
	t.Parallel()

	entry := screening.ScheduleEntry{GuidelineID: "bp", DueDate: due(2025, time.January, 4)}
	moved := screening.ScheduleEntry{GuidelineID: "bp", DueDate: due(2026, time.January, 4)}

	assert.Equal(t, EventUID(entry), EventUID(entry))
	assert.NotEqual(t, EventUID(entry), EventUID(moved))
	assert.True(t, strings.HasSuffix(EventUID(entry), "@"+uidDomain))
}
