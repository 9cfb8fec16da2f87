/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package screening

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SystemOwner is the CreatedBy value of built-in guidelines.
const SystemOwner = "system"

// Gender represents the sex recorded on a person's profile
type Gender string

// Gender values supported on profiles.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// GuidelineGender scopes a guideline to one sex or everyone
type GuidelineGender string

// GuidelineGender values supported on guidelines.
const (
	GuidelineGenderMale   GuidelineGender = "male"
	GuidelineGenderFemale GuidelineGender = "female"
	GuidelineGenderAll    GuidelineGender = "all"
)

// Visibility controls who can see a guideline
type Visibility string

// Visibility values.
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Status is the derived state of a schedule entry
type Status string

// Status values, in display priority order.
const (
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDue       Status = "due"
	StatusUpcoming  Status = "upcoming"
)

// ParseGender normalises free-form gender input.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "other", "o":
		return GenderOther, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGender, raw)
	}
}

// ParseGuidelineGender normalises guideline gender scope input.
func ParseGuidelineGender(raw string) (GuidelineGender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GuidelineGenderMale, nil
	case "female", "f":
		return GuidelineGenderFemale, nil
	case "all", "any", "unisex", "":
		return GuidelineGenderAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGender, raw)
	}
}

// ParseVisibility normalises visibility input; empty means private.
func ParseVisibility(raw string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "public":
		return VisibilityPublic, nil
	case "private", "":
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVisibility, raw)
	}
}

// AgeBand is one age sub-range of a guideline with its own cadence
type AgeBand struct {
	Min                int     `json:"min"`
	Max                *int    `json:"max,omitempty"`
	Label              string  `json:"label,omitempty"`
	Frequency          *string `json:"frequency,omitempty"`
	FrequencyMonths    *int    `json:"frequency_months,omitempty"`
	FrequencyMonthsMax *int    `json:"frequency_months_max,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// Contains reports whether age falls inside the band. Both ends are inclusive.
func (b AgeBand) Contains(age int) bool {
	if age < b.Min {
		return false
	}

	return b.Max == nil || age <= *b.Max
}

// DisplayLabel returns the label, deriving "45-49" or "75+" when unset.
func (b AgeBand) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}

	if b.Max == nil {
		return strconv.Itoa(b.Min) + "+"
	}

	return strconv.Itoa(b.Min) + "-" + strconv.Itoa(*b.Max)
}

// Validate checks the structural invariants of a band.
func (b AgeBand) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("%w: negative minimum age %d", ErrInvalidAgeBand, b.Min)
	}

	if b.Max != nil && *b.Max < b.Min {
		return fmt.Errorf("%w: max %d below min %d", ErrInvalidAgeBand, *b.Max, b.Min)
	}

	return validateFrequency(b.FrequencyMonths, b.FrequencyMonthsMax)
}

// Guideline is a reusable age/gender-scoped screening recommendation
type Guideline struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	Category           string            `json:"category,omitempty"`
	Genders            []GuidelineGender `json:"genders,omitempty"`
	Visibility         Visibility        `json:"visibility"`
	AgeRanges          []AgeBand         `json:"age_ranges"`
	Frequency          *string           `json:"frequency,omitempty"`
	FrequencyMonths    *int              `json:"frequency_months,omitempty"`
	FrequencyMonthsMax *int              `json:"frequency_months_max,omitempty"`
	LastCompletedDate  *time.Time        `json:"last_completed_date,omitempty"`
	NextDueDate        *time.Time        `json:"next_due_date,omitempty"`
	Tags               []string          `json:"tags,omitempty"`
	CreatedBy          string            `json:"created_by,omitempty"`
}

// Validate checks the guideline has usable age bands and frequencies.
func (g Guideline) Validate() error {
	if len(g.AgeRanges) == 0 {
		return ErrNoAgeBands
	}

	for i, band := range g.AgeRanges {
		if err := band.Validate(); err != nil {
			return fmt.Errorf("age band %d: %w", i, err)
		}
	}

	return validateFrequency(g.FrequencyMonths, g.FrequencyMonthsMax)
}

// AppliesTo reports whether the guideline is scoped to the given gender.
// An empty gender list means everyone.
func (g Guideline) AppliesTo(gender Gender) bool {
	if len(g.Genders) == 0 {
		return true
	}

	for _, scope := range g.Genders {
		if scope == GuidelineGenderAll || string(scope) == string(gender) {
			return true
		}
	}

	return false
}

// IsSystem reports whether the guideline is a built-in definition.
func (g Guideline) IsSystem() bool {
	return g.CreatedBy == SystemOwner
}

func validateFrequency(minMonths, maxMonths *int) error {
	if minMonths != nil && *minMonths < 1 {
		return fmt.Errorf("%w: minimum %d months", ErrInvalidFrequency, *minMonths)
	}

	if maxMonths != nil {
		if minMonths == nil {
			return fmt.Errorf("%w: maximum without minimum", ErrInvalidFrequency)
		}
		if *maxMonths < *minMonths {
			return fmt.Errorf("%w: maximum %d below minimum %d", ErrInvalidFrequency, *maxMonths, *minMonths)
		}
	}

	return nil
}

// Person is the read-only subject a schedule is computed for
type Person struct {
	Age         int        `json:"age"`
	Gender      Gender     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// NewPersonFromBirthDate derives the person's age at the given date.
func NewPersonFromBirthDate(dob time.Time, gender Gender, at time.Time) Person {
	birth := dob
	return Person{
		Age:         AgeAt(dob, at),
		Gender:      gender,
		DateOfBirth: &birth,
	}
}

// AgeAt returns whole years between dob and at, adjusted when the birthday
// has not yet occurred in at's year. Never negative.
func AgeAt(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() ||
		(at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}

	if years < 0 {
		return 0
	}

	return years
}

// ScheduleEntry is one derived row of a person's screening schedule
type ScheduleEntry struct {
	GuidelineID       string     `json:"guideline_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Category          string     `json:"category,omitempty"`
	FrequencyText     string     `json:"frequency_text"`
	Status            Status     `json:"status"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Placeholder       bool       `json:"placeholder,omitempty"`
}

// UnknownDueDate is shown for entries whose due date could not be derived.
const UnknownDueDate = "Unknown"

// DueDateLabel formats the due date as YYYY-MM-DD or "Unknown".
func (e ScheduleEntry) DueDateLabel() string {
	if e.DueDate == nil {
		return UnknownDueDate
	}

	return e.DueDate.Format(time.DateOnly)
}
