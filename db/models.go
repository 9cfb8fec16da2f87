/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/checkup/screening"
)

// User represents an authenticated account.
type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	DisplayName  string    `db:"display_name"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Actor returns the permission subject for the user.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, IsAdmin: u.IsAdmin}
}

// Actor identifies who is performing a guideline mutation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Owner is the created_by value for guidelines this actor creates.
func (a Actor) Owner() string {
	return a.UserID.String()
}

// Profile holds the demographic data a schedule is derived from
type Profile struct {
	UserID      uuid.UUID        `db:"user_id"`
	DateOfBirth time.Time        `db:"date_of_birth"`
	Gender      screening.Gender `db:"gender"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// Person derives the screening subject as of the given date.
func (p *Profile) Person(at time.Time) *screening.Person {
	if p == nil {
		return nil
	}

	person := screening.NewPersonFromBirthDate(p.DateOfBirth, p.Gender, at)

	return &person
}

// UpsertProfileInput defines data for saving a profile.
type UpsertProfileInput struct {
	DateOfBirth time.Time
	Gender      screening.Gender
}

// GuidelineInput defines data for creating or replacing a guideline.
type GuidelineInput struct {
	Name               string
	Description        string
	Category           string
	Genders            []screening.GuidelineGender
	Visibility         screening.Visibility
	AgeRanges          []screening.AgeBand
	Frequency          *string
	FrequencyMonths    *int
	FrequencyMonthsMax *int
	Tags               []string
}

// GuidelineInputFrom copies the editable fields of a decoded guideline.
func GuidelineInputFrom(g screening.Guideline) GuidelineInput {
	return GuidelineInput{
		Name:               g.Name,
		Description:        g.Description,
		Category:           g.Category,
		Genders:            g.Genders,
		Visibility:         g.Visibility,
		AgeRanges:          g.AgeRanges,
		Frequency:          g.Frequency,
		FrequencyMonths:    g.FrequencyMonths,
		FrequencyMonthsMax: g.FrequencyMonthsMax,
		Tags:               g.Tags,
	}
}

// GuidelineResource links a guideline to external reading
type GuidelineResource struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GuidelineID uuid.UUID `db:"guideline_id" json:"guideline_id"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScreeningResult is one recorded completion of a guideline by a user
type ScreeningResult struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	GuidelineID uuid.UUID `db:"guideline_id" json:"guideline_id"`
	CompletedOn time.Time `db:"completed_on" json:"completed_on"`
	Notes       *string   `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RecordResultInput defines data for recording a completion.
type RecordResultInput struct {
	UserID      uuid.UUID
	GuidelineID uuid.UUID
	CompletedOn time.Time
	Notes       *string
}
