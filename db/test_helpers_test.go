// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"

	"github.com/humaidq/checkup/screening"
)

func testContext() context.Context {
	return context.Background()
}

func stringPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}

func mustCreateUser(t *testing.T, username string, isAdmin bool) *User {
	t.Helper()
	user, err := CreateUser(testContext(), CreateUserInput{
		Username: username,
		Password: "correct horse battery",
		IsAdmin:  isAdmin,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func mustCreateGuideline(t *testing.T, actor Actor, name string, visibility screening.Visibility) *screening.Guideline {
	t.Helper()
	g, err := CreateGuideline(testContext(), GuidelineInput{
		Name:       name,
		Visibility: visibility,
		AgeRanges: []screening.AgeBand{
			{Min: 18, Max: intPtr(39), FrequencyMonths: intPtr(36)},
			{Min: 40, FrequencyMonths: intPtr(12), Notes: stringPtr("Yearly after 40")},
		},
	}, actor)
	if err != nil {
		t.Fatalf("failed to create guideline: %v", err)
	}
	return g
}

func testToday() time.Time {
	return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
}
