/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

var upsertProfileFn = db.UpsertProfile

type profileRequest struct {
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
}

type profileResponse struct {
	DateOfBirth string           `json:"date_of_birth"`
	Gender      screening.Gender `json:"gender"`
	Age         int              `json:"age"`
}

func newProfileResponse(profile *db.Profile, today time.Time) profileResponse {
	return profileResponse{
		DateOfBirth: profile.DateOfBirth.Format(time.DateOnly),
		Gender:      profile.Gender,
		Age:         screening.AgeAt(profile.DateOfBirth, today),
	}
}

// GetProfile returns the signed-in user's profile.
func GetProfile(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock) {
	actor, err := sessionActor(c.Request().Context(), s)
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := cache.Get(c.Request().Context(), actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, newProfileResponse(profile, clock.Now()))
}

// UpdateProfile saves the date of birth and gender schedules derive from.
func UpdateProfile(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock) {
	actor, err := sessionActor(c.Request().Context(), s)
	if err != nil {
		writeError(c, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		writeError(c, err)
		return
	}

	today := clock.Now()
	if screening.DateOnly(dob).After(screening.DateOnly(today)) {
		writeError(c, screening.ErrInvalidAge)
		return
	}

	profile, err := upsertProfileFn(c.Request().Context(), actor.UserID, db.UpsertProfileInput{
		DateOfBirth: dob,
		Gender:      screening.Gender(req.Gender),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	cache.Invalidate(actor.UserID)

	writeJSON(c, http.StatusOK, newProfileResponse(profile, today))
}
