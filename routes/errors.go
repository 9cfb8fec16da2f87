/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

var (
	errSessionUserMissing = errors.New("session user missing")
	errInvalidJSON        = errors.New("invalid JSON body")
	errInvalidForm        = errors.New("invalid form body")
	errInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	errEmptyImport        = errors.New("import contains no guidelines")
	errAuthRequired       = errors.New("authentication required")
	errAdminRequired      = errors.New("admin access required")
	errSessionStore       = errors.New("session store does not support listing")
)

// statusForError maps package sentinels to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errAuthRequired),
		errors.Is(err, errSessionUserMissing),
		errors.Is(err, db.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, errAdminRequired),
		errors.Is(err, db.ErrPermissionDenied),
		errors.Is(err, db.ErrPublicRequiresAdmin):
		return http.StatusForbidden

	case errors.Is(err, db.ErrGuidelineNotFound),
		errors.Is(err, db.ErrResultNotFound),
		errors.Is(err, db.ErrProfileNotFound),
		errors.Is(err, db.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, errInvalidJSON),
		errors.Is(err, errInvalidForm),
		errors.Is(err, errInvalidDate),
		errors.Is(err, errEmptyImport),
		errors.Is(err, db.ErrGuidelineNameRequired),
		errors.Is(err, db.ErrResourceInvalid),
		errors.Is(err, db.ErrCompletionInFuture),
		errors.Is(err, screening.ErrNoAgeBands),
		errors.Is(err, screening.ErrInvalidAgeBand),
		errors.Is(err, screening.ErrInvalidFrequency),
		errors.Is(err, screening.ErrUnknownGender),
		errors.Is(err, screening.ErrUnknownVisibility),
		errors.Is(err, screening.ErrInvalidAge),
		errors.Is(err, screening.ErrMalformedGuideline):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
