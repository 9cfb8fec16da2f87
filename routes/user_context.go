/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/checkup/db"
)

var getUserByIDFn = db.GetUserByID

// CurrentUser returns the signed-in user.
func CurrentUser(c flamego.Context, s session.Session) {
	user, err := resolveSessionUser(c.Request().Context(), s)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, newUserResponse(user))
}

// RequireAdmin blocks access for non-admin users.
func RequireAdmin(s session.Session, c flamego.Context) {
	user, err := resolveSessionUser(c.Request().Context(), s)
	if err != nil {
		logAccessDenied(c, s, "not_admin", http.StatusForbidden, "error", err)
		writeError(c, errAdminRequired)
		return
	}

	if !user.IsAdmin {
		logAccessDenied(c, s, "not_admin", http.StatusForbidden)
		writeError(c, errAdminRequired)
		return
	}

	c.Next()
}

func getSessionUserID(s session.Session) (string, bool) {
	userID, ok := s.Get(db.SessionUserIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}

	return userID, true
}

// sessionActor returns the permission subject of the signed-in user.
func sessionActor(ctx context.Context, s session.Session) (db.Actor, error) {
	user, err := resolveSessionUser(ctx, s)
	if err != nil {
		return db.Actor{}, err
	}

	return user.Actor(), nil
}

// resolveSessionUser prefers the user fields cached in the session and
// falls back to the database.
func resolveSessionUser(ctx context.Context, s session.Session) (*db.User, error) {
	userID, ok := getSessionUserID(s)
	if !ok {
		return nil, errSessionUserMissing
	}

	isAdmin, hasAdmin := s.Get(sessionIsAdminKey).(bool)
	displayName, hasName := s.Get(sessionDisplayNameKey).(string)
	if hasAdmin && hasName {
		if parsedID, err := uuid.Parse(userID); err == nil {
			return &db.User{
				ID:          parsedID,
				DisplayName: displayName,
				IsAdmin:     isAdmin,
			}, nil
		}
	}

	user, err := getUserByIDFn(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.Set(sessionDisplayNameKey, user.DisplayName)
	s.Set(sessionIsAdminKey, user.IsAdmin)

	return user, nil
}
