/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/checkup/db"
)

const (
	sessionAuthenticatedKey = "authenticated"
	sessionIsAdminKey       = "user_is_admin"
	sessionDisplayNameKey   = "user_display_name"
)

var authenticateUserFn = db.AuthenticateUser

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

func newUserResponse(user *db.User) userResponse {
	return userResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	}
}

// Login verifies form credentials and signs the session in.
func Login(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		writeError(c, errInvalidForm)
		return
	}

	username := c.Request().Form.Get("username")
	password := c.Request().Form.Get("password")

	user, err := authenticateUserFn(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			logAccessDenied(c, s, "invalid_credentials", http.StatusUnauthorized,
				"username", db.NormalizeUsername(username))
		}
		writeError(c, err)
		return
	}

	if err := s.RegenerateID(c.ResponseWriter(), c.Request().Request); err != nil {
		writeError(c, err)
		return
	}

	s.Set(sessionAuthenticatedKey, true)
	s.Set(db.SessionUserIDKey, user.ID.String())
	s.Set(sessionIsAdminKey, user.IsAdmin)
	s.Set(sessionDisplayNameKey, user.DisplayName)

	logger.Info("User signed in", "user_id", user.ID, "ip", clientIP(c))

	writeJSON(c, http.StatusOK, newUserResponse(user))
}

// Logout clears the session.
func Logout(s session.Session, c flamego.Context) {
	s.Delete(sessionAuthenticatedKey)
	s.Delete(db.SessionUserIDKey)
	s.Delete(sessionIsAdminKey)
	s.Delete(sessionDisplayNameKey)

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// RequireAuth is a middleware that checks if user is authenticated
func RequireAuth(s session.Session, c flamego.Context) {
	authenticated, ok := s.Get(sessionAuthenticatedKey).(bool)
	if !ok || !authenticated {
		logAccessDenied(c, s, "unauthenticated", http.StatusUnauthorized)
		writeError(c, errAuthRequired)
		return
	}

	c.Next()
}
