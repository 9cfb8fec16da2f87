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

// userSessionStore is the part of the session store the account pages use.
type userSessionStore interface {
	ListUserSessions(ctx context.Context, userID uuid.UUID, currentID string) ([]db.SessionInfo, error)
	RevokeOtherSessions(ctx context.Context, userID uuid.UUID, currentID string) (int64, error)
}

// ListSessions returns the signed-in user's live sessions.
func ListSessions(c flamego.Context, s session.Session, store session.Store) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	users, ok := store.(userSessionStore)
	if !ok {
		writeError(c, errSessionStore)
		return
	}

	sessions, err := users.ListUserSessions(ctx, actor.UserID, s.ID())
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, sessions)
}

// RevokeOtherSessions signs the user out everywhere but here.
func RevokeOtherSessions(c flamego.Context, s session.Session, store session.Store) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	users, ok := store.(userSessionStore)
	if !ok {
		writeError(c, errSessionStore)
		return
	}

	revoked, err := users.RevokeOtherSessions(ctx, actor.UserID, s.ID())
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, map[string]int64{"revoked": revoked})
}
