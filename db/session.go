/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultSessionLifetime is how long an idle session survives.
const DefaultSessionLifetime = 30 * 24 * time.Hour

// SessionUserIDKey is the session key holding the signed-in user's ID.
const SessionUserIDKey = "user_id"

// SessionStoreConfig contains options for the PostgreSQL session store.
type SessionStoreConfig struct {
	// Lifetime is the duration to have no access to a session before being recycled.
	Lifetime time.Duration
	// Encoder is the encoder to encode session data. Default is session.GobEncoder.
	Encoder session.Encoder
	// Decoder is the decoder to decode session data. Default is session.GobDecoder.
	Decoder session.Decoder
}

// SessionStore implements session.Store on the sessions table. The owning
// user is mirrored into a column so a user's sessions can be listed and
// revoked without decoding every row.
type SessionStore struct {
	config SessionStoreConfig
	now    func() time.Time
}

// SessionInfo describes one live session of a user.
type SessionInfo struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

// SessionStoreIniter returns the session.Initer for the PostgreSQL store.
func SessionStoreIniter() session.Initer {
	return func(_ context.Context, args ...interface{}) (session.Store, error) {
		var config SessionStoreConfig
		if len(args) > 0 {
			var ok bool
			config, ok = args[0].(SessionStoreConfig)
			if !ok {
				return nil, fmt.Errorf("%w: got %T", ErrInvalidSessionConfig, args[0])
			}
		}

		return NewSessionStore(config), nil
	}
}

// NewSessionStore applies defaults to config and returns a store.
func NewSessionStore(config SessionStoreConfig) *SessionStore {
	if config.Lifetime <= 0 {
		config.Lifetime = DefaultSessionLifetime
	}
	if config.Encoder == nil {
		config.Encoder = session.GobEncoder
	}
	if config.Decoder == nil {
		config.Decoder = session.GobDecoder
	}

	return &SessionStore{config: config, now: time.Now}
}

// Exist returns true if the session with given ID exists and hasn't expired.
func (s *SessionStore) Exist(ctx context.Context, sid string) bool {
	if pool == nil {
		return false
	}

	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1 AND expires_at > $2)`,
		sid, s.now(),
	).Scan(&exists)

	return err == nil && exists
}

// Read returns the session with given ID. Missing, expired or undecodable
// sessions come back empty under the same ID.
func (s *SessionStore) Read(ctx context.Context, sid string) (session.Session, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	// The session middleware writes the cookie itself.
	idWriter := func(http.ResponseWriter, *http.Request, string) {}

	var data []byte
	err := pool.QueryRow(ctx,
		`SELECT data FROM sessions WHERE id = $1 AND expires_at > $2`,
		sid, s.now(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.NewBaseSession(sid, s.config.Encoder, idWriter), nil
		}

		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	values, err := s.config.Decoder(data)
	if err != nil {
		logger.Warn("Discarding undecodable session", "error", err)
		return session.NewBaseSession(sid, s.config.Encoder, idWriter), nil
	}

	return session.NewBaseSessionWithData(sid, s.config.Encoder, idWriter, values), nil
}

// Destroy deletes the session with given ID.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	if _, err := pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sid); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}

// Touch extends the expiry of the session with given ID.
func (s *SessionStore) Touch(ctx context.Context, sid string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	_, err := pool.Exec(ctx,
		`UPDATE sessions SET expires_at = $1 WHERE id = $2`,
		s.now().Add(s.config.Lifetime), sid,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// Save persists session data and its owning user.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO sessions (id, data, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			user_id = EXCLUDED.user_id,
			expires_at = EXCLUDED.expires_at`,
		sess.ID(), data, sessionOwner(sess), s.now().Add(s.config.Lifetime),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GC removes expired sessions.
func (s *SessionStore) GC(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, s.now())
	if err != nil {
		return fmt.Errorf("failed to collect sessions: %w", err)
	}

	if tag.RowsAffected() > 0 {
		logger.Debug("Collected expired sessions", "count", tag.RowsAffected())
	}

	return nil
}

// ListUserSessions returns the live sessions of a user, newest expiry
// first, flagging currentID.
func (s *SessionStore) ListUserSessions(ctx context.Context, userID uuid.UUID, currentID string) ([]SessionInfo, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT id, expires_at FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY expires_at DESC`,
		userID, s.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}

	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		info.Current = info.ID == currentID
		sessions = append(sessions, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// RevokeOtherSessions deletes every session of a user except currentID.
func (s *SessionStore) RevokeOtherSessions(ctx context.Context, userID uuid.UUID, currentID string) (int64, error) {
	if pool == nil {
		return 0, ErrDatabaseConnectionNotInitialized
	}

	tag, err := pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND id <> $2`,
		userID, currentID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	logger.Info("Revoked sessions", "user_id", userID, "count", tag.RowsAffected())

	return tag.RowsAffected(), nil
}

func sessionOwner(sess session.Session) *uuid.UUID {
	raw, ok := sess.Get(SessionUserIDKey).(string)
	if !ok {
		return nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}

	return &id
}
