/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListSelectedGuidelineIDs returns the set of guidelines the user has opted
// into. An empty set means no preference.
func ListSelectedGuidelineIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT s.guideline_id::text
		FROM user_guideline_selections s
		JOIN guidelines g ON g.id = s.guideline_id
		WHERE s.user_id = $1 AND (g.visibility = 'public' OR g.created_by = $2)
	`, userID, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	defer rows.Close()

	selected := map[string]bool{}

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		selected[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating selections: %w", err)
	}

	return selected, nil
}

// SetGuidelineSelected opts the user in or out of a visible guideline.
func SetGuidelineSelected(ctx context.Context, userID uuid.UUID, guidelineID string, selected bool) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	g, err := GetGuideline(ctx, guidelineID, Actor{UserID: userID})
	if err != nil {
		return err
	}

	if selected {
		_, err = pool.Exec(ctx, `
			INSERT INTO user_guideline_selections (user_id, guideline_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, g.ID)
	} else {
		_, err = pool.Exec(ctx, `
			DELETE FROM user_guideline_selections
			WHERE user_id = $1 AND guideline_id = $2
		`, userID, g.ID)
	}

	if err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}

	return nil
}
