/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/checkup/screening"
)

// ValidateCompletionDate rejects completions dated after today.
func ValidateCompletionDate(completedOn, today time.Time) error {
	if screening.DateOnly(completedOn).After(screening.DateOnly(today)) {
		return ErrCompletionInFuture
	}

	return nil
}

// RecordScreeningResult stores a completion of a guideline visible to the
// user.
func RecordScreeningResult(ctx context.Context, input RecordResultInput, today time.Time) (*ScreeningResult, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	if err := ValidateCompletionDate(input.CompletedOn, today); err != nil {
		return nil, err
	}

	if _, err := GetGuideline(ctx, input.GuidelineID.String(), Actor{UserID: input.UserID}); err != nil {
		return nil, err
	}

	var result ScreeningResult
	query := `
		INSERT INTO screening_results (user_id, guideline_id, completed_on, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, guideline_id, completed_on, notes, created_at
	`

	err := pool.QueryRow(ctx, query,
		input.UserID, input.GuidelineID, screening.DateOnly(input.CompletedOn), input.Notes,
	).Scan(
		&result.ID, &result.UserID, &result.GuidelineID, &result.CompletedOn, &result.Notes, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record screening result: %w", err)
	}

	logger.Info("Recorded screening result",
		"user_id", input.UserID,
		"guideline_id", input.GuidelineID,
		"completed_on", result.CompletedOn.Format(time.DateOnly),
	)

	return &result, nil
}

// ListScreeningResults returns a user's completions of one guideline,
// newest first.
func ListScreeningResults(ctx context.Context, userID, guidelineID uuid.UUID) ([]ScreeningResult, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT id, user_id, guideline_id, completed_on, notes, created_at
		FROM screening_results
		WHERE user_id = $1 AND guideline_id = $2
		ORDER BY completed_on DESC, created_at DESC
	`, userID, guidelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list screening results: %w", err)
	}
	defer rows.Close()

	results := []ScreeningResult{}

	for rows.Next() {
		var result ScreeningResult
		if err := rows.Scan(
			&result.ID, &result.UserID, &result.GuidelineID, &result.CompletedOn, &result.Notes, &result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan screening result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating screening results: %w", err)
	}

	return results, nil
}

// LastCompletionDates maps guideline IDs to the user's latest completion.
func LastCompletionDates(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT guideline_id::text, MAX(completed_on)
		FROM screening_results
		WHERE user_id = $1
		GROUP BY guideline_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list last completions: %w", err)
	}
	defer rows.Close()

	last := map[string]time.Time{}

	for rows.Next() {
		var (
			id          string
			completedOn time.Time
		)
		if err := rows.Scan(&id, &completedOn); err != nil {
			return nil, fmt.Errorf("failed to scan last completion: %w", err)
		}
		last[id] = completedOn
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating last completions: %w", err)
	}

	return last, nil
}

// DeleteScreeningResult removes one of the user's own results.
func DeleteScreeningResult(ctx context.Context, userID uuid.UUID, resultID string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	id, err := uuid.Parse(resultID)
	if err != nil {
		return ErrResultNotFound
	}

	command, err := pool.Exec(ctx, `DELETE FROM screening_results WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete screening result: %w", err)
	}

	if command.RowsAffected() == 0 {
		return ErrResultNotFound
	}

	return nil
}

// ApplyCompletions returns a copy of guidelines with LastCompletedDate set
// from the given map. Guidelines without an entry keep their own value.
func ApplyCompletions(guidelines []screening.Guideline, last map[string]time.Time) []screening.Guideline {
	out := make([]screening.Guideline, len(guidelines))

	for i, g := range guidelines {
		if completedOn, ok := last[g.ID]; ok {
			date := completedOn
			g.LastCompletedDate = &date
		}
		out[i] = g
	}

	return out
}
