/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humaidq/checkup/screening"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const guidelineColumns = `
	id::text, name, description, category, genders, visibility,
	frequency, frequency_months, frequency_months_max, tags, created_by
`

// ========== Permission rules ==========

// CanEditGuideline reports whether actor may modify or delete g. Admins may
// edit anything; system guidelines are otherwise read-only; users may edit
// their own guidelines.
func CanEditGuideline(actor Actor, g screening.Guideline) bool {
	if actor.IsAdmin {
		return true
	}

	if g.IsSystem() {
		return false
	}

	return g.CreatedBy == actor.Owner()
}

// CanViewGuideline reports whether viewer may see g.
func CanViewGuideline(viewer Actor, g screening.Guideline) bool {
	return g.Visibility == screening.VisibilityPublic || g.CreatedBy == viewer.Owner()
}

// normalizeGuidelineInput validates input and fills defaults. It enforces
// that only admins publish.
func normalizeGuidelineInput(input GuidelineInput, actor Actor) (GuidelineInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, ErrGuidelineNameRequired
	}

	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)

	visibility, err := screening.ParseVisibility(string(input.Visibility))
	if err != nil {
		return input, err
	}

	if visibility == screening.VisibilityPublic && !actor.IsAdmin {
		return input, ErrPublicRequiresAdmin
	}

	input.Visibility = visibility

	genders := make([]screening.GuidelineGender, 0, len(input.Genders))
	for _, raw := range input.Genders {
		gender, err := screening.ParseGuidelineGender(string(raw))
		if err != nil {
			return input, err
		}
		genders = append(genders, gender)
	}

	if len(genders) == 0 {
		genders = append(genders, screening.GuidelineGenderAll)
	}

	input.Genders = genders

	if input.Tags == nil {
		input.Tags = []string{}
	}

	candidate := screening.Guideline{
		AgeRanges:          input.AgeRanges,
		FrequencyMonths:    input.FrequencyMonths,
		FrequencyMonthsMax: input.FrequencyMonthsMax,
	}
	if err := candidate.Validate(); err != nil {
		return input, err
	}

	return input, nil
}

func gendersToText(genders []screening.GuidelineGender) []string {
	out := make([]string, len(genders))
	for i, g := range genders {
		out[i] = string(g)
	}

	return out
}

// ========== Queries ==========

// ListVisibleGuidelines returns public guidelines and the user's own private
// ones, ordered by name.
func ListVisibleGuidelines(ctx context.Context, userID uuid.UUID) ([]screening.Guideline, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `SELECT ` + guidelineColumns + `
		FROM guidelines
		WHERE visibility = 'public' OR created_by = $1
		ORDER BY name ASC, id ASC
	`

	return loadGuidelines(ctx, pool, query, userID.String())
}

// GetGuideline returns a guideline the viewer can see. Guidelines hidden
// from the viewer read as not found.
func GetGuideline(ctx context.Context, id string, viewer Actor) (*screening.Guideline, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	g, err := getGuideline(ctx, pool, id)
	if err != nil {
		return nil, err
	}

	if !CanViewGuideline(viewer, *g) {
		return nil, ErrGuidelineNotFound
	}

	return g, nil
}

func getGuideline(ctx context.Context, q querier, id string) (*screening.Guideline, error) {
	guidelineID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrGuidelineNotFound
	}

	guidelines, err := loadGuidelines(ctx, q, `SELECT `+guidelineColumns+` FROM guidelines WHERE id = $1`, guidelineID)
	if err != nil {
		return nil, err
	}

	if len(guidelines) == 0 {
		return nil, ErrGuidelineNotFound
	}

	return &guidelines[0], nil
}

func loadGuidelines(ctx context.Context, q querier, query string, args ...any) ([]screening.Guideline, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guidelines: %w", err)
	}
	defer rows.Close()

	guidelines := []screening.Guideline{}
	index := map[string]int{}
	ids := []string{}

	for rows.Next() {
		var (
			g       screening.Guideline
			genders []string
		)

		if err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.Category, &genders, &g.Visibility,
			&g.Frequency, &g.FrequencyMonths, &g.FrequencyMonthsMax, &g.Tags, &g.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan guideline: %w", err)
		}

		for _, gender := range genders {
			g.Genders = append(g.Genders, screening.GuidelineGender(gender))
		}

		index[g.ID] = len(guidelines)
		ids = append(ids, g.ID)
		guidelines = append(guidelines, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guidelines: %w", err)
	}

	if len(ids) == 0 {
		return guidelines, nil
	}

	bandRows, err := q.Query(ctx, `
		SELECT guideline_id::text, min_age, max_age, label, frequency,
			frequency_months, frequency_months_max, notes
		FROM guideline_age_ranges
		WHERE guideline_id = ANY($1::uuid[])
		ORDER BY guideline_id, position ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list age ranges: %w", err)
	}
	defer bandRows.Close()

	for bandRows.Next() {
		var (
			guidelineID string
			band        screening.AgeBand
		)

		if err := bandRows.Scan(
			&guidelineID, &band.Min, &band.Max, &band.Label, &band.Frequency,
			&band.FrequencyMonths, &band.FrequencyMonthsMax, &band.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan age range: %w", err)
		}

		if i, ok := index[guidelineID]; ok {
			guidelines[i].AgeRanges = append(guidelines[i].AgeRanges, band)
		}
	}

	if err := bandRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating age ranges: %w", err)
	}

	return guidelines, nil
}

// ========== Mutations ==========

// CreateGuideline stores a new guideline owned by actor.
func CreateGuideline(ctx context.Context, input GuidelineInput, actor Actor) (*screening.Guideline, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	input, err := normalizeGuidelineInput(input, actor)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var id string
	query := `
		INSERT INTO guidelines (name, description, category, genders, visibility,
			frequency, frequency_months, frequency_months_max, tags, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text
	`

	err = tx.QueryRow(ctx, query,
		input.Name, input.Description, input.Category, gendersToText(input.Genders), input.Visibility,
		input.Frequency, input.FrequencyMonths, input.FrequencyMonthsMax, input.Tags, actor.Owner(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create guideline: %w", err)
	}

	if err := insertAgeRanges(ctx, tx, id, input.AgeRanges); err != nil {
		return nil, err
	}

	g, err := getGuideline(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit guideline creation: %w", err)
	}

	logger.Info("Created guideline", "guideline_id", id, "name", input.Name, "created_by", actor.Owner())

	return g, nil
}

// UpdateGuideline replaces the editable fields and age bands of a guideline.
func UpdateGuideline(ctx context.Context, id string, input GuidelineInput, actor Actor) (*screening.Guideline, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	input, err := normalizeGuidelineInput(input, actor)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(ctx, tx)

	existing, err := getGuideline(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !CanViewGuideline(actor, *existing) {
		return nil, ErrGuidelineNotFound
	}

	if !CanEditGuideline(actor, *existing) {
		return nil, ErrPermissionDenied
	}

	query := `
		UPDATE guidelines
		SET name = $1, description = $2, category = $3, genders = $4, visibility = $5,
			frequency = $6, frequency_months = $7, frequency_months_max = $8, tags = $9,
			updated_at = now()
		WHERE id = $10
	`

	_, err = tx.Exec(ctx, query,
		input.Name, input.Description, input.Category, gendersToText(input.Genders), input.Visibility,
		input.Frequency, input.FrequencyMonths, input.FrequencyMonthsMax, input.Tags, existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update guideline: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM guideline_age_ranges WHERE guideline_id = $1`, existing.ID); err != nil {
		return nil, fmt.Errorf("failed to clear age ranges: %w", err)
	}

	if err := insertAgeRanges(ctx, tx, existing.ID, input.AgeRanges); err != nil {
		return nil, err
	}

	g, err := getGuideline(ctx, tx, existing.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit guideline update: %w", err)
	}

	return g, nil
}

// DeleteGuideline removes a guideline with its age bands, resources,
// selections and recorded results.
func DeleteGuideline(ctx context.Context, id string, actor Actor) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(ctx, tx)

	existing, err := getGuideline(ctx, tx, id)
	if err != nil {
		return err
	}

	if !CanViewGuideline(actor, *existing) {
		return ErrGuidelineNotFound
	}

	if !CanEditGuideline(actor, *existing) {
		return ErrPermissionDenied
	}

	for _, stmt := range []string{
		`DELETE FROM screening_results WHERE guideline_id = $1`,
		`DELETE FROM user_guideline_selections WHERE guideline_id = $1`,
		`DELETE FROM guideline_resources WHERE guideline_id = $1`,
		`DELETE FROM guideline_age_ranges WHERE guideline_id = $1`,
		`DELETE FROM guidelines WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, existing.ID); err != nil {
			return fmt.Errorf("failed to delete guideline: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit guideline deletion: %w", err)
	}

	logger.Info("Deleted guideline", "guideline_id", existing.ID, "actor", actor.Owner())

	return nil
}

func insertAgeRanges(ctx context.Context, tx pgx.Tx, guidelineID string, bands []screening.AgeBand) error {
	query := `
		INSERT INTO guideline_age_ranges (guideline_id, position, min_age, max_age, label,
			frequency, frequency_months, frequency_months_max, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for position, band := range bands {
		_, err := tx.Exec(ctx, query,
			guidelineID, position, band.Min, band.Max, strings.TrimSpace(band.Label),
			band.Frequency, band.FrequencyMonths, band.FrequencyMonthsMax, band.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert age range %d: %w", position, err)
		}
	}

	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Warn("Failed to roll back transaction", "error", err)
	}
}
