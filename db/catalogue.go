/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"

	"github.com/humaidq/checkup/screening"
)

// SystemGuidelineDefinition is a built-in guideline keyed by a stable
// system key so re-syncing updates rows in place.
type SystemGuidelineDefinition struct {
	Key       string
	Guideline screening.Guideline
}

func months(n int) *int {
	return &n
}

func text(s string) *string {
	return &s
}

var (
	everyone = []screening.GuidelineGender{screening.GuidelineGenderAll}
	women    = []screening.GuidelineGender{screening.GuidelineGenderFemale}
	men      = []screening.GuidelineGender{screening.GuidelineGenderMale}
)

// GetSystemGuidelineDefinitions returns the built-in screening catalogue.
// This is the authoritative source of truth for system guidelines.
func GetSystemGuidelineDefinitions() []SystemGuidelineDefinition {
	return []SystemGuidelineDefinition{
		// ===== CARDIOVASCULAR =====
		{
			Key: "blood-pressure",
			Guideline: screening.Guideline{
				Name:        "Blood pressure",
				Description: "Screening for high blood pressure.",
				Category:    "Cardiovascular",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{
						Min: 18, Max: months(39),
						Frequency:       text("Every 3-5 years"),
						FrequencyMonths: months(36), FrequencyMonthsMax: months(60),
						Notes: text("Yearly if at increased risk"),
					},
					{Min: 40, Frequency: text("Every year"), FrequencyMonths: months(12)},
				},
				Tags: []string{"heart"},
			},
		},
		{
			Key: "cholesterol",
			Guideline: screening.Guideline{
				Name:        "Cholesterol",
				Description: "Lipid panel to assess cardiovascular risk.",
				Category:    "Cardiovascular",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{Min: 40, Max: months(75), Frequency: text("Every 5 years"), FrequencyMonths: months(60)},
				},
				Tags: []string{"heart", "blood test"},
			},
		},

		// ===== METABOLIC =====
		{
			Key: "diabetes",
			Guideline: screening.Guideline{
				Name:        "Prediabetes and type 2 diabetes",
				Description: "Fasting glucose or HbA1c for adults with overweight or obesity.",
				Category:    "Metabolic",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{Min: 35, Max: months(70), Frequency: text("Every 3 years"), FrequencyMonths: months(36)},
				},
				Tags: []string{"blood test"},
			},
		},

		// ===== CANCER =====
		{
			Key: "colorectal",
			Guideline: screening.Guideline{
				Name:        "Colorectal cancer",
				Description: "Stool-based test or direct visualisation.",
				Category:    "Cancer",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{
						Min: 45, Max: months(75),
						Frequency:       text("Every 1-10 years depending on test"),
						FrequencyMonths: months(12), FrequencyMonthsMax: months(120),
						Notes: text("Stool test yearly, or colonoscopy every 10 years"),
					},
					{
						Min: 76, Max: months(85),
						FrequencyMonths: months(12), FrequencyMonthsMax: months(120),
						Notes: text("Decide with your doctor based on prior screening"),
					},
				},
			},
		},
		{
			Key: "mammogram",
			Guideline: screening.Guideline{
				Name:        "Mammogram",
				Description: "Breast cancer screening.",
				Category:    "Cancer",
				Genders:     women,
				AgeRanges: []screening.AgeBand{
					{Min: 40, Max: months(74), Frequency: text("Every 2 years"), FrequencyMonths: months(24)},
				},
			},
		},
		{
			Key: "cervical",
			Guideline: screening.Guideline{
				Name:        "Cervical cancer",
				Description: "Cytology and HPV testing.",
				Category:    "Cancer",
				Genders:     women,
				AgeRanges: []screening.AgeBand{
					{Min: 21, Max: months(29), Label: "21-29", Frequency: text("Pap test every 3 years"), FrequencyMonths: months(36)},
					{
						Min: 30, Max: months(65), Label: "30-65",
						Frequency:       text("Every 3-5 years"),
						FrequencyMonths: months(36), FrequencyMonthsMax: months(60),
						Notes: text("Every 5 years with HPV co-testing"),
					},
				},
			},
		},
		{
			Key: "lung",
			Guideline: screening.Guideline{
				Name:        "Lung cancer",
				Description: "Low-dose CT.",
				Category:    "Cancer",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{
						Min: 50, Max: months(80),
						Frequency: text("Every year"), FrequencyMonths: months(12),
						Notes: text("For a 20 pack-year smoking history"),
					},
				},
			},
		},
		{
			Key: "skin",
			Guideline: screening.Guideline{
				Name:        "Skin check",
				Description: "Full-body skin examination.",
				Category:    "Cancer",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{Min: 18, Frequency: text("Every year"), FrequencyMonths: months(12)},
				},
			},
		},
		{
			Key: "prostate",
			Guideline: screening.Guideline{
				Name:        "Prostate cancer discussion",
				Description: "Shared decision about PSA testing.",
				Category:    "Cancer",
				Genders:     men,
				AgeRanges: []screening.AgeBand{
					{
						Min: 55, Max: months(69),
						Frequency: text("Every 2 years"), FrequencyMonths: months(24),
						Notes: text("Discuss PSA testing with your doctor"),
					},
				},
			},
		},

		// ===== BONE =====
		{
			Key: "bone-density",
			Guideline: screening.Guideline{
				Name:        "Bone density",
				Description: "DXA scan for osteoporosis.",
				Category:    "Bone",
				Genders:     women,
				AgeRanges: []screening.AgeBand{
					{Min: 65, Frequency: text("Every 2 years"), FrequencyMonths: months(24)},
				},
			},
		},

		// ===== EYES AND TEETH =====
		{
			Key: "eye",
			Guideline: screening.Guideline{
				Name:        "Eye examination",
				Description: "Comprehensive eye exam including glaucoma check.",
				Category:    "Vision",
				Genders:     everyone,
				AgeRanges: []screening.AgeBand{
					{Min: 18, Max: months(39), FrequencyMonths: months(24), FrequencyMonthsMax: months(48)},
					{Min: 40, Max: months(64), FrequencyMonths: months(24)},
					{Min: 65, Frequency: text("Every year"), FrequencyMonths: months(12)},
				},
			},
		},
		{
			Key: "dental",
			Guideline: screening.Guideline{
				Name:      "Dental check-up",
				Category:  "Dental",
				Genders:   everyone,
				Frequency: text("Every 6-12 months"),
				AgeRanges: []screening.AgeBand{
					{Min: 1},
				},
				FrequencyMonths:    months(6),
				FrequencyMonthsMax: months(12),
			},
		},
	}
}

// SystemGuidelines returns the catalogue as public system guidelines with
// their keys as IDs, for use without a database.
func SystemGuidelines() []screening.Guideline {
	defs := GetSystemGuidelineDefinitions()
	out := make([]screening.Guideline, len(defs))

	for i, def := range defs {
		g := def.Guideline
		g.ID = def.Key
		g.Visibility = screening.VisibilityPublic
		g.CreatedBy = screening.SystemOwner
		out[i] = g
	}

	return out
}

// SyncSystemGuidelines upserts the built-in catalogue by system key,
// replacing the age bands of existing rows.
func SyncSystemGuidelines(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	definitions := GetSystemGuidelineDefinitions()
	logger.Infof("Syncing %d system guideline definitions to database...", len(definitions))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO guidelines (name, description, category, genders, visibility,
			frequency, frequency_months, frequency_months_max, tags, created_by, system_key)
		VALUES ($1, $2, $3, $4, 'public', $5, $6, $7, $8, $9, $10)
		ON CONFLICT (system_key)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			genders = EXCLUDED.genders,
			visibility = 'public',
			frequency = EXCLUDED.frequency,
			frequency_months = EXCLUDED.frequency_months,
			frequency_months_max = EXCLUDED.frequency_months_max,
			tags = EXCLUDED.tags,
			updated_at = now()
		RETURNING id::text
	`

	for _, def := range definitions {
		g := def.Guideline

		tags := g.Tags
		if tags == nil {
			tags = []string{}
		}

		var id string

		err := tx.QueryRow(ctx, query,
			g.Name, g.Description, g.Category, gendersToText(g.Genders),
			g.Frequency, g.FrequencyMonths, g.FrequencyMonthsMax, tags,
			screening.SystemOwner, def.Key,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to sync system guideline %s: %w", def.Key, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM guideline_age_ranges WHERE guideline_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear age ranges for %s: %w", def.Key, err)
		}

		if err := insertAgeRanges(ctx, tx, id, g.AgeRanges); err != nil {
			return fmt.Errorf("failed to sync age ranges for %s: %w", def.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit system guidelines: %w", err)
	}

	logger.Infof("Successfully synced %d system guidelines", len(definitions))

	return nil
}
