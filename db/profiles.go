/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humaidq/checkup/screening"
)

// GetProfile returns the profile of a user, or ErrProfileNotFound.
func GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var profile Profile
	query := `
		SELECT user_id, date_of_birth, gender, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	err := pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.DateOfBirth, &profile.Gender,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}

		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile creates or replaces the profile of a user.
func UpsertProfile(ctx context.Context, userID uuid.UUID, input UpsertProfileInput) (*Profile, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	gender, err := screening.ParseGender(string(input.Gender))
	if err != nil {
		return nil, err
	}

	if input.DateOfBirth.IsZero() {
		return nil, fmt.Errorf("%w: date of birth is required", screening.ErrInvalidAge)
	}

	var profile Profile
	query := `
		INSERT INTO profiles (user_id, date_of_birth, gender)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			updated_at = now()
		RETURNING user_id, date_of_birth, gender, created_at, updated_at
	`

	err = pool.QueryRow(ctx, query, userID, screening.DateOnly(input.DateOfBirth), gender).Scan(
		&profile.UserID, &profile.DateOfBirth, &profile.Gender,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return &profile, nil
}
