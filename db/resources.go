/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// validateResource requires a title and an absolute http(s) URL.
func validateResource(title, rawURL string) (string, string, error) {
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)

	parsed, err := url.Parse(rawURL)
	if title == "" || err != nil || parsed.Host == "" ||
		(parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", "", ErrResourceInvalid
	}

	return title, parsed.String(), nil
}

// AddGuidelineResource attaches a reference link to a guideline the actor
// may edit.
func AddGuidelineResource(ctx context.Context, guidelineID, title, rawURL string, actor Actor) (*GuidelineResource, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	title, link, err := validateResource(title, rawURL)
	if err != nil {
		return nil, err
	}

	g, err := GetGuideline(ctx, guidelineID, actor)
	if err != nil {
		return nil, err
	}

	if !CanEditGuideline(actor, *g) {
		return nil, ErrPermissionDenied
	}

	var resource GuidelineResource
	query := `
		INSERT INTO guideline_resources (guideline_id, title, url)
		VALUES ($1, $2, $3)
		RETURNING id, guideline_id, title, url, created_at
	`

	err = pool.QueryRow(ctx, query, g.ID, title, link).Scan(
		&resource.ID, &resource.GuidelineID, &resource.Title, &resource.URL, &resource.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add guideline resource: %w", err)
	}

	return &resource, nil
}

// ListGuidelineResources returns the links of a guideline in insertion order.
func ListGuidelineResources(ctx context.Context, guidelineID uuid.UUID) ([]GuidelineResource, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT id, guideline_id, title, url, created_at
		FROM guideline_resources
		WHERE guideline_id = $1
		ORDER BY created_at ASC, id ASC
	`, guidelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guideline resources: %w", err)
	}
	defer rows.Close()

	resources := []GuidelineResource{}

	for rows.Next() {
		var resource GuidelineResource
		if err := rows.Scan(
			&resource.ID, &resource.GuidelineID, &resource.Title, &resource.URL, &resource.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan guideline resource: %w", err)
		}
		resources = append(resources, resource)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guideline resources: %w", err)
	}

	return resources, nil
}
