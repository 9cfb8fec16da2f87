/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

var (
	listVisibleGuidelinesFn    = db.ListVisibleGuidelines
	listSelectedGuidelineIDsFn = db.ListSelectedGuidelineIDs
	getGuidelineFn             = db.GetGuideline
	createGuidelineFn          = db.CreateGuideline
	updateGuidelineFn          = db.UpdateGuideline
	deleteGuidelineFn          = db.DeleteGuideline
	setGuidelineSelectedFn     = db.SetGuidelineSelected
	listGuidelineResourcesFn   = db.ListGuidelineResources
	addGuidelineResourceFn     = db.AddGuidelineResource
)

type guidelineView struct {
	screening.Guideline
	System   bool `json:"system"`
	Editable bool `json:"editable"`
	Selected bool `json:"selected"`
}

type guidelineDetail struct {
	guidelineView
	Resources []db.GuidelineResource `json:"resources"`
}

type selectionRequest struct {
	Selected bool `json:"selected"`
}

type resourceRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type importResponse struct {
	Imported   int                   `json:"imported"`
	Guidelines []screening.Guideline `json:"guidelines"`
}

func newGuidelineView(actor db.Actor, g screening.Guideline, selected map[string]bool) guidelineView {
	return guidelineView{
		Guideline: g,
		System:    g.IsSystem(),
		Editable:  db.CanEditGuideline(actor, g),
		Selected:  selected[g.ID],
	}
}

// ListGuidelines returns the guidelines visible to the user. With
// sort=relevance they are ranked for the user's current age.
func ListGuidelines(c flamego.Context, s session.Session, cache *db.ProfileCache, clock screening.Clock) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	guidelines, err := listVisibleGuidelinesFn(ctx, actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	selected, err := listSelectedGuidelineIDsFn(ctx, actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	if strings.EqualFold(c.Query("sort"), "relevance") {
		person, err := loadPerson(ctx, cache, actor.UserID, clock)
		if err != nil {
			writeError(c, err)
			return
		}

		if person != nil {
			guidelines = screening.RankForPerson(guidelines, person)
		}
	}

	views := make([]guidelineView, 0, len(guidelines))
	for _, g := range guidelines {
		views = append(views, newGuidelineView(actor, g, selected))
	}

	writeJSON(c, http.StatusOK, views)
}

// GetGuideline returns one visible guideline with its resources.
func GetGuideline(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	g, err := getGuidelineFn(ctx, c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	selected, err := listSelectedGuidelineIDsFn(ctx, actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	guidelineID, err := uuid.Parse(g.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resources, err := listGuidelineResourcesFn(ctx, guidelineID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, guidelineDetail{
		guidelineView: newGuidelineView(actor, *g, selected),
		Resources:     resources,
	})
}

// CreateGuideline adds a guideline owned by the user.
func CreateGuideline(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	var req screening.Guideline
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	g, err := createGuidelineFn(ctx, db.GuidelineInputFrom(req), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusCreated, newGuidelineView(actor, *g, nil))
}

// UpdateGuideline replaces a guideline the user may edit.
func UpdateGuideline(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	var req screening.Guideline
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	g, err := updateGuidelineFn(ctx, c.Param("id"), db.GuidelineInputFrom(req), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, newGuidelineView(actor, *g, nil))
}

// DeleteGuideline removes a guideline the user may edit.
func DeleteGuideline(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := deleteGuidelineFn(ctx, c.Param("id"), actor); err != nil {
		writeError(c, err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// ImportGuidelines creates every guideline of a JSON document. Any
// malformed record rejects the whole import.
func ImportGuidelines(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	body := http.MaxBytesReader(c.ResponseWriter(), c.Request().Request.Body, maxBodyBytes)

	decoded, err := screening.DecodeGuidelines(body)
	if err != nil {
		if !errors.Is(err, screening.ErrMalformedGuideline) {
			err = fmt.Errorf("%w: %v", errInvalidJSON, err)
		}
		writeError(c, err)
		return
	}

	if len(decoded) == 0 {
		writeError(c, errEmptyImport)
		return
	}

	created := make([]screening.Guideline, 0, len(decoded))

	for _, g := range decoded {
		saved, err := createGuidelineFn(ctx, db.GuidelineInputFrom(g), actor)
		if err != nil {
			logger.Warn("Guideline import stopped", "imported", len(created), "name", g.Name, "error", err)
			writeError(c, err)
			return
		}

		created = append(created, *saved)
	}

	logger.Info("Imported guidelines", "count", len(created), "actor", actor.Owner())

	writeJSON(c, http.StatusCreated, importResponse{Imported: len(created), Guidelines: created})
}

// SetGuidelineSelection opts the user in or out of a guideline.
func SetGuidelineSelection(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	var req selectionRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	if err := setGuidelineSelectedFn(ctx, actor.UserID, c.Param("id"), req.Selected); err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, req)
}

// ListGuidelineResources returns the links of a visible guideline.
func ListGuidelineResources(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	g, err := getGuidelineFn(ctx, c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	guidelineID, err := uuid.Parse(g.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resources, err := listGuidelineResourcesFn(ctx, guidelineID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, resources)
}

// AddGuidelineResource attaches a link to a guideline the user may edit.
func AddGuidelineResource(c flamego.Context, s session.Session) {
	ctx := c.Request().Context()

	actor, err := sessionActor(ctx, s)
	if err != nil {
		writeError(c, err)
		return
	}

	var req resourceRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	resource, err := addGuidelineResourceFn(ctx, c.Param("id"), req.Title, req.URL, actor)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusCreated, resource)
}

// loadPerson returns the user's screening subject, or nil when no profile
// has been saved yet.
func loadPerson(ctx context.Context, cache *db.ProfileCache, userID uuid.UUID, clock screening.Clock) (*screening.Person, error) {
	profile, err := cache.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return profile.Person(clock.Now()), nil
}
