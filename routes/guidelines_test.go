// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/screening"
)

func newGuidelinesTestApp(env *testEnv) *flamego.Flame {
	return env.app(func(f *flamego.Flame) {
		f.Group("/api", func() {
			f.Get("/guidelines", ListGuidelines)
			f.Post("/guidelines", CreateGuideline)
			f.Post("/guidelines/import", RequireAdmin, ImportGuidelines)
			f.Get("/guidelines/{id}", GetGuideline)
			f.Put("/guidelines/{id}", UpdateGuideline)
			f.Delete("/guidelines/{id}", DeleteGuideline)
			f.Put("/guidelines/{id}/selection", SetGuidelineSelection)
			f.Get("/guidelines/{id}/resources", ListGuidelineResources)
			f.Post("/guidelines/{id}/resources", AddGuidelineResource)
		}, RequireAuth)
	})
}

func stubGuidelineListing(t *testing.T, guidelines []screening.Guideline, selected map[string]bool) {
	t.Helper()

	swapFn(t, &listVisibleGuidelinesFn, func(context.Context, uuid.UUID) ([]screening.Guideline, error) {
		return guidelines, nil
	})
	swapFn(t, &listSelectedGuidelineIDsFn, func(context.Context, uuid.UUID) (map[string]bool, error) {
		return selected, nil
	})
}

func TestListGuidelinesMarksSelectionAndEditability(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	guidelines := sampleGuidelines(env.userID.String())
	stubGuidelineListing(t, guidelines, map[string]bool{guidelines[2].ID: true})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines", nil)
	assertStatus(t, rec, http.StatusOK)

	views := decodeBody[[]guidelineView](t, rec)
	if len(views) != 3 {
		t.Fatalf("expected 3 guidelines, got %d", len(views))
	}

	if !views[0].System || views[0].Editable {
		t.Fatalf("expected system guideline to be read-only: %+v", views[0])
	}

	if !views[2].Editable || !views[2].Selected {
		t.Fatalf("expected own guideline to be editable and selected: %+v", views[2])
	}
}

func TestListGuidelinesByRelevance(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)
	env.setProfile(time.Date(1955, time.January, 1, 0, 0, 0, 0, time.UTC), screening.GenderFemale)

	young := screening.Guideline{
		ID: "young", Name: "A young adults", CreatedBy: screening.SystemOwner,
		AgeRanges: []screening.AgeBand{{Min: 18, Max: intPtr(25), FrequencyMonths: intPtr(12)}},
	}
	current := screening.Guideline{
		ID: "current", Name: "B seniors", CreatedBy: screening.SystemOwner,
		AgeRanges: []screening.AgeBand{{Min: 65, FrequencyMonths: intPtr(12)}},
	}
	stubGuidelineListing(t, []screening.Guideline{young, current}, nil)

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines?sort=relevance", nil)
	assertStatus(t, rec, http.StatusOK)

	views := decodeBody[[]guidelineView](t, rec)
	if len(views) != 2 || views[0].ID != "current" {
		t.Fatalf("expected the guideline covering age 70 first, got %+v", views)
	}
}

func TestGetGuidelineIncludesResources(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	g := sampleGuidelines(env.userID.String())[2]
	stubGuidelineListing(t, nil, nil)

	swapFn(t, &getGuidelineFn, func(_ context.Context, id string, viewer db.Actor) (*screening.Guideline, error) {
		if id != g.ID || viewer.UserID != env.userID {
			t.Fatalf("unexpected lookup %q by %s", id, viewer.UserID)
		}
		return &g, nil
	})
	swapFn(t, &listGuidelineResourcesFn, func(context.Context, uuid.UUID) ([]db.GuidelineResource, error) {
		return []db.GuidelineResource{{Title: "Leaflet", URL: "https://example.org"}}, nil
	})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines/"+g.ID, nil)
	assertStatus(t, rec, http.StatusOK)

	detail := decodeBody[struct {
		Name      string                 `json:"name"`
		Editable  bool                   `json:"editable"`
		Resources []db.GuidelineResource `json:"resources"`
	}](t, rec)

	if detail.Name != g.Name || !detail.Editable || len(detail.Resources) != 1 {
		t.Fatalf("unexpected guideline detail: %+v", detail)
	}
}

func TestGetGuidelineNotFound(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	swapFn(t, &getGuidelineFn, func(context.Context, string, db.Actor) (*screening.Guideline, error) {
		return nil, db.ErrGuidelineNotFound
	})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines/missing", nil)
	assertStatus(t, rec, http.StatusNotFound)
	assertErrorMessage(t, rec, db.ErrGuidelineNotFound.Error())
}

func TestCreateGuidelinePassesInputAndActor(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	var got db.GuidelineInput
	swapFn(t, &createGuidelineFn, func(_ context.Context, input db.GuidelineInput, actor db.Actor) (*screening.Guideline, error) {
		if actor != env.actor(false) {
			t.Fatalf("unexpected actor %+v", actor)
		}
		got = input
		return &screening.Guideline{ID: uuid.NewString(), Name: input.Name, CreatedBy: actor.Owner(), AgeRanges: input.AgeRanges}, nil
	})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodPost, "/api/guidelines", map[string]any{
		"name":       "Hearing test",
		"genders":    []string{"all"},
		"age_ranges": []map[string]any{{"min": 50, "frequency_months": 36}},
	})
	assertStatus(t, rec, http.StatusCreated)

	if got.Name != "Hearing test" || len(got.AgeRanges) != 1 || *got.AgeRanges[0].FrequencyMonths != 36 {
		t.Fatalf("unexpected create input: %+v", got)
	}

	view := decodeBody[guidelineView](t, rec)
	if !view.Editable || view.System {
		t.Fatalf("expected own guideline to be editable: %+v", view)
	}
}

func TestCreateGuidelineRejectsBadInput(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	swapFn(t, &createGuidelineFn, func(context.Context, db.GuidelineInput, db.Actor) (*screening.Guideline, error) {
		return nil, screening.ErrNoAgeBands
	})

	f := newGuidelinesTestApp(env)

	rec := perform(t, f, http.MethodPost, "/api/guidelines", "{not json")
	assertStatus(t, rec, http.StatusBadRequest)

	rec = perform(t, f, http.MethodPost, "/api/guidelines", map[string]any{"name": "Empty"})
	assertStatus(t, rec, http.StatusBadRequest)
	assertErrorMessage(t, rec, screening.ErrNoAgeBands.Error())
}

func TestUpdateAndDeleteGuidelinePermissions(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	swapFn(t, &updateGuidelineFn, func(context.Context, string, db.GuidelineInput, db.Actor) (*screening.Guideline, error) {
		return nil, db.ErrPermissionDenied
	})
	swapFn(t, &deleteGuidelineFn, func(_ context.Context, id string, _ db.Actor) error {
		if id == "system" {
			return db.ErrPermissionDenied
		}
		return nil
	})

	f := newGuidelinesTestApp(env)

	rec := perform(t, f, http.MethodPut, "/api/guidelines/system", map[string]any{"name": "x"})
	assertStatus(t, rec, http.StatusForbidden)

	rec = perform(t, f, http.MethodDelete, "/api/guidelines/system", nil)
	assertStatus(t, rec, http.StatusForbidden)

	rec = perform(t, f, http.MethodDelete, "/api/guidelines/mine", nil)
	assertStatus(t, rec, http.StatusNoContent)
}

func TestImportGuidelinesRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	swapFn(t, &createGuidelineFn, func(context.Context, db.GuidelineInput, db.Actor) (*screening.Guideline, error) {
		t.Fatalf("create should not be called")
		return nil, errTestShouldNotBeCalled
	})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodPost, "/api/guidelines/import", "[]")
	assertStatus(t, rec, http.StatusForbidden)
}

func TestImportGuidelinesCreatesEachRecord(t *testing.T) {
	env := newTestEnv()
	env.signIn(true)

	var names []string
	swapFn(t, &createGuidelineFn, func(_ context.Context, input db.GuidelineInput, actor db.Actor) (*screening.Guideline, error) {
		if !actor.IsAdmin {
			t.Fatalf("expected admin actor")
		}
		names = append(names, input.Name)
		return &screening.Guideline{ID: uuid.NewString(), Name: input.Name}, nil
	})

	doc := `{"guidelines": [
		{"name": "Hearing", "visibility": "public", "age_ranges": [{"minAge": "50", "frequency_months": 36}]},
		{"name": "Vision", "genders": "all", "age_ranges": [{"min_age": 40, "max_age": 64, "frequencyMonths": 24}]}
	]}`

	rec := perform(t, newGuidelinesTestApp(env), http.MethodPost, "/api/guidelines/import", doc)
	assertStatus(t, rec, http.StatusCreated)

	body := decodeBody[importResponse](t, rec)
	if body.Imported != 2 || len(names) != 2 || names[0] != "Hearing" || names[1] != "Vision" {
		t.Fatalf("unexpected import result %+v (names %v)", body, names)
	}
}

func TestImportGuidelinesRejectsMalformedDocument(t *testing.T) {
	env := newTestEnv()
	env.signIn(true)

	swapFn(t, &createGuidelineFn, func(context.Context, db.GuidelineInput, db.Actor) (*screening.Guideline, error) {
		t.Fatalf("create should not be called for a malformed import")
		return nil, errTestShouldNotBeCalled
	})

	f := newGuidelinesTestApp(env)

	doc := `[{"name": "Broken", "age_ranges": [{"min_age": "soon"}]}]`
	rec := perform(t, f, http.MethodPost, "/api/guidelines/import", doc)
	assertStatus(t, rec, http.StatusBadRequest)

	rec = perform(t, f, http.MethodPost, "/api/guidelines/import", "[]")
	assertStatus(t, rec, http.StatusBadRequest)
	assertErrorMessage(t, rec, errEmptyImport.Error())
}

func TestSetGuidelineSelection(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	var gotID string
	var gotSelected bool
	swapFn(t, &setGuidelineSelectedFn, func(_ context.Context, userID uuid.UUID, guidelineID string, selected bool) error {
		if userID != env.userID {
			t.Fatalf("unexpected user %s", userID)
		}
		gotID, gotSelected = guidelineID, selected
		return nil
	})

	rec := perform(t, newGuidelinesTestApp(env), http.MethodPut, "/api/guidelines/g-1/selection", map[string]bool{"selected": true})
	assertStatus(t, rec, http.StatusOK)

	if gotID != "g-1" || !gotSelected {
		t.Fatalf("unexpected selection call: %q %v", gotID, gotSelected)
	}
}

func TestAddGuidelineResource(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	swapFn(t, &addGuidelineResourceFn, func(_ context.Context, guidelineID, title, rawURL string, _ db.Actor) (*db.GuidelineResource, error) {
		if rawURL == "" {
			return nil, db.ErrResourceInvalid
		}
		return &db.GuidelineResource{ID: uuid.New(), Title: title, URL: rawURL}, nil
	})

	f := newGuidelinesTestApp(env)

	rec := perform(t, f, http.MethodPost, "/api/guidelines/g-1/resources", resourceRequest{Title: "Leaflet", URL: "https://example.org"})
	assertStatus(t, rec, http.StatusCreated)

	rec = perform(t, f, http.MethodPost, "/api/guidelines/g-1/resources", resourceRequest{Title: "Leaflet"})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestGuidelineRoutesRequireAuth(t *testing.T) {
	env := newTestEnv()

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines", nil)
	assertStatus(t, rec, http.StatusUnauthorized)
}

func TestListGuidelinesByRelevanceWithoutProfile(t *testing.T) {
	env := newTestEnv()
	env.signIn(false)

	stubGuidelineListing(t, sampleGuidelines(env.userID.String()), nil)

	rec := perform(t, newGuidelinesTestApp(env), http.MethodGet, "/api/guidelines?sort=relevance", nil)
	assertStatus(t, rec, http.StatusOK)

	if views := decodeBody[[]guidelineView](t, rec); len(views) != 3 {
		t.Fatalf("expected unranked guidelines without a profile, got %d", len(views))
	}
}
