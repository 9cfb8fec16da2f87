// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/metrics"
	"github.com/humaidq/checkup/screening"
)

var (
	errTestBoom              = errors.New("boom")
	errTestShouldNotBeCalled = errors.New("should not be called")
)

type testSession struct {
	id          string
	data        map[interface{}]interface{}
	flash       interface{}
	regenerated bool
}

func newTestSession() *testSession {
	return &testSession{
		id:   "test-session",
		data: make(map[interface{}]interface{}),
	}
}

func (s *testSession) ID() string {
	return s.id
}

func (s *testSession) RegenerateID(http.ResponseWriter, *http.Request) error {
	s.regenerated = true
	s.id = "regenerated-session"
	return nil
}

func (s *testSession) Get(key interface{}) interface{} {
	return s.data[key]
}

func (s *testSession) Set(key, val interface{}) {
	s.data[key] = val
}

func (s *testSession) SetFlash(val interface{}) {
	s.flash = val
}

func (s *testSession) Delete(key interface{}) {
	delete(s.data, key)
}

func (s *testSession) Flush() {
	s.data = make(map[interface{}]interface{})
}

func (s *testSession) Encode() ([]byte, error) {
	return nil, nil
}

func (s *testSession) HasChanged() bool {
	return true
}

type testCSRF struct {
	token string
}

func (c testCSRF) Token() string {
	return c.token
}

func (c testCSRF) ValidToken(string) bool {
	return true
}

func (c testCSRF) Error(http.ResponseWriter) {}

func (c testCSRF) Validate(flamego.Context) {}

// testSessionStore is a session.Store that also lists user sessions.
type testSessionStore struct {
	listed    []db.SessionInfo
	revoked   int64
	gotUserID uuid.UUID
	gotSID    string
}

func (*testSessionStore) Exist(context.Context, string) bool { return false }

func (*testSessionStore) Read(_ context.Context, sid string) (session.Session, error) {
	return newTestSession(), nil
}

func (*testSessionStore) Destroy(context.Context, string) error { return nil }

func (*testSessionStore) Touch(context.Context, string) error { return nil }

func (*testSessionStore) Save(context.Context, session.Session) error { return nil }

func (*testSessionStore) GC(context.Context) error { return nil }

func (s *testSessionStore) ListUserSessions(_ context.Context, userID uuid.UUID, currentID string) ([]db.SessionInfo, error) {
	s.gotUserID, s.gotSID = userID, currentID
	return s.listed, nil
}

func (s *testSessionStore) RevokeOtherSessions(_ context.Context, userID uuid.UUID, currentID string) (int64, error) {
	s.gotUserID, s.gotSID = userID, currentID
	return s.revoked, nil
}

// testEnv wires handlers with fake dependencies the way the server does.
type testEnv struct {
	session *testSession
	store   *testSessionStore
	cache   *db.ProfileCache
	clock   screening.FixedClock
	metrics *metrics.Metrics
	userID  uuid.UUID

	profile    *db.Profile
	profileErr error
}

func newTestEnv() *testEnv {
	env := &testEnv{
		session: newTestSession(),
		store:   &testSessionStore{},
		clock:   screening.FixedClock{Time: time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)},
		metrics: metrics.New(),
		userID:  uuid.New(),
	}

	env.cache = db.NewProfileCache(time.Minute, func(context.Context, uuid.UUID) (*db.Profile, error) {
		if env.profileErr != nil {
			return nil, env.profileErr
		}
		if env.profile == nil {
			return nil, db.ErrProfileNotFound
		}
		return env.profile, nil
	})

	return env
}

func (e *testEnv) signIn(isAdmin bool) {
	e.session.Set(sessionAuthenticatedKey, true)
	e.session.Set(db.SessionUserIDKey, e.userID.String())
	e.session.Set(sessionIsAdminKey, isAdmin)
	e.session.Set(sessionDisplayNameKey, "Test User")
}

func (e *testEnv) setProfile(dob time.Time, gender screening.Gender) {
	e.profile = &db.Profile{UserID: e.userID, DateOfBirth: dob, Gender: gender}
	e.cache.Purge()
}

func (e *testEnv) actor(isAdmin bool) db.Actor {
	return db.Actor{UserID: e.userID, IsAdmin: isAdmin}
}

func (e *testEnv) app(register func(f *flamego.Flame)) *flamego.Flame {
	f := flamego.New()
	f.Use(func(c flamego.Context) {
		c.MapTo(e.session, (*session.Session)(nil))
		c.MapTo(e.store, (*session.Store)(nil))
		c.MapTo(e.clock, (*screening.Clock)(nil))
		c.Map(e.cache, e.metrics)
		c.Next()
	})

	register(f)

	return f
}

func swapFn[T any](t *testing.T, target *T, value T) {
	t.Helper()

	original := *target
	*target = value

	t.Cleanup(func() {
		*target = original
	})
}

func perform(t *testing.T, f *flamego.Flame, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}

	return out
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}

func assertErrorMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()

	payload := decodeBody[errorResponse](t, rec)
	if payload.Error != want {
		t.Fatalf("unexpected error message: got %q, want %q", payload.Error, want)
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func sampleGuidelines(owner string) []screening.Guideline {
	return []screening.Guideline{
		{
			ID:         uuid.NewString(),
			Name:       "Blood pressure",
			Genders:    []screening.GuidelineGender{screening.GuidelineGenderAll},
			Visibility: screening.VisibilityPublic,
			CreatedBy:  screening.SystemOwner,
			AgeRanges: []screening.AgeBand{
				{Min: 18, Max: intPtr(39), FrequencyMonths: intPtr(36)},
				{Min: 40, Frequency: strPtr("Every year"), FrequencyMonths: intPtr(12)},
			},
		},
		{
			ID:         uuid.NewString(),
			Name:       "Bone density",
			Genders:    []screening.GuidelineGender{screening.GuidelineGenderFemale},
			Visibility: screening.VisibilityPublic,
			CreatedBy:  screening.SystemOwner,
			AgeRanges:  []screening.AgeBand{{Min: 65, FrequencyMonths: intPtr(24)}},
		},
		{
			ID:         uuid.NewString(),
			Name:       "Skin check",
			Genders:    []screening.GuidelineGender{screening.GuidelineGenderAll},
			Visibility: screening.VisibilityPrivate,
			CreatedBy:  owner,
			AgeRanges:  []screening.AgeBand{{Min: 18, FrequencyMonths: intPtr(12)}},
		},
	}
}
