// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/checkup/screening"
)

type countingLoader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
	gender  screening.Gender
}

func (l *countingLoader) load(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	l.calls.Add(1)

	if l.started != nil {
		l.started <- struct{}{}
	}

	if l.release != nil {
		<-l.release
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.err != nil {
		return nil, l.err
	}

	return &Profile{
		UserID:      userID,
		DateOfBirth: time.Date(1985, time.March, 2, 0, 0, 0, 0, time.UTC),
		Gender:      l.profileGender(),
	}, nil
}

func (l *countingLoader) profileGender() screening.Gender {
	if l.gender == "" {
		return screening.GenderFemale
	}

	return l.gender
}

func TestProfileCacheHitsWithinTTL(t *testing.T) {
	loader := &countingLoader{}
	cache := NewProfileCache(time.Minute, loader.load)

	current := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	userID := uuid.New()

	for range 3 {
		profile, err := cache.Get(testContext(), userID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if profile.UserID != userID {
			t.Fatalf("expected profile for %s, got %s", userID, profile.UserID)
		}
	}

	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("expected 1 load, got %d", got)
	}

	current = current.Add(2 * time.Minute)

	if _, err := cache.Get(testContext(), userID); err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}

	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", got)
	}
}

func TestProfileCacheReturnsCopies(t *testing.T) {
	loader := &countingLoader{}
	cache := NewProfileCache(time.Minute, loader.load)
	userID := uuid.New()

	first, err := cache.Get(testContext(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	first.Gender = screening.GenderMale

	second, err := cache.Get(testContext(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if second.Gender != screening.GenderFemale {
		t.Fatalf("expected cached profile to be unaffected, got %s", second.Gender)
	}
}

func TestProfileCacheInvalidateAndPurge(t *testing.T) {
	loader := &countingLoader{}
	cache := NewProfileCache(time.Minute, loader.load)
	a, b := uuid.New(), uuid.New()

	for _, id := range []uuid.UUID{a, b} {
		if _, err := cache.Get(testContext(), id); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}

	cache.Invalidate(a)

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry after invalidate, got %d", cache.Len())
	}

	cache.Purge()

	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", cache.Len())
	}
}

func TestProfileCacheDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{err: ErrProfileNotFound}
	cache := NewProfileCache(time.Minute, loader.load)
	userID := uuid.New()

	for range 2 {
		if _, err := cache.Get(testContext(), userID); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound, got %v", err)
		}
	}

	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected every miss to load, got %d", got)
	}
}

func TestProfileCacheCoalescesConcurrentMisses(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	cache := NewProfileCache(time.Minute, loader.load)
	userID := uuid.New()

	const callers = 8

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(testContext(), userID)
			errs <- err
		}()
	}

	// Give the callers time to pile up on the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(loader.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}

	if got := loader.calls.Load(); got > 2 {
		t.Fatalf("expected concurrent misses to share a load, got %d loads", got)
	}
}

func TestProfileCacheInvalidateDuringLoadSkipsStore(t *testing.T) {
	loader := &countingLoader{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	cache := NewProfileCache(time.Minute, loader.load)
	userID := uuid.New()

	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(testContext(), userID)
		done <- err
	}()

	<-loader.started
	cache.Invalidate(userID)
	close(loader.release)

	if err := <-done; err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if cache.Len() != 0 {
		t.Fatalf("expected load started before invalidation not to be cached, got %d entries", cache.Len())
	}

	if _, err := cache.Get(testContext(), userID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected a fresh load after invalidation, got %d loads", got)
	}

	if cache.Len() != 1 {
		t.Fatalf("expected fresh load to be cached, got %d entries", cache.Len())
	}
}

func TestProfileCachePurgeDuringLoadSkipsStore(t *testing.T) {
	loader := &countingLoader{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := NewProfileCache(time.Minute, loader.load)

	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(testContext(), uuid.New())
		done <- err
	}()

	<-loader.started
	cache.Purge()
	close(loader.release)

	if err := <-done; err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if cache.Len() != 0 {
		t.Fatalf("expected purged cache to stay empty, got %d entries", cache.Len())
	}
}

func TestProfileCacheLoadIgnoresCallerCancellation(t *testing.T) {
	loader := &countingLoader{gender: screening.GenderMale}
	cache := NewProfileCache(time.Minute, loader.load)

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	profile, err := cache.Get(ctx, uuid.New())
	if err != nil {
		t.Fatalf("expected shared load to ignore caller cancellation, got %v", err)
	}

	if profile.Gender != screening.GenderMale {
		t.Fatalf("expected loaded profile, got %+v", profile)
	}
}

func TestProfileCacheWaitersSurviveFirstCallerCancellation(t *testing.T) {
	loader := &countingLoader{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := NewProfileCache(time.Minute, loader.load)
	userID := uuid.New()

	ctx, cancel := context.WithCancel(testContext())

	first := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, userID)
		first <- err
	}()

	<-loader.started

	second := make(chan error, 1)
	go func() {
		_, err := cache.Get(testContext(), userID)
		second <- err
	}()

	// Let the second caller join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(loader.release)

	if err := <-first; err != nil {
		t.Fatalf("first Get failed: %v", err)
	}

	if err := <-second; err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
}

func TestNewProfileCacheDefaults(t *testing.T) {
	cache := NewProfileCache(0, nil)

	if cache.ttl != DefaultProfileCacheTTL {
		t.Fatalf("expected default ttl, got %s", cache.ttl)
	}

	if cache.load == nil {
		t.Fatalf("expected database loader")
	}
}
