/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultProfileCacheTTL bounds how stale a cached profile may be.
const DefaultProfileCacheTTL = 30 * time.Second

// ProfileLoader fetches a profile from the backing store.
type ProfileLoader func(ctx context.Context, userID uuid.UUID) (*Profile, error)

type profileCacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

// ProfileCache is a short-TTL read-through cache of profiles. Concurrent
// misses for the same user share one load.
type ProfileCache struct {
	ttl  time.Duration
	load ProfileLoader
	now  func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]profileCacheEntry
	// generations counts invalidations per user and epoch counts purges.
	// A load only stores its result if neither moved while it ran.
	generations map[uuid.UUID]uint64
	epoch       uint64
	group       singleflight.Group
}

// NewProfileCache creates a cache. A nil loader reads from the database;
// a non-positive ttl uses DefaultProfileCacheTTL.
func NewProfileCache(ttl time.Duration, load ProfileLoader) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileCacheTTL
	}

	if load == nil {
		load = GetProfile
	}

	return &ProfileCache{
		ttl:         ttl,
		load:        load,
		now:         time.Now,
		entries:     make(map[uuid.UUID]profileCacheEntry),
		generations: make(map[uuid.UUID]uint64),
	}
}

// generation must be called with mu held.
func (c *ProfileCache) generation(userID uuid.UUID) uint64 {
	return c.epoch + c.generations[userID]
}

// Get returns a copy of the user's profile, loading it on a miss or after
// expiry. Load errors are not cached.
func (c *ProfileCache) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if ok && c.now().Before(entry.expiresAt) {
		profile := entry.profile
		return &profile, nil
	}

	value, err, _ := c.group.Do(userID.String(), func() (any, error) {
		c.mu.RLock()
		gen := c.generation(userID)
		c.mu.RUnlock()

		// Every waiter shares this load; it outlives the first caller's
		// cancellation.
		profile, err := c.load(context.WithoutCancel(ctx), userID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation(userID) == gen {
			c.entries[userID] = profileCacheEntry{profile: *profile, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()

		return *profile, nil
	})
	if err != nil {
		return nil, err
	}

	profile := value.(Profile)

	return &profile, nil
}

// Invalidate drops the cached profile of one user.
func (c *ProfileCache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.generations[userID]++
	c.mu.Unlock()
}

// Purge drops every cached profile.
func (c *ProfileCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]profileCacheEntry)
	c.epoch++
	c.mu.Unlock()
}

// Len returns the number of cached entries, expired ones included.
func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
