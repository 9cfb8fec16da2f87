// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/google/uuid"
)

func TestInitRequiresDatabaseURL(t *testing.T) {
	if err := Init(testContext(), ""); !errors.Is(err, ErrDatabaseURLEnvVarNotSet) {
		t.Fatalf("expected ErrDatabaseURLEnvVarNotSet, got %v", err)
	}
}

func TestInitInvalidDatabaseURL(t *testing.T) {
	if err := Init(testContext(), "postgres://"); err == nil {
		t.Fatalf("expected error for invalid database url")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(GetEmbeddedMigrations(), MigrationsDir)
	if err != nil {
		t.Fatalf("expected embedded migrations: %v", err)
	}

	if len(entries) == 0 {
		t.Fatalf("expected at least one migration")
	}
}

func TestGetPoolAndClose(t *testing.T) {
	requireDatabase(t)

	if GetPool() == nil {
		t.Fatalf("expected pool to be initialized")
	}

	if err := Ping(testContext()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	Close()

	if err := Ping(testContext()); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
		t.Fatalf("expected uninitialized error after Close, got %v", err)
	}

	if err := initTestPool(testContext(), baseDatabaseURL, testSchemaName); err != nil {
		t.Fatalf("failed to re-init pool: %v", err)
	}
}

func TestSyncSchemaIsIdempotent(t *testing.T) {
	requireDatabase(t)

	searchPathURL, err := withSearchPath(baseDatabaseURL, testSchemaName)
	if err != nil {
		t.Fatalf("withSearchPath failed: %v", err)
	}

	if err := SyncSchema(testContext(), searchPathURL); err != nil {
		t.Fatalf("SyncSchema failed: %v", err)
	}
}

func TestOperationsRequirePool(t *testing.T) {
	if baseDatabaseURL != "" {
		t.Skip("pool is initialized when DATABASE_URL is set")
	}

	ctx := testContext()

	if _, err := CountUsers(ctx); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
		t.Fatalf("expected uninitialized error, got %v", err)
	}

	if err := SyncSystemGuidelines(ctx); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
		t.Fatalf("expected uninitialized error, got %v", err)
	}

	if _, err := LastCompletionDates(ctx, uuid.Nil); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
		t.Fatalf("expected uninitialized error, got %v", err)
	}
}
