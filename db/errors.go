/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "errors"

var (
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	ErrDatabaseURLEnvVarNotSet          = errors.New("DATABASE_URL environment variable is not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in DATABASE_URL")
	ErrInvalidSessionConfig             = errors.New("invalid session store config")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrProfileNotFound = errors.New("profile not found")

	ErrGuidelineNotFound     = errors.New("guideline not found")
	ErrGuidelineNameRequired = errors.New("guideline name is required")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrPublicRequiresAdmin   = errors.New("only admins may publish guidelines")
	ErrResourceInvalid       = errors.New("resource requires a title and an http(s) url")

	ErrResultNotFound     = errors.New("screening result not found")
	ErrCompletionInFuture = errors.New("completion date is in the future")
)
