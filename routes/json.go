/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
)

// maxBodyBytes caps request bodies, guideline imports included.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c flamego.Context, status int, v any) {
	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "path", c.Request().URL.Path, "error", err)
	}
}

// writeError renders err as {"error": ...}. Internal errors are logged and
// reported generically.
func writeError(c flamego.Context, err error) {
	status := statusForError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		message = http.StatusText(status)
	}

	writeJSON(c, status, errorResponse{Error: message})
}

func decodeJSON(c flamego.Context, v any) error {
	body := http.MaxBytesReader(c.ResponseWriter(), c.Request().Request.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}

	return nil
}

// parseDate reads a YYYY-MM-DD date as UTC midnight.
func parseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errInvalidDate
	}

	return parsed, nil
}
