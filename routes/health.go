/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/checkup/db"
	"github.com/humaidq/checkup/metrics"
)

const healthCheckTimeout = 2 * time.Second

var pingDatabaseFn = db.Ping

// Healthz reports whether the database is reachable.
func Healthz(c flamego.Context) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := pingDatabaseFn(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		writeJSON(c, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics serves the Prometheus exposition of m.
func Metrics(c flamego.Context, m *metrics.Metrics) {
	m.Handler().ServeHTTP(c.ResponseWriter(), c.Request().Request)
}
