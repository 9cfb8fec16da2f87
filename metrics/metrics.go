/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package metrics exposes Prometheus counters for schedule derivation and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/humaidq/checkup/screening"
)

const namespace = "checkup"

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	scheduleBuilds  prometheus.Counter
	scheduleEntries *prometheus.CounterVec
	placeholders    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		collectors.NewGoCollector(),
	)

	m := &Metrics{
		registry: registry,
		scheduleBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_builds_total",
			Help:      "Number of schedules derived.",
		}),
		scheduleEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_entries_total",
			Help:      "Schedule entries produced, by status.",
		}, []string{"status"}),
		placeholders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_placeholders_total",
			Help:      "Guidelines that failed derivation and were shown as placeholders.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "status"}),
	}

	registry.MustRegister(m.scheduleBuilds, m.scheduleEntries, m.placeholders, m.requestDuration)

	return m
}

// ObserveSchedule records one derived schedule.
func (m *Metrics) ObserveSchedule(entries []screening.ScheduleEntry) {
	if m == nil {
		return
	}

	m.scheduleBuilds.Inc()

	for _, entry := range entries {
		m.scheduleEntries.WithLabelValues(string(entry.Status)).Inc()
		if entry.Placeholder {
			m.placeholders.Inc()
		}
	}
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
