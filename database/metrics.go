/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// MetricsHook counts and times every statement run through the pool.
type MetricsHook struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ bun.QueryHook = (*MetricsHook)(nil)

// NewMetricsHook registers the query collectors on reg. Collectors that are
// already registered are reused.
func NewMetricsHook(reg prometheus.Registerer) (*MetricsHook, error) {
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aclimate",
		Subsystem: "db",
		Name:      "queries_total",
		Help:      "Statements executed, by operation and status.",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aclimate",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Statement latency, by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	if reg != nil {
		var err error
		if queries, err = register(reg, queries); err != nil {
			return nil, err
		}
		if duration, err = register(reg, duration); err != nil {
			return nil, err
		}
	}
	return &MetricsHook{queries: queries, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	op := strings.ToLower(event.Operation())
	status := "ok"
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		status = "error"
	}
	h.queries.WithLabelValues(op, status).Inc()
	h.duration.WithLabelValues(op).Observe(time.Since(event.StartTime).Seconds())
}

// Collectors exposes the underlying collectors, mainly for tests.
func (h *MetricsHook) Collectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	return h.queries, h.duration
}
