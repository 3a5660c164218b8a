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

package database_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/database"
)

// sample returns the counter value, or the histogram sample count, of the
// series of family name whose labels match.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue series
				}
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsHookCountsQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := database.NewMetricsHook(reg)
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: start})
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT * FROM countries", StartTime: start, Err: sql.ErrNoRows})
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "INSERT INTO countries", StartTime: start, Err: errors.New("boom")})

	assert.Equal(t, 2.0, sample(t, reg, "aclimate_db_queries_total", map[string]string{"operation": "select", "status": "ok"}))
	assert.Equal(t, 1.0, sample(t, reg, "aclimate_db_queries_total", map[string]string{"operation": "insert", "status": "error"}))
	assert.Equal(t, 2.0, sample(t, reg, "aclimate_db_query_duration_seconds", map[string]string{"operation": "select"}))
}

func TestMetricsHookReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := database.NewMetricsHook(reg)
	require.NoError(t, err)
	second, err := database.NewMetricsHook(reg)
	require.NoError(t, err)

	q1, d1 := first.Collectors()
	q2, d2 := second.Collectors()
	assert.Same(t, q1, q2)
	assert.Same(t, d1, d2)

	unregistered, err := database.NewMetricsHook(nil)
	require.NoError(t, err)
	q3, _ := unregistered.Collectors()
	assert.NotSame(t, q1, q3)
}

func TestManagerInstallsMetricsHook(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := database.DefaultConnectionConfig()
	cfg.Type = database.TypeSQLite
	cfg.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.EnableMetrics = true
	cfg.SlowQueryTime = 0

	m := database.NewManager(cfg, database.WithManagerLogger(database.NopLogger()), database.WithRegisterer(reg))
	require.NoError(t, m.Connect(context.Background()))
	t.Cleanup(func() { _ = m.Disconnect() })

	var n int
	require.NoError(t, m.DB().NewSelect().ColumnExpr("1").Scan(context.Background(), &n))
	assert.Equal(t, 1, n)
	assert.GreaterOrEqual(t, sample(t, reg, "aclimate_db_queries_total", map[string]string{"operation": "select", "status": "ok"}), 1.0)
}

func TestQueryHookHonoursLogLevel(t *testing.T) {
	const envName = "ACLIMATE_TEST_QUERY_LOG"
	ctx := context.Background()
	ok := &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()}
	failed := &bun.QueryEvent{Query: "DELETE FROM roles", StartTime: time.Now(), Err: errors.New("no such table: roles")}

	var buf bytes.Buffer
	hook := database.NewQueryHook(database.WithQueryLogWriter(&buf), database.WithQueryLogEnv(envName))
	hook.AfterQuery(ctx, ok)
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	t.Setenv(envName, "1")
	hook.AfterQuery(ctx, ok)
	assert.Empty(t, buf.String(), "failures only")
	hook.AfterQuery(ctx, failed)
	assert.Contains(t, buf.String(), "DELETE FROM roles")
	assert.Contains(t, buf.String(), "no such table: roles")

	buf.Reset()
	t.Setenv(envName, "0")
	hook.AfterQuery(ctx, failed)
	assert.Empty(t, buf.String())
}

func TestQueryHookQuietMode(t *testing.T) {
	var buf bytes.Buffer
	hook := database.NewQueryHook(
		database.WithQueryLogWriter(&buf),
		database.WithQueryLogEnv("ACLIMATE_TEST_QUERY_LOG_UNSET"),
		database.WithQueryLogVerbose(false),
	)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now(), Err: sql.ErrNoRows})
	assert.Empty(t, buf.String())

	disabled := database.NewQueryHook(
		database.WithQueryLogWriter(&buf),
		database.WithQueryLogEnv("ACLIMATE_TEST_QUERY_LOG_UNSET"),
		database.WithQueryLogEnabled(false),
	)
	disabled.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now(), Err: errors.New("x")})
	assert.Empty(t, buf.String())
}
