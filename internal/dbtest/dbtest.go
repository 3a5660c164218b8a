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

// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/models"
)

var dsnName = strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_")

// Config returns a sqlite connection config private to t.
func Config(t testing.TB) *database.Config {
	cfg := database.DefaultConfig()
	cfg.Connection.Type = database.TypeSQLite
	cfg.Connection.Driver = ""
	cfg.Connection.DSN = "file:" + dsnName.Replace(t.Name()) + "?mode=memory&cache=shared"
	cfg.Connection.ConnectTimeout = 5 * time.Second
	cfg.Connection.SlowQueryTime = 0
	return cfg
}

// Open connects to a fresh database holding every reference table.
func Open(t testing.TB) *database.Manager {
	t.Helper()
	cfg := Config(t)
	m := database.NewManager(&cfg.Connection,
		database.WithManagerLogger(database.NopLogger()),
		database.WithRegisterer(prometheus.NewRegistry()),
	)
	require.NoError(t, m.Connect(context.Background()))
	t.Cleanup(func() { _ = m.Disconnect() })

	mig, err := m.Migrator(models.Registry(), cfg)
	require.NoError(t, err)
	require.NoError(t, mig.Upgrade(context.Background(), database.RevisionHead))
	return m
}

// Sessions returns a session manager over a fresh database.
func Sessions(t testing.TB) *database.SessionManager {
	t.Helper()
	sm, err := Open(t).Sessions()
	require.NoError(t, err)
	return sm
}
