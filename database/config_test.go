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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/aclimate/database"
)

const sampleConfig = `
connection:
  type: mysql
  host: db.internal
  port: 3306
  username: aclimate
  dbname: aclimate
  slow_query_time: 3s
  enable_metrics: true
migrate:
  enable_foreign_key: false
seed:
  filepath: ./seeds
  environment: staging
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigLayersFileAndEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONNECT_TIMEOUT", "4s")

	cfg, err := database.LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	conn := cfg.Connection
	assert.Equal(t, database.TypeMySQL, conn.Type)
	assert.Equal(t, "db.override", conn.Host)
	assert.Equal(t, 3306, conn.Port)
	assert.Equal(t, "aclimate", conn.DBName)
	assert.Equal(t, 7, conn.MaxOpenConns)
	assert.Equal(t, 4*time.Second, conn.ConnectTimeout)
	assert.Equal(t, 3*time.Second, conn.SlowQueryTime)
	assert.True(t, conn.EnableMetrics)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10, conn.MaxIdleConns)
	assert.Equal(t, time.Hour, conn.ConnMaxLifetime)
	assert.Equal(t, "utf8mb4", conn.Charset)

	assert.False(t, cfg.Migrate.EnableForeignKey)
	assert.Equal(t, "./seeds", cfg.Seed.Filepath)
	assert.Equal(t, "staging", cfg.Seed.Environment)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("DB_NAME", "aclimate")

	cfg, err := database.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, database.TypePostgres, cfg.Connection.Type)
	assert.Equal(t, database.DriverPQ, cfg.Connection.Driver)
	assert.True(t, cfg.Migrate.EnableForeignKey)
	assert.Equal(t, "dev", cfg.Seed.Environment)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := database.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = database.LoadConfig(writeConfig(t, "connection: [not, a, map]"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = database.LoadConfig(writeConfig(t, "connection:\n  type: oracle\n  dbname: x\n"))
	assert.ErrorContains(t, err, "unsupported database type: oracle")
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*database.ConnectionConfig)
		wantErr string
	}{
		{"postgres with name", func(c *database.ConnectionConfig) { c.DBName = "aclimate" }, ""},
		{"postgresql alias", func(c *database.ConnectionConfig) { c.Type = "postgresql"; c.DBName = "a" }, ""},
		{"pgx driver", func(c *database.ConnectionConfig) { c.Driver = database.DriverPGX; c.DSN = "postgres://x" }, ""},
		{"default driver", func(c *database.ConnectionConfig) { c.Driver = ""; c.DBName = "a" }, ""},
		{"unknown driver", func(c *database.ConnectionConfig) { c.Driver = "odbc"; c.DBName = "a" }, "unsupported postgres driver: odbc"},
		{"missing name", func(c *database.ConnectionConfig) {}, "database name is required"},
		{"mysql missing name", func(c *database.ConnectionConfig) { c.Type = database.TypeMySQL }, "database name is required"},
		{"sqlite needs nothing", func(c *database.ConnectionConfig) { c.Type = database.TypeSQLite }, ""},
		{"unknown type", func(c *database.ConnectionConfig) { c.Type = "mssql" }, "unsupported database type: mssql"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := database.DefaultConfig()
			tc.mutate(&cfg.Connection)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}
