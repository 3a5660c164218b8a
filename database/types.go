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
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection and reporting health. The host owns the manager: it calls
// Connect at start up and Disconnect at shut down.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	DB() *bun.DB
	SQLDB() *sql.DB
	Stats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Supported connection types.
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Postgres driver names.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type            string        `yaml:"type" env:"DB_TYPE"`     // postgres, mysql, sqlite
	Driver          string        `yaml:"driver" env:"DB_DRIVER"` // postgres only: postgres (lib/pq) or pgx
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" env:"DB_PORT"`
	Username        string        `yaml:"username" env:"DB_USERNAME"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
	DSN             string        `yaml:"dsn" env:"DB_DSN"` // overrides the fields above when set
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"DB_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"DB_WRITE_TIMEOUT"`
	EnableQueryLog  bool          `yaml:"enable_query_log" env:"DB_ENABLE_QUERY_LOG"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time" env:"DB_SLOW_QUERY_TIME"`
	EnableMetrics   bool          `yaml:"enable_metrics" env:"DB_ENABLE_METRICS"`
	Charset         string        `yaml:"charset" env:"DB_CHARSET"` // MySQL: utf8mb4
}

// MigrateConfig controls the migration collaborator.
type MigrateConfig struct {
	EnableForeignKey bool   `yaml:"enable_foreign_key" env:"DB_ENABLE_FOREIGN_KEY"`
	ForeignKeyFile   string `yaml:"foreign_key_file" env:"DB_FOREIGN_KEY_FILE"`
}

// SeedConfig points the seed revision at SQL files.
type SeedConfig struct {
	Filepath    string `yaml:"filepath" env:"DB_SEED_PATH"`
	Environment string `yaml:"environment" env:"DB_SEED_ENV"`
}

// Config aggregates connection, migration, and seed settings.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Migrate    MigrateConfig    `yaml:"migrate"`
	Seed       SeedConfig       `yaml:"seed"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:            TypePostgres,
		Driver:          DriverPQ,
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		SlowQueryTime:   time.Second * 2,
		Charset:         "utf8mb4",
	}
}

// DefaultConfig returns a Config with default connection settings.
func DefaultConfig() *Config {
	return &Config{
		Connection: *DefaultConnectionConfig(),
		Migrate:    MigrateConfig{EnableForeignKey: true},
		Seed:       SeedConfig{Environment: "dev"},
	}
}
