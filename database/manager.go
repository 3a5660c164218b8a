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
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// ErrNotConnected is returned by operations that need an open pool.
var ErrNotConnected = errors.New("database not connected")

// Manager owns one connection pool. It is constructed by the host, which is
// responsible for calling Connect and Disconnect; nothing in this module keeps
// a process-wide pool.
type Manager struct {
	config     *ConnectionConfig
	db         *bun.DB
	sqlDB      *sql.DB
	logger     Logger
	registerer prometheus.Registerer
	metrics    *MetricsHook
	mu         sync.RWMutex
	connected  bool
	lastError  error
}

var _ AbstractDatabaseManager = (*Manager)(nil)

type ManagerOption func(*Manager)

// WithManagerLogger sets the logger used for connection events and slow queries.
func WithManagerLogger(l Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRegisterer sets where the query metrics are registered when enable_metrics is on.
func WithRegisterer(r prometheus.Registerer) ManagerOption {
	return func(m *Manager) { m.registerer = r }
}

// NewManager returns a Manager for config. If config is nil, a default
// configuration is used.
func NewManager(config *ConnectionConfig, opts ...ManagerOption) *Manager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	m := &Manager{
		config:     config,
		logger:     NewLogger(""),
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (dm *Manager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	var err error
	dm.sqlDB, dm.db, err = dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	dm.configureConnectionPool()

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return Classify("connect", err)
	}

	dm.connected = true
	dm.lastError = nil
	dm.logger.Info("Database connected successfully", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

func (dm *Manager) createConnection() (*sql.DB, *bun.DB, error) {
	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	if dm.config.ConnectTimeout.Seconds() <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	switch dm.config.Type {
	case TypeMySQL:
		sqlDB, db, err = dm.createMySQLConnection()
	case TypePostgres, "postgresql":
		sqlDB, db, err = dm.createPostgreSQLConnection()
	case TypeSQLite, "sqlite3":
		sqlDB, db, err = dm.createSQLiteConnection()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	dm.installHooks(db)
	return sqlDB, db, nil
}

func (dm *Manager) installHooks(db *bun.DB) {
	if dm.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook(WithQueryLogEnabled(true)))
	}
	if _, ok := os.LookupEnv("BUNDEBUG"); ok {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(&slowQueryHook{
			slowTime: dm.config.SlowQueryTime,
			logger:   dm.logger,
		})
	}
	if dm.config.EnableMetrics {
		if dm.metrics == nil {
			hook, err := NewMetricsHook(dm.registerer)
			if err != nil {
				dm.logger.Warn("Query metrics disabled", "error", err)
				return
			}
			dm.metrics = hook
		}
		db.AddQueryHook(dm.metrics)
	}
}

func (dm *Manager) createMySQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	if dsn == "" {
		charset := dm.config.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
			dm.config.Username,
			dm.config.Password,
			dm.config.Host,
			dm.config.Port,
			dm.config.DBName,
			charset,
			dm.config.ConnectTimeout,
			dm.config.ReadTimeout,
			dm.config.WriteTimeout,
		)
	}

	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func (dm *Manager) createPostgreSQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	if dsn == "" {
		sslMode := dm.config.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
			dm.config.Username,
			dm.config.Password,
			dm.config.Host,
			dm.config.Port,
			dm.config.DBName,
			sslMode,
			int(dm.config.ConnectTimeout.Seconds()),
		)
	}

	driver := DriverPQ
	if dm.config.Driver == DriverPGX {
		driver = DriverPGX
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, pgdialect.New()), nil
}

// SQLiteDSN returns the data source name for a sqlite database called name.
// ":memory:" selects a shared in-memory database.
func SQLiteDSN(name string) string {
	switch {
	case name == "" || name == ":memory:":
		return "file::memory:?cache=shared"
	case strings.HasPrefix(name, "file:"), strings.HasSuffix(name, ".db"):
		return name
	default:
		return fmt.Sprintf("%s.db", name)
	}
}

func (dm *Manager) createSQLiteConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DSN
	if dsn == "" {
		dsn = SQLiteDSN(dm.config.DBName)
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func (dm *Manager) configureConnectionPool() {
	if dm.sqlDB == nil {
		return
	}

	if dm.config.Type == TypeSQLite || dm.config.Type == "sqlite3" {
		// sqlite serialises writers; one long-lived connection also keeps an
		// in-memory database alive between calls
		dm.sqlDB.SetMaxOpenConns(1)
		dm.sqlDB.SetMaxIdleConns(1)
		dm.sqlDB.SetConnMaxLifetime(0)
		dm.sqlDB.SetConnMaxIdleTime(0)
		return
	}
	dm.sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	dm.sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	dm.sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	dm.sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *Manager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	dm.sqlDB = nil
	dm.connected = false

	if err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
	} else {
		dm.logger.Info("Database connection closed")
	}
	return err
}

// Reconnect closes the pool and opens a new one. It is never triggered
// automatically.
func (dm *Manager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Attempting to reconnect to the database")
	if err := dm.Disconnect(); err != nil {
		dm.logger.Warn("Error disconnecting existing connection", "error", err)
	}
	return dm.Connect(ctx)
}

func (dm *Manager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

func (dm *Manager) DB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *Manager) SQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

// Sessions returns a SessionManager over the connected pool.
func (dm *Manager) Sessions() (*SessionManager, error) {
	db := dm.DB()
	if db == nil {
		return nil, ErrNotConnected
	}
	return NewSessionManager(db, WithSessionLogger(dm.logger)), nil
}

// Migrator returns a Migrator creating the tables of models on the connected pool.
func (dm *Manager) Migrator(models *ModelRegistry, cfg *Config) (*Migrator, error) {
	db := dm.DB()
	if db == nil {
		return nil, ErrNotConnected
	}
	return NewMigrator(db, models, cfg, dm.logger), nil
}

// LastError returns the error of the last failed connect or health check.
func (dm *Manager) LastError() error {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.lastError
}

func (dm *Manager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     dm.connected,
	}

	if dm.db == nil {
		status.LastError = "Database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := dm.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Connected = false
		status.LastError = err.Error()
		dm.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		dm.lastError = nil
	}

	if dm.sqlDB != nil {
		stats := dm.sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	return status
}

func (dm *Manager) Stats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *Manager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
