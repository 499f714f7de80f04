/*
 * Copyright 2026 romakot321.
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
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

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

// DBStats mirrors database/sql pool statistics.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Engine is a configured target database: an immutable connection config
// plus a lazily opened Bun handle. It is the only session factory; pooling
// and transaction semantics are owned by database/sql and the driver.
type Engine struct {
	cfg    *ConnectionConfig
	logger Logger

	mu     sync.Mutex
	db     *bun.DB
	sqlDB  *sql.DB
	closed bool
}

// NewEngine constructs an engine over an explicit connection config.
func NewEngine(cfg *ConnectionConfig) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: connection config is nil", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, logger: GetLogger()}, nil
}

// EngineFromURL constructs an engine from a connection URL.
func EngineFromURL(rawURL string) (*Engine, error) {
	cfg, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg)
}

// EngineFromEnv constructs an engine from recognized environment variables.
func EngineFromEnv() (*Engine, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg)
}

// Config returns a copy of the engine's connection config.
func (e *Engine) Config() ConnectionConfig { return *e.cfg }

// DB returns the Bun handle, opening the underlying connection pool on first
// use. A failed open is retried on the next call.
func (e *Engine) DB(ctx context.Context) (*bun.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("%w: engine is closed", ErrConfiguration)
	}
	if e.db != nil {
		return e.db, nil
	}

	sqlDB, db, err := e.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(e.cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(e.cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(e.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(e.cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, e.cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	db.RegisterModel(RegisteredEntityInstances()...)

	e.sqlDB = sqlDB
	e.db = db
	e.logger.Debug("Database connected", "type", e.cfg.Type, "host", e.cfg.Host, "dbname", e.cfg.DBName)
	return e.db, nil
}

func (e *Engine) open() (*sql.DB, *bun.DB, error) {
	if e.cfg.ConnectTimeout <= 0 {
		e.cfg.ConnectTimeout = 30 * time.Second
	}

	var sqlDB *sql.DB
	var db *bun.DB
	var err error
	switch e.cfg.Type {
	case TypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
			e.cfg.Username, e.cfg.Password, e.cfg.Host, e.cfg.Port, e.cfg.DBName,
			e.cfg.ConnectTimeout, e.cfg.ReadTimeout, e.cfg.WriteTimeout)
		if sqlDB, err = sql.Open("mysql", dsn); err == nil {
			db = bun.NewDB(sqlDB, mysqldialect.New())
		}
	case TypePostgres:
		sslMode := e.cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
			e.cfg.Username, e.cfg.Password, e.cfg.Host, e.cfg.Port, e.cfg.DBName,
			sslMode, int(e.cfg.ConnectTimeout.Seconds()))
		if sqlDB, err = sql.Open("postgres", dsn); err == nil {
			db = bun.NewDB(sqlDB, pgdialect.New())
		}
	case TypeSQLite:
		if sqlDB, err = sql.Open(sqliteshim.ShimName, e.cfg.DBName); err == nil {
			db = bun.NewDB(sqlDB, sqlitedialect.New())
		}
	default:
		return nil, nil, fmt.Errorf("%w: unsupported database type %q", ErrConfiguration, e.cfg.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	if e.cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
		db.AddQueryHook(NewQueryHook("BUNSERVICE_QUERY_LOG"))
	}
	if e.cfg.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook("BUNSERVICE_SLOW_LOG", e.cfg.SlowQueryTime))
	}
	return sqlDB, db, nil
}

// AcquireSession takes one connection from the pool and begins a transaction
// on it. The caller must release the session exactly once via Commit,
// Rollback, or Close.
func (e *Engine) AcquireSession(ctx context.Context) (*Session, error) {
	db, err := e.DB(ctx)
	if err != nil {
		return nil, err
	}
	return newSession(ctx, db, e.logger)
}

// Ping verifies database connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	db, err := e.DB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// HealthCheck pings the database and reports pool state.
func (e *Engine) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	db, err := e.DB(ctx)
	if err != nil {
		status.LastError = err.Error()
		return status
	}
	status.Connected = true

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	err = db.PingContext(pingCtx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Connected = false
		status.LastError = err.Error()
	} else {
		status.Healthy = true
	}

	e.mu.Lock()
	sqlDB := e.sqlDB
	e.mu.Unlock()
	if sqlDB != nil {
		stats := sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	return status
}

// Stats returns pool statistics, zero-valued before the first connection.
func (e *Engine) Stats() *DBStats {
	e.mu.Lock()
	sqlDB := e.sqlDB
	e.mu.Unlock()
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
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// Close releases the underlying pool. The engine cannot be reused afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.sqlDB = nil
	if err != nil {
		e.logger.Error("Failed to close database connection", "error", err)
	} else {
		e.logger.Debug("Database connection closed")
	}
	return err
}

var (
	defaultEngine   *Engine
	defaultEngineMu sync.Mutex
)

// SetDefault installs the process-wide default engine used by services that
// were not given one explicitly.
func SetDefault(e *Engine) {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	defaultEngine = e
}

// Default returns the process-wide engine, building one from environment
// variables when none was installed.
func Default() (*Engine, error) {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	if defaultEngine != nil {
		return defaultEngine, nil
	}
	e, err := EngineFromEnv()
	if err != nil {
		return nil, err
	}
	defaultEngine = e
	return defaultEngine, nil
}
