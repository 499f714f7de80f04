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
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
// It is treated as immutable once handed to an Engine.
type ConnectionConfig struct {
	Type     string `json:"type" yaml:"type"` // postgres, mysql, sqlite
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`

	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`

	EnableQueryLog bool          `json:"enable_query_log" yaml:"enable_query_log"`
	SlowQueryTime  time.Duration `json:"slow_query_time" yaml:"slow_query_time"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		EnableQueryLog:  false,
		SlowQueryTime:   time.Second * 2,
	}
}

// Validate checks that the config names a supported backend and carries the
// fields that backend requires.
func (c *ConnectionConfig) Validate() error {
	switch c.Type {
	case TypeSQLite:
		if c.DBName == "" {
			return fmt.Errorf("%w: sqlite requires a database name", ErrConfiguration)
		}
		return nil
	case TypePostgres, TypeMySQL:
		if c.Host == "" {
			return fmt.Errorf("%w: %s host is not set", ErrConfiguration, c.Type)
		}
		if c.DBName == "" {
			return fmt.Errorf("%w: %s database name is not set", ErrConfiguration, c.Type)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported database type %q (supported: %s, %s, %s)",
			ErrConfiguration, c.Type, TypePostgres, TypeMySQL, TypeSQLite)
	}
}

// URL renders the config as <scheme>://<user>:<password>@<host>:<port>/<dbname>.
func (c *ConnectionConfig) URL() string {
	if c.Type == TypeSQLite {
		return fmt.Sprintf("sqlite://%s", c.DBName)
	}
	host := c.Host
	if c.Port > 0 {
		host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return fmt.Sprintf("%s://%s:%s@%s/%s", c.Type, c.Username, c.Password, host, c.DBName)
}

// ParseURL builds a ConnectionConfig from a standard connection URL. The
// scheme selects the dialect: postgres(ql), mysql, or sqlite.
func ParseURL(raw string) (*ConnectionConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse connection url: %v", ErrConfiguration, err)
	}

	cfg := DefaultConnectionConfig()
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		cfg.Type = TypePostgres
		cfg.Port = 5432
	case "mysql":
		cfg.Type = TypeMySQL
		cfg.Port = 3306
	case "sqlite", "sqlite3":
		cfg.Type = TypeSQLite
		cfg.DBName = strings.TrimPrefix(u.Host+u.Path, "/")
		return cfg, cfg.Validate()
	default:
		return nil, fmt.Errorf("%w: unsupported url scheme %q", ErrConfiguration, u.Scheme)
	}

	cfg.Host = u.Hostname()
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			cfg.Port = n
		}
	}
	if u.User != nil {
		cfg.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if v := u.Query().Get("sslmode"); v != "" {
		cfg.SSLMode = v
	}
	return cfg, cfg.Validate()
}

var postgresEnvWarnOnce sync.Once

// ConfigFromEnv derives a ConnectionConfig from recognized environment
// variable sets, tried in order: the deprecated POSTGRES_* spelling, the
// libpq PG* variables, then MYSQL_*. It fails with ErrConfiguration when no
// set provides both a host and a database name.
func ConfigFromEnv() (*ConnectionConfig, error) {
	if host, db := os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_DATABASE"); host != "" && db != "" {
		if v := os.Getenv("POSTGRES_ENV_WARNING"); v != "false" {
			postgresEnvWarnOnce.Do(func() {
				GetLogger().Warn("POSTGRES_<setting> is deprecated, use PG<setting>",
					"see", "https://www.postgresql.org/docs/current/libpq-envars.html")
			})
		}
		cfg := DefaultConnectionConfig()
		cfg.Type = TypePostgres
		cfg.Host = host
		cfg.DBName = db
		cfg.Port = envInt("POSTGRES_PORT", 5432)
		cfg.Username = envString("POSTGRES_USER", "postgres")
		cfg.Password = envString("POSTGRES_PASSWORD", "postgres")
		return cfg, nil
	}

	if host, db := os.Getenv("PGHOST"), os.Getenv("PGDATABASE"); host != "" && db != "" {
		cfg := DefaultConnectionConfig()
		cfg.Type = TypePostgres
		cfg.Host = host
		cfg.DBName = db
		cfg.Port = envInt("PGPORT", 5432)
		cfg.Username = envString("PGUSER", "postgres")
		cfg.Password = envString("PGPASSWORD", "postgres")
		return cfg, nil
	}

	if host, db := os.Getenv("MYSQL_HOST"), os.Getenv("MYSQL_DB"); host != "" && db != "" {
		cfg := DefaultConnectionConfig()
		cfg.Type = TypeMySQL
		cfg.Host = host
		cfg.DBName = db
		cfg.Port = envInt("MYSQL_PORT", 3306)
		cfg.Username = envString("MYSQL_USER", "root")
		cfg.Password = os.Getenv("MYSQL_PASSWORD")
		return cfg, nil
	}

	return nil, fmt.Errorf("%w: no database environment variables found "+
		"(tried POSTGRES_*, PG*, MYSQL_*)", ErrConfiguration)
}

// LoadConfig reads a ConnectionConfig from a YAML file and applies defaults
// for unset pool settings.
func LoadConfig(path string) (*ConnectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read config file: %v", ErrConfiguration, err)
	}
	cfg := DefaultConnectionConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: cannot parse config file %s: %v", ErrConfiguration, path, err)
	}
	return cfg, cfg.Validate()
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
