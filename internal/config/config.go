// Package config assembles the application configuration from built-in
// defaults, an optional TOML file, and environment variables, applied
// in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/ledesma/centavo/internal/engine/history"
	"github.com/ledesma/centavo/internal/record"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreSupabase = "supabase"
)

// Audit backends.
const (
	AuditNone   = "none"
	AuditFile   = "file"
	AuditSQLite = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Project  string        `toml:"project"  env:"CENTAVO_PROJECT"`
	Currency string        `toml:"currency" env:"CENTAVO_CURRENCY"`
	Log      LogConfig     `toml:"log"`
	History  HistoryConfig `toml:"history"`
	Store    StoreConfig   `toml:"store"`
	Audit    AuditConfig   `toml:"audit"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level" env:"CENTAVO_LOG_LEVEL"`
}

// HistoryConfig bounds the undo engine.
type HistoryConfig struct {
	MaxEntries   int    `toml:"max_entries"   env:"CENTAVO_HISTORY_MAX_ENTRIES"`
	SnapshotPath string `toml:"snapshot_path" env:"CENTAVO_HISTORY_SNAPSHOT_PATH"`
}

// StoreConfig selects and configures the transaction backend.
type StoreConfig struct {
	Backend  string         `toml:"backend" env:"CENTAVO_STORE_BACKEND"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Supabase SupabaseConfig `toml:"supabase"`
}

// SQLiteConfig locates the local database file.
type SQLiteConfig struct {
	Path string `toml:"path" env:"CENTAVO_SQLITE_PATH"`
}

// SupabaseConfig holds the hosted backend settings. The credentials
// default to the conventional Supabase environment variables so a
// .env file works unchanged.
type SupabaseConfig struct {
	URL   string `toml:"url"   env:"SUPABASE_URL"`
	Key   string `toml:"key"   env:"SUPABASE_SERVICE_KEY"`
	Table string `toml:"table" env:"CENTAVO_SUPABASE_TABLE"`
}

// AuditConfig selects the audit trail sink.
type AuditConfig struct {
	Backend string `toml:"backend" env:"CENTAVO_AUDIT_BACKEND"`
	Path    string `toml:"path"    env:"CENTAVO_AUDIT_PATH"`
}

// Default returns the built-in configuration: a local SQLite ledger
// with a JSONL audit trail next to it.
func Default() Config {
	return Config{
		Project:  "default",
		Currency: record.DefaultCurrency,
		Log:      LogConfig{Level: "info"},
		History:  HistoryConfig{MaxEntries: history.DefaultMaxEntries},
		Store: StoreConfig{
			Backend: StoreSQLite,
			SQLite:  SQLiteConfig{Path: "centavo.db"},
		},
		Audit: AuditConfig{
			Backend: AuditFile,
			Path:    "centavo-audit.jsonl",
		},
	}
}

// Load assembles the configuration. A missing file at path is not an
// error; defaults and the environment still apply. An empty path skips
// the file layer entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err != nil && os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, newParseError(path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Project) == "" {
		return fmt.Errorf("project is required")
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries cannot be negative")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLite.Path) == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case StoreSupabase:
		if strings.TrimSpace(c.Store.Supabase.URL) == "" || strings.TrimSpace(c.Store.Supabase.Key) == "" {
			return fmt.Errorf("supabase url and key are required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Audit.Backend {
	case AuditNone:
	case AuditFile, AuditSQLite:
		if strings.TrimSpace(c.Audit.Path) == "" {
			return fmt.Errorf("audit.path is required for the %s audit backend", c.Audit.Backend)
		}
	default:
		return fmt.Errorf("unknown audit backend %q", c.Audit.Backend)
	}
	return nil
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
	return pe
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
