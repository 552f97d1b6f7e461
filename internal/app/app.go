// Package app wires the configuration, transaction store, audit sink,
// and history manager into one facade and manages their lifecycle.
// Every user-facing operation goes through the Application so undo,
// redo, and the audit trail stay consistent.
package app

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ledesma/centavo/internal/audit"
	"github.com/ledesma/centavo/internal/config"
	"github.com/ledesma/centavo/internal/engine/history"
	"github.com/ledesma/centavo/internal/ledger"
	"github.com/ledesma/centavo/internal/store"
	"github.com/ledesma/centavo/internal/store/memory"
	"github.com/ledesma/centavo/internal/store/sqlite"
	"github.com/ledesma/centavo/internal/store/supabase"
)

// Application is the central coordinator. It owns the store, the audit
// sink, and the history manager, and exposes the reversible operations
// as direct synchronous calls.
type Application struct {
	cfg     config.Config
	logger  *Logger
	metrics *Metrics

	store   store.Store
	sink    audit.Sink
	ledger  *ledger.Ledger
	history *history.History

	closed atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the TOML configuration file.
	ConfigPath string

	// Config bypasses loading entirely when set. Used by embedders and
	// tests that assemble configuration in code.
	Config *config.Config

	// Project overrides the configured project name.
	Project string

	// StoreBackend overrides the configured store backend.
	StoreBackend string

	// LogLevel overrides the configured logging verbosity.
	LogLevel string

	// LogOutput redirects log output. Defaults to os.Stderr.
	LogOutput io.Writer

	// AuditSink overrides the configured audit sink. Used by embedders
	// and tests.
	AuditSink audit.Sink
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
		cfg = loaded
	}

	if opts.Project != "" {
		cfg.Project = opts.Project
	}
	if opts.StoreBackend != "" {
		cfg.Store.Backend = opts.StoreBackend
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{cfg: cfg}
	if err := app.bootstrap(opts); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	// 1. Logger
	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(app.cfg.Log.Level)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	app.logger = NewLogger(logCfg)

	// 2. Metrics
	app.metrics = NewMetrics()

	// 3. Transaction store
	st, err := openStore(app.cfg.Store)
	if err != nil {
		return &InitError{Component: "store", Err: err}
	}
	app.store = st

	// 4. Audit sink
	if opts.AuditSink != nil {
		app.sink = opts.AuditSink
	} else {
		sink, err := openSink(app.cfg.Audit)
		if err != nil {
			_ = app.store.Close()
			return &InitError{Component: "audit", Err: err}
		}
		app.sink = sink
	}

	// 5. Ledger command factory
	app.ledger = ledger.New(app.store, ledger.WithCurrency(app.cfg.Currency))

	// 6. History manager
	histOpts := []history.Option{
		history.WithAuditErrorHandler(func(err error) {
			app.metrics.RecordAuditFailure()
			app.logger.WithComponent("audit").Warn("audit append failed: %v", err)
		}),
	}
	if app.sink != nil {
		histOpts = append(histOpts, history.WithAudit(app.sink))
	}
	app.history = history.NewHistory(app.cfg.History.MaxEntries, histOpts...)

	app.logger.Info("ready: project=%s store=%s audit=%s max_entries=%d",
		app.cfg.Project, app.cfg.Store.Backend, app.cfg.Audit.Backend, app.history.MaxEntries())
	return nil
}

// openStore builds the configured transaction backend.
func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	case config.StoreSupabase:
		return supabase.New(supabase.Options{
			URL:   cfg.Supabase.URL,
			Key:   cfg.Supabase.Key,
			Table: cfg.Supabase.Table,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// openSink builds the configured audit sink. A nil sink disables the
// audit trail.
func openSink(cfg config.AuditConfig) (audit.Sink, error) {
	switch cfg.Backend {
	case config.AuditNone:
		return nil, nil
	case config.AuditFile:
		return audit.NewFileSink(cfg.Path)
	case config.AuditSQLite:
		return audit.NewSQLiteSink(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

// Close writes the history snapshot and releases the store and audit
// sink. It is safe to call more than once.
func (app *Application) Close() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	if err := app.WriteHistorySnapshot(); err != nil {
		app.logger.Warn("history snapshot failed: %v", err)
	}

	errs := NewErrorList()
	if app.sink != nil {
		errs.Add(WrapError(app.sink.Close(), "close audit sink"))
	}
	if app.store != nil {
		errs.Add(WrapError(app.store.Close(), "close store"))
	}
	if err := errs.AsError(); err != nil {
		return err
	}
	app.logger.Info("closed")
	return nil
}

// Config returns the resolved configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Logger returns the application's logger instance.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Metrics returns the application's metrics instance.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Store returns the transaction store.
func (app *Application) Store() store.Store {
	return app.store
}

// History returns the history manager.
func (app *Application) History() *history.History {
	return app.history
}

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
