package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hammamikhairi/ottobrew/internal/catalog"
	"github.com/hammamikhairi/ottobrew/internal/config"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/engine"
	"github.com/hammamikhairi/ottobrew/internal/events"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
	"github.com/hammamikhairi/ottobrew/internal/transfer"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg      *config.Config
	opts     *RootOptions
	log      *logger.Logger
	out      *display.Printer
	bus      *events.Bus
	store    domain.Store
	sessions *storage.MemoryStore
	catalog  *catalog.Service
	engine   *engine.Engine
	transfer *transfer.Service

	closers []func() error
}

func openApp(ctx context.Context, opts *RootOptions, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DB != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = opts.DB
	}

	a := &app{cfg: cfg, opts: opts, out: display.NewPrinter(stdout)}

	level := cfg.LogLevel()
	if opts.Verbose {
		level = logger.LevelVerbose
	}
	if opts.Quiet {
		level = logger.LevelOff
	}

	// Logs go to a file by default so the brew loop stays readable.
	logOut := stderr
	if level != logger.LevelOff && cfg.Logging.File != "" && cfg.Logging.File != "stderr" {
		f, err := openLogFile(cfg.Logging.File)
		if err != nil {
			fmt.Fprintf(stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Logging.File, err)
		} else {
			logOut = f
			a.closers = append(a.closers, f.Close)
		}
	}
	a.log = logger.New(level, logOut)
	a.closers = append(a.closers, func() error {
		_ = a.log.Sync()
		return nil
	})

	a.sessions = storage.NewMemoryStore(a.log)
	switch cfg.Database.Driver {
	case "memory":
		a.store = a.sessions
	default:
		if dir := filepath.Dir(cfg.Database.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := storage.OpenSQL(cfg.Database.Path, a.log)
		if err != nil {
			return nil, err
		}
		a.store = db
		a.closers = append(a.closers, db.Close)
	}

	a.bus = events.NewBus(a.log)
	a.catalog = catalog.New(a.store, a.log,
		catalog.WithBus(a.bus),
		catalog.WithCalendar(cfg.Calendar()),
	)
	a.engine = engine.New(a.store, a.sessions, a.log, engine.WithBus(a.bus))
	a.transfer = transfer.New(a.store, a.log, transfer.WithBus(a.bus))

	if _, err := a.catalog.Seed(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
