//go:build !js && !wasip1 && !cloudflare

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gg"
	bolt "go.etcd.io/bbolt"

	"github.com/joeblew999/deckbind/internal/config"
	"github.com/joeblew999/deckbind/internal/metrics"
	"github.com/joeblew999/deckbind/internal/store"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/pipeline"
	"github.com/joeblew999/deckbind/runtime"
)

// App holds the components shared by every command
type App struct {
	config   *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	library  *library.Library
	pipeline *pipeline.Pipeline
	store    store.DeckStore
	closers  []func() error
}

// loadConfig reads the -c file, or returns defaults when none was given
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newApp wires storage, templates and the render pipeline from cfg. The deck
// store is only opened when withStore is set.
func newApp(ctx context.Context, cfg *config.Config, withStore bool) (*App, error) {
	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	a := &App{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	templates, err := templateStorage(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime.Runtime{Templates: templates}
	if withStore && cfg.Store.Backend == config.BackendKV {
		files, err := runtime.NewLocalFileStorage(cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv directory: %w", err)
		}
		rt.KV = runtime.NewStorageKV(files, "")
	}
	runtime.SetRuntime(rt)

	a.library, err = loadLibrary(ctx, cfg, templates, logger, a.metrics)
	if err != nil {
		return nil, err
	}

	var pdf pipeline.PDFRenderer
	if cfg.Render.PDF.Enabled {
		p, err := pipeline.NewPdfdeck(cfg.Render.PDF.BinDir, cfg.Render.PDF.FontDir)
		if err != nil {
			return nil, fmt.Errorf("failed to set up pdf export: %w", err)
		}
		pdf = p
	}
	a.pipeline = pipeline.New(a.library, pipeline.Options{
		Workers:        cfg.Render.Workers,
		CacheSize:      cfg.Render.CacheSize,
		ThumbnailWidth: cfg.Render.ThumbWidth,
		PDF:            pdf,
		Metrics:        a.metrics,
		Logger:         logger,
	})

	if withStore {
		if err := a.openStore(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// templateStorage returns the configured template source, or nil for the
// embedded templates.
func templateStorage(cfg *config.Config) (runtime.Storage, error) {
	switch {
	case cfg.Templates.Dir != "":
		s, err := runtime.NewLocalFileStorage(cfg.Templates.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open template dir: %w", err)
		}
		return s, nil
	case cfg.Templates.URL != "":
		return runtime.NewHTTPStorage(cfg.Templates.URL, nil), nil
	}
	return nil, nil
}

func loadLibrary(ctx context.Context, cfg *config.Config, templates runtime.Storage, logger *slog.Logger, m *metrics.Metrics) (*library.Library, error) {
	pageTypes, err := cfg.PageTypeIDs()
	if err != nil {
		return nil, err
	}
	opts := library.Options{
		PageTypes: pageTypes,
		DefaultID: cfg.Templates.DefaultID,
		OnFallback: func(key string) {
			logger.Warn("template not found, using default", "key", key)
			m.IncTemplateFallback(key)
		},
	}

	var lib *library.Library
	if templates == nil {
		lib, err = library.Builtin(opts)
	} else {
		lib, err = library.Load(ctx, templates, cfg.Templates.Prefix, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	logger.Debug("templates loaded", "count", len(lib.IDs()), "builtin", templates == nil)
	return lib, nil
}

func (a *App) openStore() error {
	switch a.config.Store.Backend {
	case config.BackendBolt:
		db, err := bolt.Open(a.config.Store.Path, 0600, &bolt.Options{Timeout: 5 * time.Second})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s, err := store.NewBoltStore(db)
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to create deck store: %w", err)
		}
		a.store = s
		a.closers = append(a.closers, db.Close)
	case config.BackendKV:
		a.store = store.NewKVStore(runtime.KV())
	default:
		a.store = store.NewMemoryStore()
	}
	a.logger.Debug("deck store ready", "backend", a.config.Store.Backend)
	return nil
}

// Close releases the deck store
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
