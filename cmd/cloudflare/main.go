//go:build cloudflare

// Cloudflare Workers entry point using syumai/workers
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/syumai/workers"
	"github.com/syumai/workers/cloudflare/queues"

	"github.com/joeblew999/deckbind/handler"
	"github.com/joeblew999/deckbind/internal/metrics"
	"github.com/joeblew999/deckbind/internal/store"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/outline"
	"github.com/joeblew999/deckbind/pkg/pipeline"
	"github.com/joeblew999/deckbind/runtime"
)

// Bindings declared in wrangler.toml
const (
	templatesBucket = "DECKBIND_TEMPLATES"
	exportsBucket   = "DECKBIND_EXPORTS"
	decksNamespace  = "DECKBIND_DECKS"

	templatesPrefix = "templates/"
	inboxPrefix     = "inbox/"
)

var (
	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	decks  store.DeckStore
	pipe   *pipeline.Pipeline
)

func main() {
	initRuntime()

	m := metrics.New()
	lib := loadLibrary(m)
	pipe = pipeline.New(lib, pipeline.Options{Workers: 1, Metrics: m, Logger: logger})
	decks = store.NewKVStore(runtime.KV())

	api := handler.New(handler.Options{
		Store:    decks,
		Pipeline: pipe,
		Metrics:  m,
		Logger:   logger,
	})

	// Register queue consumer for R2 uploads into the inbox (non-blocking)
	queues.ConsumeNonBlock(consumeQueue)

	workers.Serve(api)
}

func initRuntime() {
	rt := &runtime.Runtime{}
	if s, err := runtime.NewR2Storage(templatesBucket); err == nil {
		rt.Templates = s
	} else {
		logger.Warn("templates bucket unavailable", "binding", templatesBucket, "error", err)
	}
	if s, err := runtime.NewR2Storage(exportsBucket); err == nil {
		rt.Exports = s
	} else {
		logger.Warn("exports bucket unavailable", "binding", exportsBucket, "error", err)
	}
	if kv, err := runtime.NewCloudflareKV(decksNamespace); err == nil {
		rt.KV = kv
	} else {
		logger.Warn("decks namespace unavailable", "binding", decksNamespace, "error", err)
	}
	runtime.SetRuntime(rt)
}

// loadLibrary prefers templates from R2 and falls back to the embedded set
func loadLibrary(m *metrics.Metrics) *library.Library {
	opts := library.Options{
		OnFallback: func(key string) {
			logger.Warn("template not found, using default", "key", key)
			m.IncTemplateFallback(key)
		},
	}
	lib, err := library.Load(context.Background(), runtime.Templates(), templatesPrefix, opts)
	if err == nil {
		return lib
	}
	if !errors.Is(err, library.ErrEmpty) {
		logger.Error("failed to load templates from R2", "error", err)
	}
	lib, err = library.Builtin(opts)
	if err != nil {
		panic(err)
	}
	return lib
}

// consumeQueue handles R2 event notifications from the queue. Every deck
// uploaded under inbox/ is stored and rendered to SVG in the exports bucket.
func consumeQueue(batch *queues.MessageBatch) error {
	ctx := context.Background()
	for _, msg := range batch.Messages {
		body, err := msg.BytesBody()
		if err != nil {
			msg.Retry()
			continue
		}

		var event struct {
			Action string `json:"action"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			msg.Retry()
			continue
		}

		key := event.Object.Key
		if !strings.HasPrefix(key, inboxPrefix) || !(strings.HasSuffix(key, ".md") || strings.HasSuffix(key, ".json")) {
			msg.Ack()
			continue
		}

		reader, err := runtime.Exports().Get(ctx, key)
		if err != nil {
			msg.Retry()
			continue
		}
		input, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			msg.Retry()
			continue
		}

		d, source, err := outline.Decode(input)
		if err != nil {
			logger.Warn("rejected upload", "key", key, "error", err)
			msg.Ack() // Don't retry bad input
			continue
		}
		d.Normalize()

		rec := store.NewRecord(d, string(source))
		if err := decks.Put(ctx, rec); err != nil {
			logger.Error("failed to store deck", "key", key, "error", err)
			msg.Retry()
			continue
		}

		res, err := pipe.Render(ctx, d, pipeline.FormatSVG)
		if err != nil {
			logger.Warn("render failed", "key", key, "id", rec.ID, "error", err)
			msg.Ack()
			continue
		}
		if _, err := pipeline.Export(ctx, runtime.Exports(), rec.ID, path.Base(key), res); err != nil {
			logger.Error("failed to export slides", "key", key, "id", rec.ID, "error", err)
			msg.Retry()
			continue
		}

		logger.Info("deck processed", "key", key, "id", rec.ID, "slides", res.SlideCount)
		msg.Ack()
	}
	return nil
}
