package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joeblew999/deckbind/internal/deckxml"
	"github.com/joeblew999/deckbind/internal/metrics"
	"github.com/joeblew999/deckbind/internal/processor"
	"github.com/joeblew999/deckbind/internal/raster"
	"github.com/joeblew999/deckbind/pkg/binder"
	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/scene"
	"github.com/joeblew999/deckbind/pkg/template"
)

// PDFRenderer turns deck XML into a PDF document
type PDFRenderer interface {
	RenderPDF(ctx context.Context, deckXML []byte, pages int) ([]byte, error)
}

// Options configures a Pipeline
type Options struct {
	// Workers bounds how many pages render concurrently. Zero means 4.
	Workers int
	// CacheSize is the number of scenes kept; zero disables the cache.
	CacheSize int
	// SVG configures the SVG surface
	SVG processor.Config
	// ThumbnailWidth is the PNG width in pixels; zero selects the default.
	ThumbnailWidth int
	// PDF renders the pdf format; nil leaves it unavailable.
	PDF PDFRenderer

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Pipeline renders decks with the templates of one library. It is safe for
// concurrent use.
type Pipeline struct {
	lib     *library.Library
	svg     *processor.Renderer
	png     *raster.Renderer
	pdf     PDFRenderer
	cache   *sceneCache
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a pipeline over lib
func New(lib *library.Library, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		lib:     lib,
		svg:     processor.New(opts.SVG),
		png:     raster.New(opts.ThumbnailWidth),
		pdf:     opts.PDF,
		cache:   newSceneCache(opts.CacheSize),
		workers: opts.Workers,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Library returns the template library
func (p *Pipeline) Library() *library.Library {
	return p.lib
}

// Supports reports whether format can be rendered by this pipeline
func (p *Pipeline) Supports(f Format) bool {
	if f == FormatPDF {
		return p.pdf != nil
	}
	_, err := ParseFormat(string(f))
	return err == nil
}

// Render renders every page of d
func (p *Pipeline) Render(ctx context.Context, d *deck.Deck, format Format) (res *Result, err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveRender(string(format), err, time.Since(start))
	}()

	if !p.Supports(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if d == nil {
		return nil, fmt.Errorf("render: %w", binder.ErrNilInput)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	n := len(d.Pages)
	res = &Result{Title: d.Title, Format: format, Scenes: make([]*scene.Scene, n), SlideCount: n}
	var slides [][]byte
	if format.PerPage() {
		slides = make([][]byte, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, page := range d.Pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, filled, err := p.page(page, format == FormatFilled)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			res.Scenes[i] = s
			if slides != nil {
				out, err := p.encode(format, s, filled)
				if err != nil {
					return fmt.Errorf("page %d: %w", i+1, err)
				}
				slides[i] = out
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if slides == nil {
		doc, err := p.document(ctx, format, d.Title, res.Scenes)
		if err != nil {
			return nil, err
		}
		slides = [][]byte{doc}
	}
	res.Slides = slides

	p.logger.Debug("deck rendered",
		"title", d.Title,
		"format", format,
		"pages", n,
		"duration", time.Since(start),
	)
	return res, nil
}

// RenderPage renders page index (zero-based) of d in a per-page format
func (p *Pipeline) RenderPage(ctx context.Context, d *deck.Deck, index int, format Format) (out []byte, err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveRender(string(format), err, time.Since(start))
	}()

	if !format.PerPage() {
		return nil, fmt.Errorf("%w: %q is not a page format", ErrUnsupportedFormat, format)
	}
	if d == nil {
		return nil, fmt.Errorf("render: %w", binder.ErrNilInput)
	}
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, index+1, len(d.Pages))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, filled, err := p.page(d.Pages[index], format == FormatFilled)
	if err != nil {
		return nil, err
	}
	return p.encode(format, s, filled)
}

// Fill binds page to the template its kind selects
func (p *Pipeline) Fill(page deck.Page) (*template.Filled, error) {
	if page == nil {
		return nil, binder.ErrNilInput
	}
	return binder.Bind(p.lib.Lookup(page.Kind()), page)
}

// page binds and builds one page, consulting the scene cache unless the
// filled template itself is needed.
func (p *Pipeline) page(page deck.Page, needFilled bool) (*scene.Scene, *template.Filled, error) {
	if page == nil {
		return nil, nil, binder.ErrNilInput
	}
	tmpl := p.lib.Lookup(page.Kind())

	key, cached := p.cache.key(tmpl.ID, page)
	if cached && !needFilled {
		if s := p.cache.get(key); s != nil {
			p.metrics.IncCacheHit()
			return s, nil, nil
		}
		p.metrics.IncCacheMiss()
	}

	filled, err := binder.Bind(tmpl, page)
	if err != nil {
		return nil, nil, err
	}
	s := scene.Build(filled)
	if cached {
		p.cache.put(key, s)
	}
	return s, filled, nil
}

func (p *Pipeline) encode(format Format, s *scene.Scene, filled *template.Filled) ([]byte, error) {
	switch format {
	case FormatSVG:
		return p.svg.RenderBytes(s)
	case FormatPNG:
		return p.png.RenderBytes(s)
	case FormatScene:
		return json.Marshal(s)
	case FormatFilled:
		return json.Marshal(filled.Template)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (p *Pipeline) document(ctx context.Context, format Format, title string, scenes []*scene.Scene) ([]byte, error) {
	switch format {
	case FormatDeckXML:
		return deckxml.XML(title, scenes)
	case FormatDecksh:
		script := deckxml.Script(title, scenes)
		if _, err := deckxml.Compile(script); err != nil {
			return nil, fmt.Errorf("generated decksh does not compile: %w", err)
		}
		return script, nil
	case FormatPDF:
		markup, err := deckxml.XML(title, scenes)
		if err != nil {
			return nil, err
		}
		return p.pdf.RenderPDF(ctx, markup, len(scenes))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
