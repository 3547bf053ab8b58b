// Package library holds the set of templates a deck is rendered with and
// resolves page types to templates.
package library

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/template"
	"github.com/joeblew999/deckbind/runtime"
)

//go:embed templates/*.json
var builtinFS embed.FS

// ErrEmpty is returned when a library would hold no templates.
var ErrEmpty = errors.New("library: no templates")

// DefaultPageTypes maps page kinds to the conventional template ids.
var DefaultPageTypes = map[deck.Kind]int{
	deck.KindCover:         1,
	deck.KindOutline:       2,
	deck.KindContent:       3,
	deck.KindSectionHeader: 4,
	deck.KindConclusion:    5,
	deck.KindThankYou:      6,
}

// Options configures a Library.
type Options struct {
	// PageTypes overrides the template chosen for a page kind.
	PageTypes map[deck.Kind]int
	// DefaultID is the template used when a lookup fails. Zero selects the lowest id.
	DefaultID int
	// OnFallback is called with the failed key whenever the default template is substituted.
	OnFallback func(key string)
}

// Library is an immutable, concurrency-safe set of templates.
type Library struct {
	byID       map[int]*template.Template
	byKind     map[deck.Kind]int
	defaultID  int
	onFallback func(string)
}

// New indexes templates. Every template is validated.
func New(templates []*template.Template, opts Options) (*Library, error) {
	if len(templates) == 0 {
		return nil, ErrEmpty
	}
	l := &Library{
		byID:       make(map[int]*template.Template, len(templates)),
		byKind:     make(map[deck.Kind]int),
		onFallback: opts.OnFallback,
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", t.ID, err)
		}
		if _, dup := l.byID[t.ID]; dup {
			return nil, fmt.Errorf("library: duplicate template id %d", t.ID)
		}
		l.byID[t.ID] = t
	}

	ids := l.IDs()
	l.defaultID = ids[0]
	if opts.DefaultID != 0 {
		if _, ok := l.byID[opts.DefaultID]; !ok {
			return nil, fmt.Errorf("library: default template %d not found", opts.DefaultID)
		}
		l.defaultID = opts.DefaultID
	}

	// Conventional ids first, then templates that declare a page type,
	// then explicit overrides.
	for k, id := range DefaultPageTypes {
		if _, ok := l.byID[id]; ok {
			l.byKind[k] = id
		}
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if k, ok := deck.ParseKind(l.byID[ids[i]].PageType); ok {
			l.byKind[k] = ids[i]
		}
	}
	for k, id := range opts.PageTypes {
		if _, ok := deck.ParseKind(string(k)); !ok {
			return nil, fmt.Errorf("library: unknown page type %q", k)
		}
		if _, ok := l.byID[id]; !ok {
			return nil, fmt.Errorf("library: page type %s maps to missing template %d", k, id)
		}
		l.byKind[k] = id
	}
	return l, nil
}

// Builtin returns the library of embedded default templates.
func Builtin(opts Options) (*Library, error) {
	entries, err := fs.ReadDir(builtinFS, "templates")
	if err != nil {
		return nil, err
	}
	var templates []*template.Template
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, err
		}
		t, err := decode(e.Name(), data)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return New(templates, opts)
}

// Load reads every *.json template under prefix from storage.
func Load(ctx context.Context, storage runtime.Storage, prefix string, opts Options) (*Library, error) {
	list, err := storage.List(ctx, prefix, "")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	keys := append([]string(nil), list.Keys...)
	sort.Strings(keys)

	var templates []*template.Template
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := readKey(ctx, storage, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		t, err := decode(key, data)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return New(templates, opts)
}

func readKey(ctx context.Context, storage runtime.Storage, key string) ([]byte, error) {
	rc, err := storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// decode parses a template file. A template without an id takes the number
// in its file name, so "12.json" becomes template 12.
func decode(name string, data []byte) (*template.Template, error) {
	t, err := template.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if t.ID == 0 {
		base := strings.TrimSuffix(path.Base(name), path.Ext(name))
		if n, err := strconv.Atoi(base); err == nil {
			t.ID = n
		}
	}
	return t, nil
}

// Lookup returns the template for page kind k, or the default template.
func (l *Library) Lookup(k deck.Kind) *template.Template {
	if id, ok := l.byKind[k]; ok {
		return l.byID[id]
	}
	l.fallback(string(k))
	return l.byID[l.defaultID]
}

// ByID returns template id, or the default template.
func (l *Library) ByID(id int) *template.Template {
	if t, ok := l.byID[id]; ok {
		return t
	}
	l.fallback(strconv.Itoa(id))
	return l.byID[l.defaultID]
}

// Resolve looks a template up by page type name or numeric id.
func (l *Library) Resolve(key string) *template.Template {
	if k, ok := deck.ParseKind(key); ok {
		return l.Lookup(k)
	}
	if id, err := strconv.Atoi(key); err == nil {
		return l.ByID(id)
	}
	l.fallback(key)
	return l.byID[l.defaultID]
}

// Default returns the fallback template.
func (l *Library) Default() *template.Template {
	return l.byID[l.defaultID]
}

// IDs returns the template ids in ascending order.
func (l *Library) IDs() []int {
	ids := make([]int, 0, len(l.byID))
	for id := range l.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Kinds returns the page kind to template id table.
func (l *Library) Kinds() map[deck.Kind]int {
	out := make(map[deck.Kind]int, len(l.byKind))
	for k, id := range l.byKind {
		out[k] = id
	}
	return out
}

func (l *Library) fallback(key string) {
	if l.onFallback != nil {
		l.onFallback(key)
	}
}
