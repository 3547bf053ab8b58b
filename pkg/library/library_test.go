package library

import (
	"context"
	"errors"
	"testing"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/template"
	"github.com/joeblew999/deckbind/runtime"
)

func TestBuiltin(t *testing.T) {
	lib, err := Builtin(Options{})
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	if got := lib.IDs(); len(got) != 6 {
		t.Fatalf("IDs() = %v, want 6 templates", got)
	}
	for k, id := range DefaultPageTypes {
		tmpl := lib.Lookup(k)
		if tmpl.ID != id {
			t.Errorf("Lookup(%s) = template %d, want %d", k, tmpl.ID, id)
		}
		if tmpl.PageType != string(k) {
			t.Errorf("template %d declares page type %q, want %q", id, tmpl.PageType, k)
		}
		if !tmpl.DeclaresSlotIDs() {
			t.Errorf("template %d declares no content slot ids", id)
		}
	}
}

func TestFallback(t *testing.T) {
	var missed []string
	lib, err := Builtin(Options{DefaultID: 3, OnFallback: func(key string) { missed = append(missed, key) }})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		get  func() *template.Template
		want int
	}{
		{"known kind", func() *template.Template { return lib.Lookup(deck.KindCover) }, 1},
		{"unknown kind", func() *template.Template { return lib.Lookup("agenda") }, 3},
		{"known id", func() *template.Template { return lib.ByID(5) }, 5},
		{"unknown id", func() *template.Template { return lib.ByID(17) }, 3},
		{"resolve kind", func() *template.Template { return lib.Resolve("thank_you") }, 6},
		{"resolve id", func() *template.Template { return lib.Resolve("4") }, 4},
		{"resolve garbage", func() *template.Template { return lib.Resolve("??") }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(); got == nil || got.ID != tt.want {
				t.Errorf("got %v, want template %d", got, tt.want)
			}
		})
	}

	want := []string{"agenda", "17", "??"}
	if len(missed) != len(want) {
		t.Fatalf("fallbacks = %v, want %v", missed, want)
	}
	for i := range want {
		if missed[i] != want[i] {
			t.Errorf("fallback %d = %q, want %q", i, missed[i], want[i])
		}
	}
}

func TestPageTypeOverrides(t *testing.T) {
	lib, err := Builtin(Options{PageTypes: map[deck.Kind]int{deck.KindOutline: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if got := lib.Lookup(deck.KindOutline).ID; got != 3 {
		t.Errorf("Lookup(outline) = %d, want 3", got)
	}
	if got := lib.Kinds()[deck.KindCover]; got != 1 {
		t.Errorf("Kinds()[cover] = %d", got)
	}

	if _, err := Builtin(Options{PageTypes: map[deck.Kind]int{deck.KindOutline: 99}}); err == nil {
		t.Error("override to a missing template should fail")
	}
	if _, err := Builtin(Options{PageTypes: map[deck.Kind]int{"agenda": 1}}); err == nil {
		t.Error("override of an unknown page type should fail")
	}
	if _, err := Builtin(Options{DefaultID: 99}); err == nil {
		t.Error("missing default template should fail")
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("New(nil) error = %v", err)
	}

	a := &template.Template{ID: 10, PageType: "conclusion"}
	b := &template.Template{ID: 20, PageType: "conclusion"}
	lib, err := New([]*template.Template{b, a}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := lib.Default().ID; got != 10 {
		t.Errorf("Default() = %d, want lowest id", got)
	}
	if got := lib.Lookup(deck.KindConclusion).ID; got != 10 {
		t.Errorf("Lookup(conclusion) = %d, want lowest declaring id", got)
	}

	if _, err := New([]*template.Template{a, {ID: 10}}, Options{}); err == nil {
		t.Error("duplicate ids should fail")
	}

	bad := &template.Template{ID: 1, Slots: template.SlotMap{deck.KindCover: {{Field: template.FieldTitle, By: template.ByID, Slots: []int{5}}}}}
	if _, err := New([]*template.Template{bad}, Options{}); !errors.Is(err, template.ErrInvalidSlots) {
		t.Errorf("invalid slots error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store, err := runtime.NewLocalFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"templates/7.json":    `{"pageType": "cover", "elements": [{"type": "text", "id": 5}]}`,
		"templates/8.json":    `{"id": 8, "elements": []}`,
		"templates/README.md": `not a template`,
		"elsewhere/9.json":    `{"id": 9}`,
	}
	for key, body := range files {
		if err := store.Put(ctx, key, []byte(body), "application/json"); err != nil {
			t.Fatal(err)
		}
	}

	lib, err := Load(ctx, store, "templates/", Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := lib.IDs(); len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("IDs() = %v, want [7 8]", got)
	}
	if got := lib.Lookup(deck.KindCover).ID; got != 7 {
		t.Errorf("Lookup(cover) = %d, want 7", got)
	}

	if err := store.Put(ctx, "templates/bad.json", []byte(`{"elements": 3}`), "application/json"); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(ctx, store, "templates/", Options{}); !errors.Is(err, template.ErrInvalidShape) {
		t.Errorf("Load() with a broken template error = %v", err)
	}
}
