//go:build !js && !wasip1 && !cloudflare

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeblew999/deckbind/internal/config"
	"github.com/joeblew999/deckbind/internal/store"
	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/pipeline"
)

const testMarkdown = "### PPT大纲：新能源汽车\n" +
	"#### 幻灯片1: 市场概况\n" +
	"- 增长迅速\n"

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	renderFormat, renderOutDir, parseDeck, cfgFile = "", "", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDeckName(t *testing.T) {
	tests := map[string]string{
		"-":                  "deck",
		"talk.md":            "talk",
		"/tmp/decks/q3.json": "q3",
		"noext":              "noext",
	}
	for in, want := range tests {
		if got := deckName(in); got != want {
			t.Errorf("deckName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderToDirectory(t *testing.T) {
	input := writeFile(t, "talk.md", testMarkdown)
	outDir := t.TempDir()

	out, err := execute(t, "render", input, "-f", "svg", "-o", outDir)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	// cover, one content page and the closing page
	for _, name := range []string{"slide-0001.svg", "slide-0002.svg", "slide-0003.svg", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(outDir, "talk", name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
		if !strings.Contains(out, name) {
			t.Errorf("output listing does not mention %s", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "talk", "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m pipeline.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Title != "新能源汽车" || m.SlideCount != 3 || m.Format != "svg" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestRenderToStdout(t *testing.T) {
	input := writeFile(t, "deck.json", `{"title": "T", "pages": [{"type": "cover", "title": "T"}]}`)

	tests := []struct {
		format   string
		encoding string
	}{
		{"deckxml", ""},
		{"png", "base64"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, "render", input, "-f", tt.format)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			var res struct {
				Success    bool     `json:"success"`
				SlideCount int      `json:"slideCount"`
				Slides     []string `json:"slides"`
				Encoding   string   `json:"encoding"`
			}
			if err := json.Unmarshal([]byte(out), &res); err != nil {
				t.Fatalf("invalid JSON output: %v", err)
			}
			if !res.Success || res.SlideCount != 1 || len(res.Slides) != 1 {
				t.Errorf("unexpected result: %+v", res)
			}
			if res.Encoding != tt.encoding {
				t.Errorf("encoding = %q, want %q", res.Encoding, tt.encoding)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	input := writeFile(t, "talk.md", testMarkdown)

	if _, err := execute(t, "render", input, "-f", "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "render", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error for missing input")
	}
	bad := writeFile(t, "bad.json", `{"pages": [{"type": "agenda"}]}`)
	if _, err := execute(t, "render", bad); err == nil {
		t.Error("expected error for unknown page type")
	}
}

func TestParseCommand(t *testing.T) {
	input := writeFile(t, "talk.md", testMarkdown)

	out, err := execute(t, "parse", input)
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		Title   string   `json:"title"`
		Outline []string `json:"outline"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Title != "新能源汽车" || len(res.Outline) != 1 {
		t.Errorf("unexpected parse result: %+v", res)
	}

	out, err = execute(t, "parse", input, "--deck")
	if err != nil {
		t.Fatal(err)
	}
	d, err := deck.Decode([]byte(out))
	if err != nil {
		t.Fatalf("--deck output is not a deck: %v", err)
	}
	if len(d.Pages) != 3 {
		t.Errorf("pages = %d, want 3", len(d.Pages))
	}
}

func TestTemplatesCommands(t *testing.T) {
	out, err := execute(t, "templates", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "PAGE TYPE") || !strings.Contains(out, "thank_you") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	out, err = execute(t, "templates", "validate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Count: 6") {
		t.Errorf("unexpected validate output:\n%s", out)
	}

	cfgPath := writeFile(t, "deckbind.yaml", "templates:\n  dir: "+t.TempDir()+"\n")
	if _, err := execute(t, "templates", "validate", "-c", cfgPath); err == nil {
		t.Error("expected error for an empty template dir")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "deckbind version ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		modify func(*config.Config, string)
	}{
		{"memory", func(c *config.Config, dir string) {}},
		{"bolt", func(c *config.Config, dir string) {
			c.Store.Backend = config.BackendBolt
			c.Store.Path = filepath.Join(dir, "decks.db")
		}},
		{"kv", func(c *config.Config, dir string) {
			c.Store.Backend = config.BackendKV
			c.Store.Dir = dir
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Level = "error"
			tt.modify(cfg, t.TempDir())

			app, err := newApp(ctx, cfg, true)
			if err != nil {
				t.Fatal(err)
			}
			defer app.Close()

			rec := store.NewRecord(&deck.Deck{Title: "x", Pages: []deck.Page{&deck.Cover{Title: "x"}}}, store.SourceJSON)
			if err := app.store.Put(ctx, rec); err != nil {
				t.Fatal(err)
			}
			got, err := app.store.Get(ctx, rec.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Title != "x" {
				t.Errorf("title = %q", got.Title)
			}
		})
	}
}
