//go:build js && wasm && !cloudflare

// Browser/standard WASM entry point
// Exposes functions to JavaScript and uses fetch() for template access
package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/joeblew999/deckbind/handler"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/outline"
	"github.com/joeblew999/deckbind/pkg/pipeline"
	"github.com/joeblew999/deckbind/runtime"
)

var (
	mu   sync.Mutex
	pipe *pipeline.Pipeline
)

func main() {
	lib, err := library.Builtin(library.Options{})
	if err != nil {
		panic(err)
	}
	pipe = pipeline.New(lib, pipeline.Options{Workers: 1})

	// Export functions to JavaScript
	js.Global().Set("deckbind", js.ValueOf(map[string]any{
		"version":   js.FuncOf(version),
		"render":    js.FuncOf(render),
		"parse":     js.FuncOf(parse),
		"configure": js.FuncOf(configure),
	}))

	// Keep alive
	select {}
}

func current() *pipeline.Pipeline {
	mu.Lock()
	defer mu.Unlock()
	return pipe
}

// version returns the module version
func version(this js.Value, args []js.Value) any {
	return "deckbind-wasm v" + handler.Version + " (browser)"
}

// configure loads templates from a public bucket
// Usage: deckbind.configure({templatesURL: "https://...", prefix: "templates/"}) -> Promise
func configure(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing config argument")
	}

	config := args[0]
	templatesURL := config.Get("templatesURL")
	if templatesURL.IsUndefined() || templatesURL.String() == "" {
		return errorResult("templatesURL is required")
	}
	prefix := ""
	if p := config.Get("prefix"); !p.IsUndefined() {
		prefix = p.String()
	}
	storage := runtime.NewHTTPStorage(templatesURL.String(), nil)
	runtime.SetRuntime(&runtime.Runtime{Templates: storage})

	// fetch() blocks, so loading runs in a goroutine behind a Promise
	promise := js.FuncOf(func(this js.Value, promiseArgs []js.Value) any {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			lib, err := library.Load(context.Background(), runtime.Templates(), prefix, library.Options{})
			if err != nil {
				reject.Invoke(err.Error())
				return
			}
			mu.Lock()
			pipe = pipeline.New(lib, pipeline.Options{Workers: 1})
			mu.Unlock()

			resolve.Invoke(successResult(map[string]any{
				"configured": true,
				"templates":  len(lib.IDs()),
			}))
		}()

		return nil
	})

	return js.Global().Get("Promise").New(promise)
}

// render converts outline markdown or deck JSON to slides
// Usage: deckbind.render(input, format?) -> JSON result
func render(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing input argument")
	}

	format := pipeline.FormatSVG
	if len(args) >= 2 && !args[1].IsUndefined() && !args[1].IsNull() {
		f, err := pipeline.ParseFormat(args[1].String())
		if err != nil {
			return errorResult(err.Error())
		}
		format = f
	}

	d, source, err := outline.Decode([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	d.Normalize()

	result, err := current().Render(context.Background(), d, format)
	if err != nil {
		return errorResult(err.Error())
	}

	slides := make([]string, len(result.Slides))
	for i, s := range result.Slides {
		slides[i] = string(s)
	}

	return successResult(map[string]any{
		"title":      result.Title,
		"source":     source,
		"format":     result.Format,
		"slideCount": result.SlideCount,
		"slides":     slides,
	})
}

// parse returns the parsed outline of markdown
// Usage: deckbind.parse(markdown) -> JSON result
func parse(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing markdown argument")
	}
	res := outline.Parse(args[0].String())
	return successResult(map[string]any{
		"title":   res.Title,
		"outline": res.Outline,
		"content": res.Content,
	})
}

func successResult(data map[string]any) string {
	data["success"] = true
	b, _ := json.Marshal(data)
	return string(b)
}

func errorResult(msg string) string {
	b, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   msg,
	})
	return string(b)
}
