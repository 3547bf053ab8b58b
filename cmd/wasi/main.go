//go:build wasi || wasip1

// WASI entry point - for running in wazero or other WASI runtimes
// Uses stdin/stdout for I/O, designed to be called as a CLI tool
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joeblew999/deckbind/handler"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/outline"
	"github.com/joeblew999/deckbind/pkg/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "render":
		doRender()
	case "parse":
		doParse()
	case "version":
		fmt.Printf("deckbind-wasm v%s (wasi)\n", handler.Version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: deckbind <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  render   Read markdown or deck JSON from stdin, write JSON result to stdout")
	fmt.Fprintln(os.Stderr, "           DECKBIND_FORMAT selects svg (default), scene, filled, deckxml or decksh")
	fmt.Fprintln(os.Stderr, "  parse    Read outline markdown from stdin, write the parsed outline to stdout")
	fmt.Fprintln(os.Stderr, "  version  Print version")
	fmt.Fprintln(os.Stderr, "  help     Print this help")
}

func doRender() {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		outputError(fmt.Sprintf("Failed to read stdin: %v", err))
		return
	}

	format := pipeline.FormatSVG
	if f := os.Getenv("DECKBIND_FORMAT"); f != "" {
		format, err = pipeline.ParseFormat(f)
		if err != nil {
			outputError(err.Error())
			return
		}
	}

	d, _, err := outline.Decode(input)
	if err != nil {
		outputError(err.Error())
		return
	}
	d.Normalize()

	lib, err := library.Builtin(library.Options{})
	if err != nil {
		outputError(err.Error())
		return
	}
	result, err := pipeline.New(lib, pipeline.Options{Workers: 1}).Render(context.Background(), d, format)
	if err != nil {
		outputError(err.Error())
		return
	}

	// Convert slides to strings
	slides := make([]string, len(result.Slides))
	for i, s := range result.Slides {
		slides[i] = string(s)
	}

	output := map[string]any{
		"success":    true,
		"title":      result.Title,
		"format":     result.Format,
		"slideCount": result.SlideCount,
		"slides":     slides,
	}

	json.NewEncoder(os.Stdout).Encode(output)
}

func doParse() {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		outputError(fmt.Sprintf("Failed to read stdin: %v", err))
		return
	}
	json.NewEncoder(os.Stdout).Encode(outline.Parse(string(input)))
}

func outputError(msg string) {
	output := map[string]any{
		"success": false,
		"error":   msg,
	}
	json.NewEncoder(os.Stdout).Encode(output)
}
