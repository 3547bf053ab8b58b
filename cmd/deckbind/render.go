//go:build !js && !wasip1 && !cloudflare

package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckbind/pkg/outline"
	"github.com/joeblew999/deckbind/pkg/pipeline"
	"github.com/joeblew999/deckbind/runtime"
)

var (
	renderFormat string
	renderOutDir string
)

var renderCmd = &cobra.Command{
	Use:   "render <input>",
	Short: "Render outline markdown or deck JSON (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: svg, png, scene, filled, deckxml, decksh, pdf (default from config)")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "write files under this directory instead of printing JSON")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if renderFormat == "" {
		renderFormat = cfg.Render.DefaultFormat
	}
	format, err := pipeline.ParseFormat(renderFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer app.Close()

	input, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	d, source, err := outline.Decode(input)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}
	d.Normalize()

	res, err := app.pipeline.Render(ctx, d, format)
	if err != nil {
		return err
	}
	app.logger.Debug("rendered", "input", args[0], "source", source, "format", format, "slides", res.SlideCount)

	if renderOutDir == "" {
		return printResult(cmd.OutOrStdout(), res)
	}

	exports, err := runtime.NewLocalFileStorage(renderOutDir)
	if err != nil {
		return fmt.Errorf("failed to open output dir: %w", err)
	}
	runtime.Current.Exports = exports

	m, err := pipeline.Export(ctx, runtime.Exports(), deckName(args[0]), args[0], res)
	if err != nil {
		return err
	}
	for _, f := range m.Files {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(renderOutDir, f))
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// deckName derives the output folder from the input path
func deckName(path string) string {
	if path == "-" {
		return "deck"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// printResult writes the render result as JSON. Binary formats are base64 encoded.
func printResult(w io.Writer, res *pipeline.Result) error {
	binary := res.Format == pipeline.FormatPNG || res.Format == pipeline.FormatPDF
	slides := make([]string, len(res.Slides))
	for i, s := range res.Slides {
		if binary {
			slides[i] = base64.StdEncoding.EncodeToString(s)
		} else {
			slides[i] = string(s)
		}
	}

	output := map[string]any{
		"success":    true,
		"title":      res.Title,
		"format":     res.Format,
		"slideCount": res.SlideCount,
		"slides":     slides,
	}
	if binary {
		output["encoding"] = "base64"
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
