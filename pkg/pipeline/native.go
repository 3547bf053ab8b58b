//go:build !js && !tinygo && !cloudflare

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FontDirEnv names the environment variable holding the deck font directory
const FontDirEnv = "DECKFONTS"

// Pdfdeck renders deck XML to PDF by running ajstarks' pdfdeck binary
type Pdfdeck struct {
	bin     string
	fontDir string
}

// NewPdfdeck locates pdfdeck in binDir, or on PATH when binDir is empty.
// An empty fontDir falls back to $DECKFONTS.
func NewPdfdeck(binDir, fontDir string) (*Pdfdeck, error) {
	var bin string
	if binDir == "" {
		path, err := exec.LookPath("pdfdeck")
		if err != nil {
			return nil, fmt.Errorf("pdfdeck not found on PATH: %w", err)
		}
		bin = path
	} else {
		abs, err := filepath.Abs(filepath.Join(binDir, "pdfdeck"))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for binDir: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("pdfdeck binary not found at %s: %w", abs, err)
		}
		bin = abs
	}

	if fontDir == "" {
		fontDir = os.Getenv(FontDirEnv)
	}
	if fontDir != "" {
		abs, err := filepath.Abs(fontDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for fontDir: %w", err)
		}
		fontDir = abs
	}
	return &Pdfdeck{bin: bin, fontDir: fontDir}, nil
}

// RenderPDF writes deckXML to a temp dir and renders all pages into one PDF
func (p *Pdfdeck) RenderPDF(ctx context.Context, deckXML []byte, pages int) ([]byte, error) {
	if pages < 1 {
		return nil, fmt.Errorf("%w: %d pages", ErrPageRange, pages)
	}
	tmpDir, err := os.MkdirTemp("", "deckbind-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	xmlFile := filepath.Join(tmpDir, "deck.xml")
	if err := os.WriteFile(xmlFile, deckXML, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write XML file: %w", err)
	}

	args := []string{"-pages", fmt.Sprintf("1-%d", pages), "-outdir", tmpDir}
	if p.fontDir != "" {
		args = append(args, "-fontdir", p.fontDir)
	}
	args = append(args, xmlFile)

	cmd := exec.CommandContext(ctx, p.bin, args...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdfdeck failed: %w\nstderr: %s", err, errBuf.String())
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "deck.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to read generated pdf: %w", err)
	}
	return data, nil
}
