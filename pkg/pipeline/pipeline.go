// Package pipeline renders decks: every page is bound to its template, built
// into a scene and drawn on the requested surface.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeblew999/deckbind/pkg/scene"
)

var (
	// ErrUnsupportedFormat is returned for unknown or unavailable output formats
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrPageRange is returned when a page number is outside the deck
	ErrPageRange = errors.New("page out of range")
)

// Format is an output format
type Format string

const (
	FormatSVG     Format = "svg"     // one SVG document per page
	FormatPNG     Format = "png"     // one PNG thumbnail per page
	FormatScene   Format = "scene"   // one scene JSON document per page
	FormatFilled  Format = "filled"  // one filled template JSON document per page
	FormatDeckXML Format = "deckxml" // one deck XML document for the deck
	FormatDecksh  Format = "decksh"  // one decksh script for the deck
	FormatPDF     Format = "pdf"     // one PDF for the deck, via pdfdeck
)

// Formats lists every format in a stable order
func Formats() []Format {
	return []Format{FormatSVG, FormatPNG, FormatScene, FormatFilled, FormatDeckXML, FormatDecksh, FormatPDF}
}

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// PerPage reports whether f produces one output per page
func (f Format) PerPage() bool {
	switch f {
	case FormatSVG, FormatPNG, FormatScene, FormatFilled:
		return true
	}
	return false
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatScene, FormatFilled:
		return "application/json"
	case FormatDeckXML:
		return "application/xml"
	case FormatDecksh:
		return "text/plain; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Ext returns the file extension for f
func (f Format) Ext() string {
	switch f {
	case FormatScene, FormatFilled:
		return "json"
	case FormatDeckXML:
		return "xml"
	case FormatDecksh:
		return "dsh"
	}
	return string(f)
}

// Result holds the output of a render
type Result struct {
	// Title from the deck
	Title string
	// Format is the output format
	Format Format
	// Slides holds one output per page for per-page formats, otherwise a
	// single document
	Slides [][]byte
	// Scenes holds the scene of every page; treat them as read-only
	Scenes []*scene.Scene
	// SlideCount is the number of pages
	SlideCount int
}
