package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joeblew999/deckbind/runtime"
)

// ManifestKey is the name of the manifest written next to exported files
const ManifestKey = "manifest.json"

// Manifest describes a rendered deck written to storage
type Manifest struct {
	Source      string    `json:"source"`
	ProcessedAt time.Time `json:"processedAt"`
	Title       string    `json:"title"`
	Format      Format    `json:"format"`
	SlideCount  int       `json:"slideCount"`
	Files       []string  `json:"files"`
}

// Export stores every output of res under name/ followed by a manifest.
// Per-page formats are written as slide-0001.<ext>, documents as deck.<ext>.
func Export(ctx context.Context, out runtime.Storage, name, source string, res *Result) (*Manifest, error) {
	m := &Manifest{
		Source:      source,
		ProcessedAt: time.Now().UTC(),
		Title:       res.Title,
		Format:      res.Format,
		SlideCount:  res.SlideCount,
		Files:       make([]string, 0, len(res.Slides)+1),
	}

	for i, data := range res.Slides {
		key := fmt.Sprintf("%s/deck.%s", name, res.Format.Ext())
		if res.Format.PerPage() {
			key = fmt.Sprintf("%s/slide-%04d.%s", name, i+1, res.Format.Ext())
		}
		if err := out.Put(ctx, key, data, res.Format.ContentType()); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", key, err)
		}
		m.Files = append(m.Files, key)
	}

	manifestJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	manifestKey := name + "/" + ManifestKey
	if err := out.Put(ctx, manifestKey, manifestJSON, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}
	m.Files = append(m.Files, manifestKey)
	return m, nil
}
