package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joeblew999/deckbind/internal/store"
	"github.com/joeblew999/deckbind/internal/validate"
	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/outline"
	"github.com/joeblew999/deckbind/pkg/pipeline"
)

var (
	slideFormats = map[string]pipeline.Format{
		"svg":  pipeline.FormatSVG,
		"png":  pipeline.FormatPNG,
		"json": pipeline.FormatScene,
	}
	exportFormats = map[string]pipeline.Format{
		"xml": pipeline.FormatDeckXML,
		"dsh": pipeline.FormatDecksh,
		"pdf": pipeline.FormatPDF,
	}
)

// readInput returns the generator output carried by a request body: the
// "input" member of a JSON object, or the body itself.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if _, ok := probe["input"]; !ok {
		return body, nil
	}
	var req CreateRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("input must be a string: %w", err)
	}
	return []byte(req.Input), nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := s.readInput(w, r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	v := validate.New()
	v.RequireNonEmpty("input", string(input))
	if !v.IsValid() {
		writeError(w, v.Error(), http.StatusBadRequest)
		return
	}

	d, format, err := outline.Decode(input)
	if err != nil {
		writeError(w, fmt.Sprintf("invalid deck: %v", err), http.StatusBadRequest)
		return
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := store.NewRecord(d, string(format))
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.logger.Error("failed to store deck", "id", rec.ID, "error", err)
		writeError(w, "failed to store deck", http.StatusInternalServerError)
		return
	}
	s.metrics.IncDecksStored()
	s.logger.Info("deck stored", "id", rec.ID, "title", rec.Title, "pages", len(d.Pages), "source", rec.Source)

	writeJSON(w, http.StatusCreated, CreateResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Outline:     nonNil(rec.Outline),
		Pages:       len(d.Pages),
		Source:      rec.Source,
		Status:      rec.Status,
		DownloadURL: exportURL(rec.ID, "xml"),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	decks, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list decks", "error", err)
		writeError(w, "failed to list decks", http.StatusInternalServerError)
		return
	}
	items := make([]ListItem, 0, len(decks))
	for _, d := range decks {
		items = append(items, ListItem{Summary: d, DownloadURL: exportURL(d.ID, "xml")})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	pages := 0
	if rec.Deck != nil {
		pages = len(rec.Deck.Pages)
	}
	slides := make([]string, pages)
	for i := range slides {
		slides[i] = fmt.Sprintf("/api/v1/ppt/%s/slides/%d.svg", rec.ID, i+1)
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec, Slides: slides})
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	ext := chi.URLParam(r, "ext")
	format, ok := slideFormats[ext]
	if !ok {
		writeError(w, fmt.Sprintf("unsupported slide format %q", ext), http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, "slide number must be an integer", http.StatusBadRequest)
		return
	}

	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	out, err := s.pipeline.RenderPage(r.Context(), rec.Deck, n-1, format)
	if err != nil {
		s.renderError(w, rec.ID, err)
		return
	}
	writeBytes(w, format, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ext := chi.URLParam(r, "ext")
	format, ok := exportFormats[ext]
	if !ok || !s.pipeline.Supports(format) {
		writeError(w, fmt.Sprintf("unsupported export format %q", ext), http.StatusBadRequest)
		return
	}

	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	res, err := s.pipeline.Render(r.Context(), rec.Deck, format)
	if err != nil {
		s.renderError(w, rec.ID, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ID+"."+format.Ext()))
	writeBytes(w, format, res.Slides[0])
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	input, err := s.readInput(w, r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := outline.Parse(string(input))
	writeJSON(w, http.StatusOK, ParseResponse{
		Title:   res.Title,
		Outline: res.Outline,
		Content: res.Content,
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	lib := s.pipeline.Library()
	def := lib.Default()

	infos := make([]TemplateInfo, 0, len(lib.IDs()))
	for _, id := range lib.IDs() {
		t := lib.ByID(id)
		infos = append(infos, TemplateInfo{
			ID:       t.ID,
			Name:     t.Name,
			PageType: t.PageType,
			Elements: len(t.Elements),
			Default:  def != nil && def.ID == t.ID,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	kinds := make(map[string]int)
	for k, id := range lib.Kinds() {
		kinds[string(k)] = id
	}
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: infos, PageTypes: kinds})
}

// record loads the deck named by the id URL parameter, writing the error
// response itself when it cannot.
func (s *Server) record(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := chi.URLParam(r, "id")

	v := validate.New()
	v.RequireNonEmpty("id", id)
	v.RequireNoPathTraversal("id", id)
	if !v.IsValid() {
		writeError(w, v.Error(), http.StatusBadRequest)
		return nil, false
	}

	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, fmt.Sprintf("deck %s not found", id), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load deck", "id", id, "error", err)
		writeError(w, "failed to load deck", http.StatusInternalServerError)
		return nil, false
	}
	if rec.Deck == nil {
		writeError(w, fmt.Sprintf("deck %s has no pages", id), http.StatusNotFound)
		return nil, false
	}
	return rec, true
}

func (s *Server) renderError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrPageRange):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, pipeline.ErrUnsupportedFormat), errors.Is(err, deck.ErrInvalidShape):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("render failed", "id", id, "error", err)
		writeError(w, "render failed", http.StatusInternalServerError)
	}
}

func writeBytes(w http.ResponseWriter, format pipeline.Format, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func exportURL(id, ext string) string {
	return fmt.Sprintf("/api/v1/ppt/%s/export.%s", id, ext)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
