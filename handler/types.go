package handler

import (
	"time"

	"github.com/joeblew999/deckbind/internal/store"
)

// Response types for consistent API contracts across all runtimes

// CreateRequest is accepted by POST /api/v1/ppt and POST /api/v1/parse.
// Input holds outline markdown or deck JSON, optionally code-fenced.
type CreateRequest struct {
	Input string `json:"input"`
}

// CreateResponse is returned by POST /api/v1/ppt
type CreateResponse struct {
	ID          string   `json:"ppt_id"`
	Title       string   `json:"title"`
	Outline     []string `json:"outline"`
	Pages       int      `json:"pages"`
	Source      string   `json:"source"`
	Status      string   `json:"status"`
	DownloadURL string   `json:"download_url"`
}

// ListItem is one entry of the array returned by GET /api/v1/ppt
type ListItem struct {
	store.Summary
	DownloadURL string `json:"download_url"`
}

// RecordResponse is returned by GET /api/v1/ppt/{id}
type RecordResponse struct {
	*store.Record
	Slides []string `json:"slides"`
}

// ParseResponse is returned by POST /api/v1/parse
type ParseResponse struct {
	Title   string   `json:"title"`
	Outline []string `json:"outline"`
	Content []string `json:"content"`
}

// TemplateInfo describes one template of the library
type TemplateInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	PageType string `json:"pageType"`
	Elements int    `json:"elements"`
	Default  bool   `json:"default,omitempty"`
}

// TemplatesResponse is returned by GET /api/v1/templates
type TemplatesResponse struct {
	Templates []TemplateInfo `json:"templates"`
	PageTypes map[string]int `json:"pageTypes"`
}

// ErrorResponse is returned for all error cases
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RootResponse is returned by / endpoint
type RootResponse struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Formats   []string  `json:"formats"`
	Endpoints []string  `json:"endpoints"`
	StartedAt time.Time `json:"startedAt"`
}
