// Package store keeps normalised decks so they can be rendered again by id.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/deckbind/pkg/deck"
)

// ErrNotFound is returned for unknown deck ids
var ErrNotFound = errors.New("deck not found")

// Source records which input format a deck was created from
const (
	SourceMarkdown = "markdown"
	SourceJSON     = "json"
)

// StatusCompleted is the status of a stored, renderable deck
const StatusCompleted = "completed"

// Record is one stored deck
type Record struct {
	ID        string     `json:"ppt_id"`
	Title     string     `json:"title"`
	Outline   []string   `json:"outline"`
	Deck      *deck.Deck `json:"deck"`
	Source    string     `json:"source"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Summary is the listing view of a Record
type Summary struct {
	ID        string    `json:"ppt_id"`
	Title     string    `json:"title"`
	Pages     int       `json:"pages"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DeckStore persists deck records
type DeckStore interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]Summary, error)
}

// NewID returns a short deck id: the first 8 characters of a random UUID
func NewID() string {
	return uuid.New().String()[:8]
}

// NewRecord wraps a normalised deck in a completed record with a fresh id
func NewRecord(d *deck.Deck, source string) *Record {
	return &Record{
		ID:        NewID(),
		Title:     d.Title,
		Outline:   append([]string(nil), d.Outline...),
		Deck:      d,
		Source:    source,
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

// Summary returns the listing view of r
func (r *Record) Summary() Summary {
	pages := 0
	if r.Deck != nil {
		pages = len(r.Deck.Pages)
	}
	return Summary{
		ID:        r.ID,
		Title:     r.Title,
		Pages:     pages,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func validateRecord(rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record id is required")
	}
	return nil
}

// sortSummaries orders newest first, then by id
func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
