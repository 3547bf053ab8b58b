package deck

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joeblew999/deckbind/internal/validate"
)

type deckWire struct {
	Title   string            `json:"title"`
	Outline []string          `json:"outline"`
	Pages   []json.RawMessage `json:"pages"`
}

// Decode parses a deck JSON document and validates its shape.
func Decode(data []byte) (*Deck, error) {
	var d Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Deck) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return fmt.Errorf("%w: deck must be a JSON object", ErrInvalidShape)
	}
	var probe struct {
		Pages json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if len(probe.Pages) > 0 && !isNull(probe.Pages) && !isArray(probe.Pages) {
		return fmt.Errorf("%w: pages must be an array", ErrInvalidShape)
	}

	var w deckWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	out := Deck{Title: w.Title, Outline: w.Outline}
	for i, raw := range w.Pages {
		p, err := UnmarshalPage(raw)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		out.Pages = append(out.Pages, p)
	}
	*d = out
	return nil
}

func (d Deck) MarshalJSON() ([]byte, error) {
	w := deckWire{Title: d.Title, Outline: d.Outline, Pages: make([]json.RawMessage, 0, len(d.Pages))}
	if w.Outline == nil {
		w.Outline = []string{}
	}
	for i, p := range d.Pages {
		raw, err := MarshalPage(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		w.Pages = append(w.Pages, raw)
	}
	return json.Marshal(w)
}

// UnmarshalPage decodes one tagged page object.
func UnmarshalPage(raw []byte) (Page, error) {
	if !isObject(raw) {
		return nil, fmt.Errorf("%w: page must be a JSON object", ErrInvalidShape)
	}
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	var p Page
	switch Kind(tag.Type) {
	case KindCover:
		p = &Cover{}
	case KindOutline:
		p = &Outline{}
	case KindContent:
		p = &Content{}
	case KindSectionHeader:
		p = &SectionHeader{}
	case KindConclusion:
		p = &Conclusion{}
	case KindThankYou:
		p = &ThankYou{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageType, tag.Type)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %s page: %v", ErrInvalidShape, tag.Type, err)
	}
	return p, nil
}

// MarshalPage encodes p with its "type" tag first.
func MarshalPage(p Page) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil page", ErrInvalidShape)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	tag, _ := json.Marshal(string(p.Kind()))
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// Validate checks the structural invariants of a deck.
func (d *Deck) Validate() error {
	v := validate.New()
	v.Check(len(d.Pages) > 0, "deck has no pages")
	for i, p := range d.Pages {
		if p == nil {
			v.Addf("page %d is nil", i)
			continue
		}
		if c, ok := p.(*Content); ok && c.Layout != "" && !c.Layout.Valid() {
			v.Addf("page %d: unknown layout %q", i, c.Layout)
		}
	}
	return v.Err(ErrInvalidShape)
}

// Normalize fills defaults that decoding leaves empty.
func (d *Deck) Normalize() {
	for _, p := range d.Pages {
		if c, ok := p.(*Content); ok && c.Layout == "" {
			c.Layout = LayoutTitleAndContent
		}
	}
}

func isObject(data []byte) bool { return firstByte(data) == '{' }
func isArray(data []byte) bool  { return firstByte(data) == '[' }
func isNull(data []byte) bool   { return bytes.Equal(bytes.TrimSpace(data), []byte("null")) }

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
