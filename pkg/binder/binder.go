// Package binder fills template text slots with deck page content.
//
// Binding never modifies the source template: it works on a deep copy.
// Slots are addressed by the template's rules (see template.Template.Rules).
// A slot is written at most once, empty fields never overwrite a slot's
// placeholder, and content that has no slot left is dropped.
package binder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/template"
)

// ErrNilInput is returned when Bind is called without a template or page.
var ErrNilInput = errors.New("binder: nil template or page")

// value is one unit of content headed for one slot.
type value struct {
	text    string
	bullets []string
	list    bool
}

func (v value) empty() bool {
	if v.list {
		return len(v.bullets) == 0
	}
	return strings.TrimSpace(v.text) == ""
}

// Bind returns a copy of tmpl with page's fields written into its text slots.
func Bind(tmpl *template.Template, page deck.Page) (*template.Filled, error) {
	if tmpl == nil || page == nil {
		return nil, ErrNilInput
	}
	filled := &template.Filled{Template: *tmpl.Clone()}
	b := newSlotTable(&filled.Template)

	for _, rule := range filled.Rules(page.Kind()) {
		values, err := fieldValues(page, rule.Field)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		slots := b.resolve(rule, len(values))
		for i, v := range values {
			if i >= len(slots) {
				break
			}
			el := slots[i]
			if el == nil || b.claimed[el] || v.empty() {
				continue
			}
			if v.list {
				el.SetBullets(v.bullets)
			} else {
				el.SetText(v.text)
			}
			b.claimed[el] = true
		}
	}
	return filled, nil
}

// slotTable indexes a template's text elements for rule resolution.
type slotTable struct {
	texts   []*template.TextElement
	byID    map[int]*template.TextElement
	maxID   int
	claimed map[*template.TextElement]bool
}

func newSlotTable(t *template.Template) *slotTable {
	st := &slotTable{
		texts:   t.TextElements(),
		byID:    make(map[int]*template.TextElement),
		claimed: make(map[*template.TextElement]bool),
	}
	for _, e := range st.texts {
		if _, dup := st.byID[e.ID]; !dup {
			st.byID[e.ID] = e
		}
		if e.ID > st.maxID {
			st.maxID = e.ID
		}
	}
	return st
}

// resolve expands a rule into the slots its first count values go to.
// Missing slots are nil so later values keep their reserved positions;
// fallback rules keep only slots that exist and are still free.
func (st *slotTable) resolve(r template.Rule, count int) []*template.TextElement {
	limit := len(st.texts) - 1
	if r.By == template.ByID {
		limit = st.maxID
	}
	slot := func(i int) (int, bool) {
		if i < len(r.Slots) {
			return r.Slots[i], true
		}
		if r.Step <= 0 || len(r.Slots) == 0 {
			return 0, false
		}
		n := r.Slots[len(r.Slots)-1] + (i-len(r.Slots)+1)*r.Step
		return n, n <= limit
	}

	out := make([]*template.TextElement, 0, count)
	for i := 0; len(out) < count; i++ {
		n, ok := slot(i)
		if !ok {
			break
		}
		el := st.lookup(r.By, n)
		if r.Fallback && (el == nil || st.claimed[el]) {
			continue
		}
		out = append(out, el)
	}
	return out
}

func (st *slotTable) lookup(by template.SelectBy, n int) *template.TextElement {
	switch by {
	case template.ByID:
		return st.byID[n]
	case template.ByIndex:
		if n >= 0 && n < len(st.texts) {
			return st.texts[n]
		}
	}
	return nil
}

// fieldValues extracts the content of field f from page p. Repeating fields
// are compacted; section fields keep one value per section.
func fieldValues(p deck.Page, f template.Field) ([]value, error) {
	one := func(s string) []value { return []value{{text: s}} }

	switch p := p.(type) {
	case *deck.Cover:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldSubtitle:
			return one(p.Subtitle), nil
		case template.FieldAuthor:
			return one(p.Author), nil
		case template.FieldDate:
			return one(p.Date), nil
		case template.FieldDetail:
			return texts(compact([]string{p.Subtitle, p.Author, p.Date})), nil
		}
	case *deck.Outline:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldSubtitle:
			return one(p.Subtitle), nil
		case template.FieldItem:
			return texts(compact(p.Items)), nil
		}
	case *deck.Content:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldSectionHeading, template.FieldSectionBody, template.FieldSectionBullets:
			out := make([]value, len(p.Sections))
			for i, s := range p.Sections {
				switch f {
				case template.FieldSectionHeading:
					out[i] = value{text: s.Heading}
				case template.FieldSectionBody:
					out[i] = value{text: s.Content}
				default:
					out[i] = value{bullets: compact(s.BulletPoints), list: true}
				}
			}
			return out, nil
		}
	case *deck.SectionHeader:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldSubtitle:
			return one(p.Subtitle), nil
		}
	case *deck.Conclusion:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldBody:
			return one(p.Content), nil
		case template.FieldKeyPoint:
			return texts(compact(p.KeyPoints)), nil
		}
	case *deck.ThankYou:
		switch f {
		case template.FieldTitle:
			return one(p.Title), nil
		case template.FieldSubtitle:
			return one(p.Subtitle), nil
		case template.FieldContact:
			return one(p.Contact), nil
		}
	default:
		return nil, fmt.Errorf("binder: unsupported page %T", p)
	}
	// The page kind does not carry this field.
	return nil, nil
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func texts(in []string) []value {
	out := make([]value, len(in))
	for i, s := range in {
		out[i] = value{text: s}
	}
	return out
}
