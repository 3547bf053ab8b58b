package template

import (
	"github.com/joeblew999/deckbind/internal/validate"
	"github.com/joeblew999/deckbind/pkg/deck"
)

// Field is a semantic page field that can be bound into a slot.
type Field string

const (
	FieldTitle          Field = "title"
	FieldSubtitle       Field = "subtitle"
	FieldAuthor         Field = "author"
	FieldDate           Field = "date"
	FieldDetail         Field = "detail" // non-empty cover subtitle, author and date, in that order
	FieldContact        Field = "contact"
	FieldBody           Field = "body"
	FieldItem           Field = "item"
	FieldKeyPoint       Field = "key_point"
	FieldSectionHeading Field = "section_heading"
	FieldSectionBody    Field = "section_body"
	FieldSectionBullets Field = "section_bullets"
)

// pageFields lists the fields each page kind can supply.
var pageFields = map[deck.Kind][]Field{
	deck.KindCover:         {FieldTitle, FieldSubtitle, FieldAuthor, FieldDate, FieldDetail},
	deck.KindOutline:       {FieldTitle, FieldSubtitle, FieldItem},
	deck.KindContent:       {FieldTitle, FieldSectionHeading, FieldSectionBody, FieldSectionBullets},
	deck.KindSectionHeader: {FieldTitle, FieldSubtitle},
	deck.KindConclusion:    {FieldTitle, FieldBody, FieldKeyPoint},
	deck.KindThankYou:      {FieldTitle, FieldSubtitle, FieldContact},
}

// Supplies reports whether pages of kind k carry field f.
func Supplies(k deck.Kind, f Field) bool {
	for _, have := range pageFields[k] {
		if have == f {
			return true
		}
	}
	return false
}

// SelectBy says how a rule addresses slots.
type SelectBy string

const (
	// ByID addresses text elements by their id attribute.
	ByID SelectBy = "id"
	// ByIndex addresses the n-th text element in declared order.
	ByIndex SelectBy = "index"
)

// Rule binds one field to a sequence of slots. Value i of the field goes to
// Slots[i]; when Step is positive the sequence continues past the last listed
// slot in increments of Step. With Fallback set the listed slots are
// alternatives: only those present in the template and not yet claimed are used.
type Rule struct {
	Field    Field    `json:"field"`
	By       SelectBy `json:"by"`
	Slots    []int    `json:"slots"`
	Step     int      `json:"step,omitempty"`
	Fallback bool     `json:"fallback,omitempty"`
}

// SlotMap maps each page kind to its ordered binding rules. Earlier rules
// claim slots first.
type SlotMap map[deck.Kind][]Rule

// Clone returns a deep copy of m.
func (m SlotMap) Clone() SlotMap {
	if m == nil {
		return nil
	}
	out := make(SlotMap, len(m))
	for k, rules := range m {
		cp := make([]Rule, len(rules))
		for i, r := range rules {
			r.Slots = append([]int(nil), r.Slots...)
			cp[i] = r
		}
		out[k] = cp
	}
	return out
}

func id(f Field, slots ...int) Rule    { return Rule{Field: f, By: ByID, Slots: slots} }
func index(f Field, slots ...int) Rule { return Rule{Field: f, By: ByIndex, Slots: slots} }

func (r Rule) step(n int) Rule {
	r.Step = n
	return r
}

func (r Rule) alternatives() Rule {
	r.Fallback = true
	return r
}

// DefaultIDSlots returns the id convention shared by the built-in template
// family: ids 5 and up hold content, the rest is decoration.
func DefaultIDSlots() SlotMap {
	return SlotMap{
		deck.KindCover: {
			id(FieldTitle, 5, 6).alternatives(),
			id(FieldSubtitle, 6),
			id(FieldAuthor, 7),
			id(FieldDate, 8),
		},
		deck.KindOutline: {
			id(FieldTitle, 5),
			id(FieldSubtitle, 6),
			id(FieldItem, 7).step(1),
		},
		deck.KindContent: {
			id(FieldTitle, 5),
			id(FieldSectionHeading, 6).step(3),
			id(FieldSectionBody, 7).step(3),
			id(FieldSectionBullets, 8).step(3),
		},
		deck.KindSectionHeader: {
			id(FieldTitle, 5),
			id(FieldSubtitle, 6),
		},
		deck.KindConclusion: {
			id(FieldTitle, 5),
			id(FieldBody, 6),
			id(FieldKeyPoint, 7).step(1),
		},
		deck.KindThankYou: {
			id(FieldTitle, 5),
			id(FieldSubtitle, 6),
			id(FieldContact, 7),
		},
	}
}

// DefaultIndexSlots returns the positional convention used for templates
// that declare no content ids.
func DefaultIndexSlots() SlotMap {
	return SlotMap{
		deck.KindCover: {
			index(FieldTitle, 0),
			index(FieldSubtitle, 1),
			index(FieldAuthor, 2),
			index(FieldDate, 3),
		},
		deck.KindOutline: {
			index(FieldTitle, 0),
			index(FieldSubtitle, 1),
			index(FieldItem, 2).step(1),
		},
		deck.KindContent: {
			index(FieldTitle, 0),
			index(FieldSectionHeading, 1).step(3),
			index(FieldSectionBody, 2).step(3),
			index(FieldSectionBullets, 3).step(3),
		},
		deck.KindSectionHeader: {
			index(FieldTitle, 0),
			index(FieldSubtitle, 1),
		},
		deck.KindConclusion: {
			index(FieldTitle, 0),
			index(FieldBody, 1),
			index(FieldKeyPoint, 2).step(1),
		},
		deck.KindThankYou: {
			index(FieldTitle, 0),
			index(FieldSubtitle, 1),
			index(FieldContact, 2),
		},
	}
}

// Content slot ids of the built-in template family.
const (
	minSlotID = 5
	maxSlotID = 10
)

// DeclaresSlotIDs reports whether any text element carries a content slot id.
func (t *Template) DeclaresSlotIDs() bool {
	for _, e := range t.TextElements() {
		if e.ID >= minSlotID && e.ID <= maxSlotID {
			return true
		}
	}
	return false
}

// Rules returns the binding rules for page kind k: the template's own slot
// map when it covers k, otherwise the id convention when the template
// declares content ids, otherwise the positional convention.
func (t *Template) Rules(k deck.Kind) []Rule {
	if rules, ok := t.Slots[k]; ok {
		return rules
	}
	if t.DeclaresSlotIDs() {
		return DefaultIDSlots()[k]
	}
	return DefaultIndexSlots()[k]
}

// Validate checks the template's structure and its explicit slot map.
func (t *Template) Validate() error {
	v := validate.New()
	for i, e := range t.Elements {
		if e == nil {
			v.Addf("element %d is nil", i)
		}
	}
	if !v.IsValid() {
		return v.Err(ErrInvalidShape)
	}

	texts := t.TextElements()
	ids := make(map[int]bool, len(texts))
	for _, e := range texts {
		ids[e.ID] = true
	}
	for k, rules := range t.Slots {
		if _, ok := deck.ParseKind(string(k)); !ok {
			v.Addf("slots: unknown page type %q", k)
			continue
		}
		for i, r := range rules {
			where := func(format string, args ...any) {
				v.Addf("slots[%s][%d]: "+format, append([]any{k, i}, args...)...)
			}
			if !Supplies(k, r.Field) {
				where("field %q is not available on %s pages", r.Field, k)
			}
			if r.By != ByID && r.By != ByIndex {
				where("selector must be %q or %q", ByID, ByIndex)
			}
			if len(r.Slots) == 0 {
				where("no slots")
			}
			if r.Step < 0 {
				where("negative step")
			}
			for _, n := range r.Slots {
				switch {
				case n < 0:
					where("negative slot %d", n)
				case r.By == ByID && !ids[n] && !r.Fallback:
					where("no text element with id %d", n)
				case r.By == ByIndex && n >= len(texts) && !r.Fallback:
					where("index %d out of range (%d text elements)", n, len(texts))
				}
			}
		}
	}
	return v.Err(ErrInvalidSlots)
}
