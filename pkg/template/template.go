// Package template models visually pre-authored slide templates: a
// background and an ordered list of absolutely positioned elements on a
// fixed 960x540 canvas.
package template

import (
	"encoding/json"
	"errors"

	"github.com/joeblew999/deckbind/pkg/paint"
)

// Canvas size every template is authored against.
const (
	CanvasWidth  = 960
	CanvasHeight = 540
)

var (
	// ErrInvalidShape is returned for template documents that are structurally broken.
	ErrInvalidShape = errors.New("invalid template shape")
	// ErrInvalidSlots is returned when a template's slot map fails validation.
	ErrInvalidSlots = errors.New("invalid slot map")
)

// ElementType is the tag of an Element.
type ElementType string

const (
	TypeText  ElementType = "text"
	TypeImage ElementType = "image"
)

// Template is a slide design. Templates are read-only once loaded; use
// Clone to obtain a private copy.
type Template struct {
	ID         int
	Name       string
	PageType   string
	Background paint.Style
	Elements   []Element
	// Slots overrides the built-in slot conventions for the listed page kinds.
	Slots SlotMap
}

// Filled is a private copy of a template whose text slots carry deck content.
type Filled struct {
	Template
}

// Frame is the placement shared by every element.
type Frame struct {
	ID     int     `json:"id"`
	UUID   string  `json:"uuid,omitempty"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate float64 `json:"rotate,omitempty"`
	FlipH  bool    `json:"flipH,omitempty"`
	FlipV  bool    `json:"flipV,omitempty"`
}

// Element is one template element: *TextElement, *ImageElement or
// *UnknownElement.
type Element interface {
	Type() ElementType
	Base() *Frame
	Clone() Element
	isElement()
}

// TextElement is a text box with optional fill and border.
type TextElement struct {
	Frame
	VerticalType  string
	TextAlign     string
	LineHeight    float64
	LetterSpacing float64
	Pad           [2]float64
	Shape         *Shape
	Contents      []TextRun
}

// Shape is the box decoration of a text element.
type Shape struct {
	Fill paint.Style `json:"fill"`
	Line *Line       `json:"line,omitempty"`
}

// Line is a text box border.
type Line struct {
	Stroke      paint.Style `json:"stroke"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
}

// TextRun is one styled paragraph of a text element.
type TextRun struct {
	Content    string      `json:"content"`
	FontFamily string      `json:"fontFamily,omitempty"`
	FontSize   float64     `json:"fontSize,omitempty"`
	FontWeight Weight      `json:"fontWeight,omitempty"`
	FontFill   paint.Style `json:"fontFill"`
}

// ImageElement places an image by URI.
type ImageElement struct {
	Frame
	Src string
}

// UnknownElement keeps an element whose type tag is not recognised so it
// survives cloning and re-encoding.
type UnknownElement struct {
	Frame
	Tag string
	Raw json.RawMessage
}

func (*TextElement) Type() ElementType     { return TypeText }
func (*ImageElement) Type() ElementType    { return TypeImage }
func (e *UnknownElement) Type() ElementType { return ElementType(e.Tag) }

func (e *TextElement) Base() *Frame    { return &e.Frame }
func (e *ImageElement) Base() *Frame   { return &e.Frame }
func (e *UnknownElement) Base() *Frame { return &e.Frame }

func (*TextElement) isElement()    {}
func (*ImageElement) isElement()   {}
func (*UnknownElement) isElement() {}

// Clone returns a deep copy of t. The copy shares no memory with t.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := &Template{
		ID:         t.ID,
		Name:       t.Name,
		PageType:   t.PageType,
		Background: t.Background.Clone(),
		Slots:      t.Slots.Clone(),
	}
	if t.Elements != nil {
		out.Elements = make([]Element, len(t.Elements))
		for i, e := range t.Elements {
			out.Elements[i] = e.Clone()
		}
	}
	return out
}

func (e *TextElement) Clone() Element {
	out := *e
	if e.Shape != nil {
		s := Shape{Fill: e.Shape.Fill.Clone()}
		if e.Shape.Line != nil {
			s.Line = &Line{Stroke: e.Shape.Line.Stroke.Clone(), StrokeWidth: e.Shape.Line.StrokeWidth}
		}
		out.Shape = &s
	}
	if e.Contents != nil {
		out.Contents = make([]TextRun, len(e.Contents))
		for i, r := range e.Contents {
			out.Contents[i] = r.Clone()
		}
	}
	return &out
}

func (e *ImageElement) Clone() Element {
	out := *e
	return &out
}

func (e *UnknownElement) Clone() Element {
	out := *e
	out.Raw = append(json.RawMessage(nil), e.Raw...)
	return &out
}

// Clone returns a deep copy of r.
func (r TextRun) Clone() TextRun {
	r.FontFill = r.FontFill.Clone()
	return r
}

// TextElements returns the text elements of t in declared order.
func (t *Template) TextElements() []*TextElement {
	var out []*TextElement
	for _, e := range t.Elements {
		if te, ok := e.(*TextElement); ok {
			out = append(out, te)
		}
	}
	return out
}

// SetText writes s into the first run, creating one when there is none.
func (e *TextElement) SetText(s string) {
	if len(e.Contents) == 0 {
		e.Contents = []TextRun{{}}
	}
	e.Contents[0].Content = s
}

// SetBullets replaces the runs with one run per item. Every run inherits the
// styling of the element's first run.
func (e *TextElement) SetBullets(items []string) {
	var proto TextRun
	if len(e.Contents) > 0 {
		proto = e.Contents[0]
	}
	runs := make([]TextRun, 0, len(items))
	for _, item := range items {
		r := proto.Clone()
		r.Content = item
		runs = append(runs, r)
	}
	e.Contents = runs
}
