package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joeblew999/deckbind/pkg/paint"
)

// Weight is a font weight. Documents use both numbers (700) and keywords ("bold").
type Weight string

func (w *Weight) UnmarshalJSON(data []byte) error {
	*w = ""
	var s string
	if json.Unmarshal(data, &s) == nil {
		*w = Weight(s)
		return nil
	}
	var n float64
	if json.Unmarshal(data, &n) == nil {
		*w = Weight(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

// flexInt decodes ids written as numbers or numeric strings. Anything else is zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	var n float64
	if json.Unmarshal(data, &n) == nil {
		if n == math.Trunc(n) {
			*f = flexInt(n)
		}
		return nil
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(v)
		}
	}
	return nil
}

type templateWire struct {
	ID         flexInt         `json:"id"`
	Name       string          `json:"name,omitempty"`
	PageType   string          `json:"pageType,omitempty"`
	Background json.RawMessage `json:"background,omitempty"`
	Elements   json.RawMessage `json:"elements"`
	Slots      SlotMap         `json:"slots,omitempty"`
}

type backgroundWire struct {
	Type int             `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type elementWire struct {
	Type string  `json:"type"`
	ID   flexInt `json:"id"`
	UUID string  `json:"uuid,omitempty"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate float64 `json:"rotate,omitempty"`
	FlipH  bool    `json:"flipH,omitempty"`
	FlipV  bool    `json:"flipV,omitempty"`

	VerticalType  string    `json:"verticalType,omitempty"`
	TextAlign     string    `json:"textAlign,omitempty"`
	LineHeight    float64   `json:"lineHeight,omitempty"`
	LetterSpacing float64   `json:"letterSpacing,omitempty"`
	Pad           []float64 `json:"pad,omitempty"`
	Shape         *Shape    `json:"shape,omitempty"`
	Contents      []TextRun `json:"contents,omitempty"`

	Src string `json:"src,omitempty"`
}

// Decode parses a template document and validates it.
func Decode(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Template) UnmarshalJSON(data []byte) error {
	if firstByte(data) != '{' {
		return fmt.Errorf("%w: template must be a JSON object", ErrInvalidShape)
	}
	var w templateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	out := Template{
		ID:         int(w.ID),
		Name:       w.Name,
		PageType:   w.PageType,
		Background: decodeBackground(w.Background),
		Slots:      w.Slots,
	}

	if len(w.Elements) > 0 && !isNull(w.Elements) {
		if firstByte(w.Elements) != '[' {
			return fmt.Errorf("%w: elements must be an array", ErrInvalidShape)
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(w.Elements, &raws); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidShape, err)
		}
		out.Elements = make([]Element, 0, len(raws))
		for i, raw := range raws {
			e, err := decodeElement(raw)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			out.Elements = append(out.Elements, e)
		}
	}
	*t = out
	return nil
}

func (t Template) MarshalJSON() ([]byte, error) {
	w := templateWire{
		ID:       flexInt(t.ID),
		Name:     t.Name,
		PageType: t.PageType,
		Slots:    t.Slots,
	}
	bg, err := encodeBackground(t.Background)
	if err != nil {
		return nil, err
	}
	w.Background = bg

	elems := make([]json.RawMessage, 0, len(t.Elements))
	for _, e := range t.Elements {
		raw, err := encodeElement(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, raw)
	}
	if w.Elements, err = json.Marshal(elems); err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// decodeBackground accepts {"type":1|2,"data":<descriptor>} or a bare
// descriptor. The wrapper tag must agree with the descriptor it carries.
func decodeBackground(raw json.RawMessage) paint.Style {
	var none paint.Style
	if len(raw) == 0 || firstByte(raw) != '{' {
		return none
	}
	var w backgroundWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return none
	}
	if len(w.Data) == 0 {
		var s paint.Style
		_ = json.Unmarshal(raw, &s)
		return s
	}
	var s paint.Style
	_ = json.Unmarshal(w.Data, &s)
	switch {
	case w.Type == 1 && s.Kind == paint.StyleSolid:
		return s
	case w.Type == 2 && s.Kind == paint.StyleGradient:
		return s
	}
	return none
}

func encodeBackground(s paint.Style) (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	t := 0
	switch s.Kind {
	case paint.StyleSolid:
		t = 1
	case paint.StyleGradient:
		t = 2
	}
	return json.Marshal(backgroundWire{Type: t, Data: data})
}

func decodeElement(raw json.RawMessage) (Element, error) {
	if firstByte(raw) != '{' {
		return nil, fmt.Errorf("%w: element must be a JSON object", ErrInvalidShape)
	}
	var w elementWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	frame := Frame{
		ID:     int(w.ID),
		UUID:   w.UUID,
		Left:   w.Left,
		Top:    w.Top,
		Width:  w.Width,
		Height: w.Height,
		Rotate: w.Rotate,
		FlipH:  w.FlipH,
		FlipV:  w.FlipV,
	}

	switch ElementType(w.Type) {
	case TypeText:
		e := &TextElement{
			Frame:         frame,
			VerticalType:  w.VerticalType,
			TextAlign:     w.TextAlign,
			LineHeight:    w.LineHeight,
			LetterSpacing: w.LetterSpacing,
			Shape:         w.Shape,
			Contents:      w.Contents,
		}
		copy(e.Pad[:], w.Pad)
		return e, nil
	case TypeImage:
		return &ImageElement{Frame: frame, Src: w.Src}, nil
	}
	return &UnknownElement{Frame: frame, Tag: w.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
}

func encodeElement(e Element) (json.RawMessage, error) {
	switch e := e.(type) {
	case *TextElement:
		w := frameWire(e.Frame, TypeText)
		w.VerticalType = e.VerticalType
		w.TextAlign = e.TextAlign
		w.LineHeight = e.LineHeight
		w.LetterSpacing = e.LetterSpacing
		if e.Pad != [2]float64{} {
			w.Pad = e.Pad[:]
		}
		w.Shape = e.Shape
		w.Contents = e.Contents
		return json.Marshal(w)
	case *ImageElement:
		w := frameWire(e.Frame, TypeImage)
		w.Src = e.Src
		return json.Marshal(w)
	case *UnknownElement:
		if len(e.Raw) > 0 {
			return e.Raw, nil
		}
		return json.Marshal(frameWire(e.Frame, ElementType(e.Tag)))
	}
	return nil, fmt.Errorf("%w: unsupported element %T", ErrInvalidShape, e)
}

func frameWire(f Frame, typ ElementType) elementWire {
	return elementWire{
		Type:   string(typ),
		ID:     flexInt(f.ID),
		UUID:   f.UUID,
		Left:   f.Left,
		Top:    f.Top,
		Width:  f.Width,
		Height: f.Height,
		Rotate: f.Rotate,
		FlipH:  f.FlipH,
		FlipV:  f.FlipV,
	}
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
