// Package paint holds style descriptors as authored in templates and
// resolves them into paint values for a presentation surface.
package paint

import (
	"bytes"
	"encoding/json"
)

// StyleKind is the tag of a Style.
type StyleKind int

const (
	StyleNone StyleKind = iota
	StyleSolid
	StyleGradient
)

// Wire tags used by template documents.
const (
	wireNone     = 0
	wireSolid    = 1
	wireGradient = 2
)

// Color is either an rgba tuple with channels in [0,1] or a raw CSS colour token.
// The zero Color is invalid and resolves to transparent.
type Color struct {
	RGBA  []float64
	Token string
}

// IsZero reports whether c carries neither a tuple nor a token.
func (c Color) IsZero() bool {
	return len(c.RGBA) == 0 && c.Token == ""
}

// Clone returns a copy of c that shares no memory with it.
func (c Color) Clone() Color {
	if c.RGBA != nil {
		c.RGBA = append([]float64(nil), c.RGBA...)
	}
	return c
}

func (c Color) MarshalJSON() ([]byte, error) {
	if c.Token != "" {
		return json.Marshal(c.Token)
	}
	if len(c.RGBA) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		RGBA []float64 `json:"rgba"`
	}{c.RGBA})
}

// UnmarshalJSON accepts a string token or an {"rgba": [...]} object. Anything
// else leaves c zero.
func (c *Color) UnmarshalJSON(data []byte) error {
	*c = Color{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var tok string
		if json.Unmarshal(data, &tok) == nil {
			c.Token = tok
		}
	case '{':
		var obj struct {
			RGBA []float64 `json:"rgba"`
		}
		if json.Unmarshal(data, &obj) == nil {
			c.RGBA = obj.RGBA
		}
	}
	return nil
}

// GradientStop is one colour stop. Pos is in [0,1].
type GradientStop struct {
	Pos   float64 `json:"pos"`
	Color Color   `json:"color"`
}

// Gradient is a multi-stop gradient. Stops keep their authored order.
type Gradient struct {
	Mode  string
	Angle float64
	Stops []GradientStop
}

// Radial reports whether the gradient's own mode flag selects a radial gradient.
func (g *Gradient) Radial() bool {
	return g != nil && (g.Mode == "br" || g.Mode == "radial")
}

// Clone returns a deep copy of g.
func (g *Gradient) Clone() *Gradient {
	if g == nil {
		return nil
	}
	out := &Gradient{Mode: g.Mode, Angle: g.Angle}
	if g.Stops != nil {
		out.Stops = make([]GradientStop, len(g.Stops))
		for i, s := range g.Stops {
			out.Stops[i] = GradientStop{Pos: s.Pos, Color: s.Color.Clone()}
		}
	}
	return out
}

// Style is a tagged paint descriptor: none, solid or gradient.
type Style struct {
	Kind     StyleKind
	Color    Color
	Gradient *Gradient
}

// SolidRGBA returns a solid style from an rgba tuple.
func SolidRGBA(r, g, b, a float64) Style {
	return Style{Kind: StyleSolid, Color: Color{RGBA: []float64{r, g, b, a}}}
}

// SolidToken returns a solid style from a raw colour token.
func SolidToken(tok string) Style {
	return Style{Kind: StyleSolid, Color: Color{Token: tok}}
}

// Clone returns a deep copy of s.
func (s Style) Clone() Style {
	return Style{Kind: s.Kind, Color: s.Color.Clone(), Gradient: s.Gradient.Clone()}
}

type styleWire struct {
	Type   *int            `json:"type,omitempty"`
	Color  *Color          `json:"color,omitempty"`
	Mode   string          `json:"mode,omitempty"`
	Angle  *float64        `json:"angle,omitempty"`
	GsList json.RawMessage `json:"gsList,omitempty"`
}

func (s Style) MarshalJSON() ([]byte, error) {
	var w styleWire
	t := wireNone
	switch s.Kind {
	case StyleSolid:
		t = wireSolid
		c := s.Color
		w.Color = &c
	case StyleGradient:
		t = wireGradient
		if s.Gradient != nil {
			w.Mode = s.Gradient.Mode
			angle := s.Gradient.Angle
			w.Angle = &angle
			stops := s.Gradient.Stops
			if stops == nil {
				stops = []GradientStop{}
			}
			raw, err := json.Marshal(stops)
			if err != nil {
				return nil, err
			}
			w.GsList = raw
		}
	}
	w.Type = &t
	return json.Marshal(w)
}

// UnmarshalJSON never fails on well-formed JSON: garbled or unknown
// descriptors decode to StyleNone.
func (s *Style) UnmarshalJSON(data []byte) error {
	*s = Style{}
	var w styleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil
	}
	t := -1
	if w.Type != nil {
		t = *w.Type
	}
	switch t {
	case wireNone:
		return nil
	case wireGradient:
		var stops []GradientStop
		if len(w.GsList) > 0 && !bytes.Equal(bytes.TrimSpace(w.GsList), []byte("null")) {
			if err := json.Unmarshal(w.GsList, &stops); err != nil {
				return nil
			}
		}
		g := &Gradient{Mode: w.Mode, Stops: stops}
		if w.Angle != nil {
			g.Angle = *w.Angle
		}
		s.Kind = StyleGradient
		s.Gradient = g
		return nil
	}
	// Solid, or an untagged descriptor that still carries a colour.
	if w.Color != nil && !w.Color.IsZero() {
		s.Kind = StyleSolid
		s.Color = *w.Color
	}
	return nil
}
