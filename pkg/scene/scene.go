// Package scene turns filled templates into a render-surface-agnostic
// description: positioned, transformed and fully resolved nodes in z-order.
package scene

import (
	"github.com/joeblew999/deckbind/pkg/paint"
	"github.com/joeblew999/deckbind/pkg/template"
)

// NodeKind is the kind of a scene node.
type NodeKind string

const (
	KindBox   NodeKind = "box"
	KindImage NodeKind = "image"
)

// Align is a flex-style alignment.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Scene is one slide ready for presentation. Later nodes draw above earlier ones.
type Scene struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	TemplateID int         `json:"templateId"`
	Background paint.Paint `json:"background"`
	Nodes      []Node      `json:"nodes"`
}

// Rect is an absolute pixel rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the rectangle's centre point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Transform rotates (degrees) and scales about an origin.
type Transform struct {
	Rotate  float64 `json:"rotate"`
	ScaleX  float64 `json:"scaleX"`
	ScaleY  float64 `json:"scaleY"`
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
}

// IsIdentity reports whether t leaves geometry unchanged.
func (t Transform) IsIdentity() bool {
	return t.Rotate == 0 && t.ScaleX == 1 && t.ScaleY == 1
}

// Border is a box outline.
type Border struct {
	Paint paint.Paint `json:"paint"`
	Width float64     `json:"width"`
}

// Node is a box, optionally carrying text, or an image.
type Node struct {
	Kind      NodeKind    `json:"kind"`
	ID        int         `json:"id"`
	Rect      Rect        `json:"rect"`
	Transform Transform   `json:"transform"`
	Fill      paint.Paint `json:"fill"`
	Border    *Border     `json:"border,omitempty"`
	Text      *Text       `json:"text,omitempty"`
	Image     *Image      `json:"image,omitempty"`
}

// Text is the laid-out-by-template text of a box.
type Text struct {
	VAlign        Align   `json:"valign"`
	HAlign        Align   `json:"halign"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	PadX          float64 `json:"padX,omitempty"`
	PadY          float64 `json:"padY,omitempty"`
	Runs          []Run   `json:"runs"`
}

// Run is one styled paragraph.
type Run struct {
	Content     string      `json:"content"`
	FontFamily  string      `json:"fontFamily,omitempty"`
	FontSize    float64     `json:"fontSize,omitempty"`
	FontWeight  string      `json:"fontWeight,omitempty"`
	Color       paint.Paint `json:"color"`
	Placeholder bool        `json:"placeholder,omitempty"`
}

// Image references an asset by URI. Fetching it is the surface's concern.
type Image struct {
	URI string `json:"uri"`
}

// Build converts a filled template into a scene. Elements keep their
// declared order; unknown element types are skipped.
func Build(f *template.Filled) *Scene {
	s := &Scene{
		Width:      template.CanvasWidth,
		Height:     template.CanvasHeight,
		Background: paint.Transparent(),
		Nodes:      []Node{},
	}
	if f == nil {
		return s
	}
	s.TemplateID = f.ID
	s.Background = paint.Resolve(&f.Background)

	for _, e := range f.Elements {
		switch e := e.(type) {
		case *template.TextElement:
			s.Nodes = append(s.Nodes, textNode(e))
		case *template.ImageElement:
			n := frameNode(KindImage, &e.Frame)
			n.Image = &Image{URI: e.Src}
			s.Nodes = append(s.Nodes, n)
		}
	}
	return s
}

func frameNode(kind NodeKind, f *template.Frame) Node {
	r := Rect{X: f.Left, Y: f.Top, W: f.Width, H: f.Height}
	cx, cy := r.Center()
	t := Transform{Rotate: f.Rotate, ScaleX: 1, ScaleY: 1, OriginX: cx, OriginY: cy}
	if f.FlipH {
		t.ScaleX = -1
	}
	if f.FlipV {
		t.ScaleY = -1
	}
	return Node{Kind: kind, ID: f.ID, Rect: r, Transform: t, Fill: paint.Transparent()}
}

func textNode(e *template.TextElement) Node {
	n := frameNode(KindBox, &e.Frame)
	if e.Shape != nil {
		n.Fill = paint.Resolve(&e.Shape.Fill)
		if l := e.Shape.Line; l != nil {
			w := l.StrokeWidth
			if w <= 0 {
				w = 1
			}
			n.Border = &Border{Paint: paint.ResolveColor(&l.Stroke), Width: w}
		}
	}

	txt := &Text{
		VAlign:        verticalAlign(e.VerticalType),
		HAlign:        horizontalAlign(e.TextAlign),
		LineHeight:    e.LineHeight,
		LetterSpacing: e.LetterSpacing,
		PadX:          e.Pad[0],
		PadY:          e.Pad[1],
	}
	for _, r := range e.Contents {
		txt.Runs = append(txt.Runs, Run{
			Content:    r.Content,
			FontFamily: r.FontFamily,
			FontSize:   r.FontSize,
			FontWeight: string(r.FontWeight),
			Color:      paint.ResolveColor(&r.FontFill),
		})
	}
	if len(txt.Runs) == 0 {
		txt.Runs = []Run{{Color: paint.Transparent(), Placeholder: true}}
	}
	n.Text = txt
	return n
}

// verticalAlign maps top/center/bottom. Anything unrecognised aligns to the end.
func verticalAlign(v string) Align {
	switch v {
	case "top":
		return AlignStart
	case "center":
		return AlignCenter
	}
	return AlignEnd
}

// horizontalAlign maps left/center/right. Anything unrecognised aligns to the end.
func horizontalAlign(v string) Align {
	switch v {
	case "left":
		return AlignStart
	case "center":
		return AlignCenter
	}
	return AlignEnd
}
