// Package deckxml exports scenes in the ajstarks deck formats: deck XML
// markup (rendered by pdfdeck, pngdeck, svgdeck) and decksh scripts.
//
// Deck coordinates are percentages of the canvas with y growing upwards;
// rectangles and images are positioned by their centre, text by its baseline.
package deckxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/ajstarks/deck"
	"github.com/ajstarks/decksh"

	"github.com/joeblew999/deckbind/pkg/paint"
	"github.com/joeblew999/deckbind/pkg/scene"
)

const (
	defaultFontSize   = 16
	defaultLineHeight = 1.4
	foreground        = "black"
)

// Deck converts scenes into one deck with a slide per scene. The canvas
// takes the size of the first scene.
func Deck(title string, scenes []*scene.Scene) *deck.Deck {
	d := &deck.Deck{Title: title}
	for i, s := range scenes {
		if s == nil {
			continue
		}
		if i == 0 || d.Canvas.Width == 0 {
			d.Canvas.Width = int(math.Round(s.Width))
			d.Canvas.Height = int(math.Round(s.Height))
		}
		d.Slide = append(d.Slide, slide(s))
	}
	return d
}

// XML renders scenes as deck XML markup
func XML(title string, scenes []*scene.Scene) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.EncodeElement(Deck(title, scenes), xml.StartElement{Name: xml.Name{Local: "deck"}}); err != nil {
		return nil, fmt.Errorf("encode deck: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Parse decodes deck XML markup
func Parse(data []byte) (*deck.Deck, error) {
	var d deck.Deck
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	return &d, nil
}

// Compile runs a decksh script through decksh and parses the resulting markup
func Compile(script []byte) (*deck.Deck, error) {
	var out bytes.Buffer
	if err := decksh.Process(&out, bytes.NewReader(script)); err != nil {
		return nil, fmt.Errorf("decksh processing failed: %w", err)
	}
	return Parse(out.Bytes())
}

func slide(s *scene.Scene) deck.Slide {
	sl := deck.Slide{Fg: foreground}
	c := converter{w: s.Width, h: s.Height}

	switch s.Background.Kind {
	case paint.KindSolid:
		sl.Bg, _ = color(s.Background)
	case paint.KindLinear, paint.KindRadial:
		first, last := gradientEnds(s.Background)
		sl.Bg = first
		sl.Gradcolor1, sl.Gradcolor2 = first, last
	}

	for i := range s.Nodes {
		n := &s.Nodes[i]
		switch n.Kind {
		case scene.KindImage:
			c.image(&sl, n)
		default:
			c.box(&sl, n)
		}
	}
	return sl
}

type converter struct {
	w, h float64
}

func (c converter) xp(x float64) float64 { return round(x / c.w * 100) }
func (c converter) yp(y float64) float64 { return round(100 - y/c.h*100) }
func (c converter) wp(w float64) float64 { return round(w / c.w * 100) }
func (c converter) hp(h float64) float64 { return round(h / c.h * 100) }

// rect places a filled rectangle by its centre
func (c converter) rect(r scene.Rect, fill string, opacity float64) deck.Rect {
	cx, cy := r.Center()
	return deck.Rect{Dimension: deck.Dimension{
		CommonAttr: deck.CommonAttr{Xp: c.xp(cx), Yp: c.yp(cy), Color: fill, Opacity: opacity},
		Wp:         c.wp(r.W),
		Hp:         c.hp(r.H),
	}}
}

func (c converter) image(sl *deck.Slide, n *scene.Node) {
	cx, cy := n.Rect.Center()
	if n.Image == nil || n.Image.URI == "" {
		sl.Rect = append(sl.Rect, c.rect(n.Rect, "rgb(230,230,230)", 0))
		return
	}
	sl.Image = append(sl.Image, deck.Image{
		CommonAttr: deck.CommonAttr{Xp: c.xp(cx), Yp: c.yp(cy)},
		Width:      int(math.Round(n.Rect.W)),
		Height:     int(math.Round(n.Rect.H)),
		Name:       n.Image.URI,
	})
}

func (c converter) box(sl *deck.Slide, n *scene.Node) {
	if fill, opacity := fillColor(n.Fill); fill != "" {
		sl.Rect = append(sl.Rect, c.rect(n.Rect, fill, opacity))
	}
	if n.Text == nil {
		return
	}
	rotation := math.Mod(n.Transform.Rotate, 360)
	if rotation < 0 {
		rotation += 360
	}
	for _, l := range n.Text.Layout(n.Rect, defaultFontSize, defaultLineHeight) {
		col, opacity := color(l.Run.Color)
		if l.Text == "" || col == "" {
			continue
		}
		sl.Text = append(sl.Text, deck.Text{
			CommonAttr: deck.CommonAttr{
				Xp:       c.xp(l.X),
				Yp:       c.yp(l.Baseline),
				Sp:       c.wp(l.Size),
				Rotation: round(rotation),
				Opacity:  opacity,
				Font:     fontAlias(l.Run.FontFamily),
				Align:    align(l.Anchor),
				Color:    col,
			},
			Tdata: l.Text,
		})
	}
}

// color converts a solid paint into a deck colour and opacity. Deck opacity
// is a percentage where 0 means opaque. Invisible paints yield "".
func color(p paint.Paint) (string, float64) {
	if p.Kind != paint.KindSolid {
		return "", 0
	}
	if p.RGBA == nil {
		if p.CSS == "" || p.CSS == paint.TransparentCSS {
			return "", 0
		}
		return p.CSS, 0
	}
	if p.RGBA.A <= 0 {
		return "", 0
	}
	return rgb(*p.RGBA), opacity(p.RGBA.A)
}

// fillColor flattens gradients to their first stop
func fillColor(p paint.Paint) (string, float64) {
	switch p.Kind {
	case paint.KindLinear, paint.KindRadial:
		first, _ := gradientEnds(p)
		return first, 0
	}
	return color(p)
}

func gradientEnds(p paint.Paint) (string, string) {
	if len(p.Stops) == 0 {
		return "white", "white"
	}
	return stopColor(p.Stops[0]), stopColor(p.Stops[len(p.Stops)-1])
}

func stopColor(st paint.Stop) string {
	if st.RGBA != nil {
		return rgb(*st.RGBA)
	}
	if st.CSS == "" || st.CSS == paint.TransparentCSS {
		return "white"
	}
	return st.CSS
}

func rgb(c paint.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func opacity(a float64) float64 {
	if a >= 1 {
		return 0
	}
	return round(a * 100)
}

func fontAlias(family string) string {
	switch family {
	case "serif", "mono":
		return family
	}
	return "sans"
}

func align(a scene.Align) string {
	switch a {
	case scene.AlignCenter:
		return "center"
	case scene.AlignEnd:
		return "end"
	}
	return "start"
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
