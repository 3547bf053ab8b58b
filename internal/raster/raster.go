// Package raster renders scene thumbnails as PNG with gogpu/gg.
// Text is not rasterised: text boxes contribute their fill and border only.
package raster

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/joeblew999/deckbind/pkg/paint"
	"github.com/joeblew999/deckbind/pkg/scene"
)

// DefaultWidth is the thumbnail width in pixels
const DefaultWidth = 480

var (
	white       = gg.RGBA{R: 1, G: 1, B: 1, A: 1}
	placeholder = gg.RGBA{R: 0.9, G: 0.9, B: 0.9, A: 1}
)

// Renderer draws scenes into fixed-width PNG thumbnails
type Renderer struct {
	width int
}

// New returns a renderer producing images width pixels wide
func New(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{width: width}
}

// RenderBytes renders s into a PNG image
func (r *Renderer) RenderBytes(s *scene.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes s as a PNG image to w
func (r *Renderer) Render(w io.Writer, s *scene.Scene) error {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene has no canvas")
	}
	scale := float64(r.width) / s.Width
	height := int(math.Round(s.Height * scale))
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(r.width, height)
	defer dc.Close()
	dc.ClearWithColor(white)

	d := &drawer{dc: dc, scale: scale}
	dc.Scale(scale, scale)

	if err := d.fillRect(s.Background, scene.Rect{W: s.Width, H: s.Height}); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	for i := range s.Nodes {
		if err := d.node(&s.Nodes[i]); err != nil {
			return fmt.Errorf("node %d: %w", s.Nodes[i].ID, err)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type drawer struct {
	dc    *gg.Context
	scale float64
}

func (d *drawer) node(n *scene.Node) error {
	d.dc.Push()
	defer d.dc.Pop()

	t := n.Transform
	if t.Rotate != 0 {
		d.dc.RotateAbout(t.Rotate*math.Pi/180, t.OriginX, t.OriginY)
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		d.dc.Translate(t.OriginX, t.OriginY)
		d.dc.Scale(t.ScaleX, t.ScaleY)
		d.dc.Translate(-t.OriginX, -t.OriginY)
	}

	if n.Kind == scene.KindImage {
		d.dc.SetFillBrush(gg.Solid(placeholder))
		d.dc.DrawRectangle(n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H)
		return d.dc.Fill()
	}

	if err := d.fillRect(n.Fill, n.Rect); err != nil {
		return err
	}
	if b := n.Border; b != nil && b.Paint.RGBA != nil && b.Paint.Visible() {
		d.dc.SetStrokeBrush(gg.Solid(toRGBA(*b.Paint.RGBA)))
		d.dc.SetLineWidth(b.Width)
		d.dc.DrawRectangle(n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H)
		return d.dc.Stroke()
	}
	return nil
}

func (d *drawer) fillRect(p paint.Paint, r scene.Rect) error {
	brush, ok := d.brush(p, r)
	if !ok {
		return nil
	}
	d.dc.SetFillBrush(brush)
	d.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	return d.dc.Fill()
}

// brush converts a resolved paint. Gradient geometry is computed in device
// pixels. Solid paints whose colour could not be parsed are skipped.
func (d *drawer) brush(p paint.Paint, r scene.Rect) (gg.Brush, bool) {
	switch p.Kind {
	case paint.KindSolid:
		if p.RGBA == nil || p.RGBA.A == 0 {
			return nil, false
		}
		return gg.Solid(toRGBA(*p.RGBA)), true

	case paint.KindLinear:
		x0, y0, x1, y1 := linearLine(p.Angle, r)
		g := gg.NewLinearGradientBrush(x0*d.scale, y0*d.scale, x1*d.scale, y1*d.scale)
		for _, st := range stops(p.Stops) {
			g.AddColorStop(st.Offset, stopColor(st))
		}
		return g, true

	case paint.KindRadial:
		cx, cy := r.Center()
		radius := math.Hypot(r.W, r.H) / 2
		g := gg.NewRadialGradientBrush(cx*d.scale, cy*d.scale, 0, radius*d.scale)
		for _, st := range stops(p.Stops) {
			g.AddColorStop(st.Offset, stopColor(st))
		}
		return g, true
	}
	return nil, false
}

// linearLine returns the CSS gradient line of angle inside r
func linearLine(angle float64, r scene.Rect) (x0, y0, x1, y1 float64) {
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	half := (math.Abs(r.W*sin) + math.Abs(r.H*cos)) / 2
	cx, cy := r.Center()
	dx, dy := sin*half, -cos*half
	return cx - dx, cy - dy, cx + dx, cy + dy
}

func stops(s []paint.Stop) []paint.Stop {
	if len(s) == 0 {
		return []paint.Stop{{Offset: 0}, {Offset: 1}}
	}
	return s
}

func stopColor(st paint.Stop) gg.RGBA {
	if st.RGBA == nil {
		if c, ok := paint.ParseToken(st.CSS); ok {
			return toRGBA(c)
		}
		return gg.RGBA{}
	}
	return toRGBA(*st.RGBA)
}

func toRGBA(c paint.RGBA) gg.RGBA {
	return gg.RGBA{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: c.A,
	}
}
