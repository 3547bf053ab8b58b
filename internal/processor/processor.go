// Package processor renders scenes as SVG documents.
// The drawing helpers follow github.com/ajstarks/deck/cmd/svgdeck.
package processor

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/joeblew999/deckbind/pkg/paint"
	"github.com/joeblew999/deckbind/pkg/scene"
)

const (
	strokefmt = "stroke-width:%.2fpx;stroke:%s;stroke-opacity:%.2f"
	fillfmt   = "fill:%s;fill-opacity:%.2f"
)

// Config holds rendering configuration
type Config struct {
	// Font settings (CSS font-family values)
	SansFont  string
	SerifFont string
	MonoFont  string
	// FontSize applies to runs without a size
	FontSize float64
	// LineHeight applies to text without its own line height
	LineHeight float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		SansFont:   "Helvetica, Arial, sans-serif",
		SerifFont:  "Georgia, Times, serif",
		MonoFont:   "Monaco, Consolas, monospace",
		FontSize:   16,
		LineHeight: 1.4,
	}
}

// Renderer draws scenes with svgo
type Renderer struct {
	cfg Config
}

// New returns a renderer; zero Config fields take their defaults
func New(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.SansFont == "" {
		cfg.SansFont = def.SansFont
	}
	if cfg.SerifFont == "" {
		cfg.SerifFont = def.SerifFont
	}
	if cfg.MonoFont == "" {
		cfg.MonoFont = def.MonoFont
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = def.LineHeight
	}
	return &Renderer{cfg: cfg}
}

// RenderBytes renders s into a standalone SVG document
func (r *Renderer) RenderBytes(s *scene.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes s as an SVG document to w
func (r *Renderer) Render(w io.Writer, s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("nil scene")
	}
	ew := &errWriter{w: w}
	doc := svg.New(ew)
	doc.Start(s.Width, s.Height, fmt.Sprintf(`viewBox="0 0 %s %s"`, num(s.Width), num(s.Height)))

	grads := gradientDefs(doc, s)

	if s.Background.Visible() {
		doc.Rect(0, 0, s.Width, s.Height, fillStyle(s.Background, grads["bg"]))
	}
	for i := range s.Nodes {
		r.node(doc, &s.Nodes[i], grads[nodeKey(i)])
	}

	doc.End()
	return ew.err
}

func nodeKey(i int) string { return fmt.Sprintf("n%d", i) }

// gradientDefs declares one gradient per gradient paint and returns their
// ids keyed by owner ("bg" or the node key).
func gradientDefs(doc *svg.SVG, s *scene.Scene) map[string]string {
	type def struct {
		key string
		p   paint.Paint
	}
	var defs []def
	if isGradient(s.Background) {
		defs = append(defs, def{"bg", s.Background})
	}
	for i, n := range s.Nodes {
		if isGradient(n.Fill) {
			defs = append(defs, def{nodeKey(i), n.Fill})
		}
	}
	ids := make(map[string]string, len(defs))
	if len(defs) == 0 {
		return ids
	}

	doc.Def()
	for _, d := range defs {
		id := "grad-" + d.key
		oc := offcolors(d.p.Stops)
		if d.p.Kind == paint.KindRadial {
			doc.RadialGradient(id, 50, 50, 50, 50, 50, oc)
		} else {
			x1, y1, x2, y2 := gradientVector(d.p.Angle)
			doc.LinearGradient(id, x1, y1, x2, y2, oc)
		}
		ids[d.key] = id
	}
	doc.DefEnd()
	return ids
}

func isGradient(p paint.Paint) bool {
	return p.Kind == paint.KindLinear || p.Kind == paint.KindRadial
}

func offcolors(stops []paint.Stop) []svg.Offcolor {
	if len(stops) == 0 {
		return []svg.Offcolor{
			{Offset: 0, Color: "black", Opacity: 0},
			{Offset: 100, Color: "black", Opacity: 0},
		}
	}
	oc := make([]svg.Offcolor, 0, len(stops))
	for _, st := range stops {
		color, opacity := svgcolor(st.CSS, st.RGBA)
		oc = append(oc, svg.Offcolor{
			Offset:  uint8(math.Round(clamp(st.Offset, 0, 1) * 100)),
			Color:   color,
			Opacity: opacity,
		})
	}
	return oc
}

// gradientVector converts a CSS gradient angle (0deg points up, clockwise)
// into SVG objectBoundingBox percentages.
func gradientVector(angle float64) (x1, y1, x2, y2 uint8) {
	rad := angle * math.Pi / 180
	dx, dy := 50*math.Sin(rad), -50*math.Cos(rad)
	p := func(v float64) uint8 { return uint8(math.Round(clamp(v, 0, 100))) }
	return p(50 - dx), p(50 - dy), p(50 + dx), p(50 + dy)
}

// svgcolor splits a resolved colour into an SVG colour and opacity
func svgcolor(css string, rgba *paint.RGBA) (string, float64) {
	if rgba != nil {
		return fmt.Sprintf("rgb(%d,%d,%d)", rgba.R, rgba.G, rgba.B), rgba.A
	}
	if css == "" || css == paint.TransparentCSS {
		return "black", 0
	}
	return css, 1
}

func fillStyle(p paint.Paint, gradID string) string {
	switch {
	case isGradient(p) && gradID != "":
		return "fill:url(#" + gradID + ")"
	case p.Kind == paint.KindSolid:
		color, opacity := svgcolor(p.CSS, p.RGBA)
		return fmt.Sprintf(fillfmt, color, opacity)
	}
	return "fill:none"
}

func strokeStyle(b *scene.Border) string {
	if b == nil || !b.Paint.Visible() {
		return ""
	}
	color, opacity := svgcolor(b.Paint.CSS, b.Paint.RGBA)
	return ";" + fmt.Sprintf(strokefmt, b.Width, color, opacity)
}

func (r *Renderer) node(doc *svg.SVG, n *scene.Node, gradID string) {
	grouped := !n.Transform.IsIdentity()
	if grouped {
		doc.Gtransform(transform(n.Transform))
	}

	rect := n.Rect
	switch n.Kind {
	case scene.KindImage:
		if n.Image == nil || n.Image.URI == "" {
			doc.Rect(rect.X, rect.Y, rect.W, rect.H, "fill:rgb(230,230,230)")
			break
		}
		doc.Image(rect.X, rect.Y, int(math.Round(rect.W)), int(math.Round(rect.H)), html.EscapeString(n.Image.URI), `preserveAspectRatio="xMidYMid slice"`)
	default:
		if n.Fill.Visible() || n.Border != nil {
			doc.Rect(rect.X, rect.Y, rect.W, rect.H, fillStyle(n.Fill, gradID)+strokeStyle(n.Border))
		}
		if n.Text != nil {
			r.text(doc, rect, n.Text)
		}
	}

	if grouped {
		doc.Gend()
	}
}

// transform rotates about the origin, then mirrors about it
func transform(t scene.Transform) string {
	var parts []string
	if t.Rotate != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%s %s %s)", num(t.Rotate), num(t.OriginX), num(t.OriginY)))
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		parts = append(parts,
			fmt.Sprintf("translate(%s %s)", num(t.OriginX), num(t.OriginY)),
			fmt.Sprintf("scale(%s %s)", num(t.ScaleX), num(t.ScaleY)),
			fmt.Sprintf("translate(%s %s)", num(-t.OriginX), num(-t.OriginY)),
		)
	}
	return strings.Join(parts, " ")
}

// text draws one SVG text element per laid-out line
func (r *Renderer) text(doc *svg.SVG, box scene.Rect, t *scene.Text) {
	for _, l := range t.Layout(box, r.cfg.FontSize, r.cfg.LineHeight) {
		if l.Text == "" {
			continue
		}
		doc.Text(l.X, l.Baseline, l.Text, `xml:space="preserve"`, r.textStyle(l, t.LetterSpacing))
	}
}

// textanchor returns the SVG text alignment operator
func textanchor(a scene.Align) string {
	switch a {
	case scene.AlignCenter:
		return "middle"
	case scene.AlignEnd:
		return "end"
	}
	return "start"
}

func (r *Renderer) textStyle(l scene.Line, spacing float64) string {
	color, opacity := svgcolor(l.Run.Color.CSS, l.Run.Color.RGBA)
	if l.Run.Color.Kind != paint.KindSolid {
		opacity = 0
	}
	style := fmt.Sprintf(fillfmt+";font-size:%.2fpx;font-family:%s;text-anchor:%s",
		color, opacity, l.Size, r.fontlookup(l.Run.FontFamily), textanchor(l.Anchor))
	if l.Run.FontWeight != "" {
		style += ";font-weight:" + sanitize(l.Run.FontWeight)
	}
	if spacing != 0 {
		style += fmt.Sprintf(";letter-spacing:%.2fpx", spacing)
	}
	return style
}

// fontlookup maps font aliases to implementation font names
func (r *Renderer) fontlookup(family string) string {
	switch family {
	case "", "sans":
		return r.cfg.SansFont
	case "serif":
		return r.cfg.SerifFont
	case "mono":
		return r.cfg.MonoFont
	}
	return "'" + sanitize(family) + "', " + r.cfg.SansFont
}

// sanitize drops characters that would break out of a style attribute
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ';', '<', '>', '&', '=':
			return -1
		}
		return r
	}, s)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func num(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*100)/100)
}

// errWriter keeps the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
