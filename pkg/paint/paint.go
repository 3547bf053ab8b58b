package paint

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the kind of a resolved Paint.
type Kind string

const (
	KindNone   Kind = "none"
	KindSolid  Kind = "solid"
	KindLinear Kind = "linear"
	KindRadial Kind = "radial"
)

// TransparentCSS is the paint value of anything that cannot be resolved.
const TransparentCSS = "transparent"

// RGBA is an 8-bit-per-channel colour with a float alpha in [0,1].
type RGBA struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// Stop is a resolved gradient stop.
type Stop struct {
	Offset float64 `json:"offset"`
	CSS    string  `json:"css"`
	RGBA   *RGBA   `json:"rgba,omitempty"`
}

// Paint is a resolved fill. CSS is always set; RGBA is set for solid paints
// whose colour could be parsed.
type Paint struct {
	Kind  Kind    `json:"kind"`
	CSS   string  `json:"css"`
	RGBA  *RGBA   `json:"rgba,omitempty"`
	Angle float64 `json:"angle,omitempty"`
	Stops []Stop  `json:"stops,omitempty"`
}

// Transparent returns the paint used for none and unresolvable descriptors.
func Transparent() Paint {
	return Paint{Kind: KindNone, CSS: TransparentCSS}
}

// Visible reports whether p paints anything.
func (p Paint) Visible() bool {
	switch p.Kind {
	case KindSolid:
		return p.RGBA == nil || p.RGBA.A > 0
	case KindLinear, KindRadial:
		return true
	}
	return false
}

func (p Paint) String() string {
	return p.CSS
}

// ResolveColor resolves a solid descriptor. None, gradients, nil and
// malformed colours resolve to transparent.
func ResolveColor(s *Style) Paint {
	if s == nil || s.Kind != StyleSolid {
		return Transparent()
	}
	return solid(s.Color)
}

// ResolveGradient resolves a gradient descriptor into a linear or radial
// paint, chosen by the gradient's own mode flag. Anything that is not a
// gradient resolves to transparent.
func ResolveGradient(s *Style) Paint {
	if s == nil || s.Kind != StyleGradient || s.Gradient == nil {
		return Transparent()
	}
	g := s.Gradient
	p := Paint{Kind: KindLinear, Angle: g.Angle}
	if g.Radial() {
		p = Paint{Kind: KindRadial}
	}

	var parts []string
	for _, gs := range g.Stops {
		c := solid(gs.Color)
		p.Stops = append(p.Stops, Stop{Offset: gs.Pos, CSS: c.CSS, RGBA: c.RGBA})
		parts = append(parts, c.CSS+" "+formatNumber(gs.Pos*100)+"%")
	}
	if len(parts) == 0 {
		parts = []string{TransparentCSS + " 0%", TransparentCSS + " 100%"}
	}
	list := strings.Join(parts, ", ")

	if p.Kind == KindRadial {
		p.CSS = "radial-gradient(" + list + ")"
	} else {
		p.CSS = "linear-gradient(" + formatNumber(g.Angle) + "deg, " + list + ")"
	}
	return p
}

// Resolve dispatches on the descriptor tag.
func Resolve(s *Style) Paint {
	if s == nil {
		return Transparent()
	}
	switch s.Kind {
	case StyleSolid:
		return ResolveColor(s)
	case StyleGradient:
		return ResolveGradient(s)
	}
	return Transparent()
}

// solid resolves a single colour value.
func solid(c Color) Paint {
	if len(c.RGBA) > 0 {
		rgba, ok := fromTuple(c.RGBA)
		if !ok {
			return Transparent()
		}
		return Paint{Kind: KindSolid, CSS: formatRGBA(rgba), RGBA: &rgba}
	}
	if c.Token != "" {
		p := Paint{Kind: KindSolid, CSS: c.Token}
		if rgba, ok := ParseToken(c.Token); ok {
			p.RGBA = &rgba
		}
		return p
	}
	return Transparent()
}

// fromTuple accepts (r,g,b) with implied opaque alpha or (r,g,b,a).
func fromTuple(t []float64) (RGBA, bool) {
	if len(t) != 3 && len(t) != 4 {
		return RGBA{}, false
	}
	a := 1.0
	if len(t) == 4 {
		a = t[3]
	}
	for _, v := range t {
		if math.IsNaN(v) {
			return RGBA{}, false
		}
	}
	return RGBA{R: channel(t[0]), G: channel(t[1]), B: channel(t[2]), A: clamp01(a)}, true
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func formatRGBA(c RGBA) string {
	var b strings.Builder
	b.WriteString("rgba(")
	b.WriteString(strconv.Itoa(int(c.R)))
	b.WriteString(", ")
	b.WriteString(strconv.Itoa(int(c.G)))
	b.WriteString(", ")
	b.WriteString(strconv.Itoa(int(c.B)))
	b.WriteString(", ")
	b.WriteString(strconv.FormatFloat(c.A, 'f', -1, 64))
	b.WriteString(")")
	return b.String()
}

// formatNumber prints v with at most four decimals and no trailing zeros.
func formatNumber(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
