package paint

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseToken parses a CSS colour token for surfaces that need numeric
// colours. It understands "transparent", SVG/CSS colour names, #rgb, #rgba,
// #rrggbb, #rrggbbaa and rgb()/rgba() functional notation.
func ParseToken(tok string) (RGBA, bool) {
	s := strings.ToLower(strings.TrimSpace(tok))
	switch {
	case s == "":
		return RGBA{}, false
	case s == TransparentCSS:
		return RGBA{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return RGBA{R: c.R, G: c.G, B: c.B, A: float64(c.A) / 255}, true
	}
	return RGBA{}, false
}

func parseHex(h string) (RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return RGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	if len(h) == 6 {
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
	}
	return RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: float64(uint8(v)) / 255}, true
}

func parseFunc(s string) (RGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return RGBA{}, false
	}
	fields := strings.Split(s[open+1:end], ",")
	if len(fields) != 3 && len(fields) != 4 {
		return RGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f := strings.TrimSpace(fields[i])
		if strings.HasSuffix(f, "%") {
			v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
			if err != nil {
				return RGBA{}, false
			}
			ch[i] = channel(v / 100)
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return RGBA{}, false
		}
		ch[i] = channel(v / 255)
	}
	a := 1.0
	if len(fields) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			return RGBA{}, false
		}
		a = clamp01(v)
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}
