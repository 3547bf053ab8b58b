package deckxml

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ajstarks/deck"

	"github.com/joeblew999/deckbind/pkg/scene"
)

// Script renders scenes as a decksh program
func Script(title string, scenes []*scene.Scene) []byte {
	return ScriptFor(Deck(title, scenes))
}

// ScriptFor writes d as a decksh program. Text rotation and gradient
// backgrounds have no decksh equivalent here and are flattened.
func ScriptFor(d *deck.Deck) []byte {
	var b bytes.Buffer
	b.WriteString("deck\n")
	fmt.Fprintf(&b, "\tcanvas %d %d\n", d.Canvas.Width, d.Canvas.Height)

	for _, sl := range d.Slide {
		bg := sl.Bg
		if bg == "" {
			bg = "white"
		}
		fmt.Fprintf(&b, "\tslide %s %s\n", quote(bg), quote(sl.Fg))
		for _, im := range sl.Image {
			fmt.Fprintf(&b, "\t\timage %s %s %s %d %d\n", quote(im.Name), num(im.Xp), num(im.Yp), im.Width, im.Height)
		}
		for _, r := range sl.Rect {
			fmt.Fprintf(&b, "\t\trect %s %s %s %s %s %s\n", num(r.Xp), num(r.Yp), num(r.Wp), num(r.Hp), quote(r.Color), num(percent(r.Opacity)))
		}
		for _, t := range sl.Text {
			fmt.Fprintf(&b, "\t\t%s %s %s %s %s %s %s %s\n",
				textCommand(t.Align), quote(t.Tdata), num(t.Xp), num(t.Yp), num(t.Sp), quote(t.Font), quote(t.Color), num(percent(t.Opacity)))
		}
		b.WriteString("\teslide\n")
	}
	b.WriteString("edeck\n")
	return b.Bytes()
}

func textCommand(align string) string {
	switch align {
	case "center":
		return "ctext"
	case "end":
		return "etext"
	}
	return "text"
}

// percent maps deck opacity (0 means opaque) to an explicit percentage
func percent(op float64) float64 {
	if op <= 0 {
		return 100
	}
	return op
}

// quote makes s a decksh string literal; decksh has no escapes, so double
// quotes become single quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(oneLine(s), `"`, `'`) + `"`
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
