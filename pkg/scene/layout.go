package scene

import "strings"

// Ascent is the baseline offset within a line box, as a fraction of the font size.
const Ascent = 0.8

// Line is one positioned line of text.
type Line struct {
	Text     string
	Run      *Run
	Size     float64
	X        float64 // anchor point, interpreted by Anchor
	Baseline float64
	Anchor   Align
}

// Layout splits runs into lines and positions them inside box. Lines are
// stacked at size*lineHeight and aligned by VAlign and HAlign, honouring the
// padding. Placeholder runs produce no lines. Sizes and line heights of zero
// take the given defaults.
func (t *Text) Layout(box Rect, defaultSize, defaultLineHeight float64) []Line {
	lh := t.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}

	var lines []Line
	var total float64
	for i := range t.Runs {
		run := &t.Runs[i]
		if run.Placeholder {
			continue
		}
		size := run.FontSize
		if size <= 0 {
			size = defaultSize
		}
		for _, s := range strings.Split(run.Content, "\n") {
			lines = append(lines, Line{Text: s, Run: run, Size: size})
			total += size * lh
		}
	}
	if len(lines) == 0 {
		return nil
	}

	y := box.Y + t.PadY
	switch t.VAlign {
	case AlignCenter:
		y = box.Y + (box.H-total)/2
	case AlignEnd:
		y = box.Y + box.H - t.PadY - total
	}

	x := box.X + t.PadX
	switch t.HAlign {
	case AlignCenter:
		x = box.X + box.W/2
	case AlignEnd:
		x = box.X + box.W - t.PadX
	}

	for i := range lines {
		advance := lines[i].Size * lh
		lines[i].X = x
		lines[i].Anchor = t.HAlign
		lines[i].Baseline = y + (advance-lines[i].Size)/2 + lines[i].Size*Ascent
		y += advance
	}
	return lines
}
