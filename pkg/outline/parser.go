// Package outline parses the outline markdown dialect emitted by the
// upstream generator and normalises generator output into a deck.Deck.
//
// The dialect:
//
//	### PPT大纲：<deck title>
//	#### 幻灯片1: <slide title>
//	- 标题：...          (metadata, ignored)
//	- 内容要点：
//	  - <point>
//	  - 说明文字：...    (caption, ignored)
//	- <point>
//
// Parsing never fails. Lines that match no rule are ignored.
package outline

import "strings"

// Markers of the dialect.
const (
	titlePrefix   = "### PPT大纲："
	slidePrefix   = "#### 幻灯片"
	slideTitleSep = ": "
	nestedPrefix  = "  - "
	itemPrefix    = "- "
	pointsMarker  = "- 内容要点："
	captionMarker = "说明文字："

	// DefaultTitle is used when the input has no deck title line.
	DefaultTitle = "默认标题"
	// UntitledSlide is used when a slide heading carries no title.
	UntitledSlide = "未命名幻灯片"
)

// metadataMarkers introduce top-level lines that describe a slide rather
// than contribute to its content.
var metadataMarkers = []string{"标题：", "副标题：", "图片：", "内容要点：", captionMarker}

// Slide is one parsed slide.
type Slide struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Result is the parsed outline. Content holds, per slide, the slide title
// followed by its points, one per line and indented by two spaces.
type Result struct {
	Title   string   `json:"title"`
	Outline []string `json:"outline"`
	Content []string `json:"content"`
	Slides  []Slide  `json:"-"`
}

// Parse parses markdown in the outline dialect.
func Parse(markdown string) Result {
	res := Result{Title: DefaultTitle, Outline: []string{}, Content: []string{}}

	lines := strings.Split(strings.TrimSpace(markdown), "\n")
	for _, line := range lines {
		if t := strings.TrimSpace(line); strings.HasPrefix(t, titlePrefix) {
			res.Title = strings.TrimSpace(strings.TrimPrefix(t, titlePrefix))
			break
		}
	}

	var cur *Slide
	flush := func() {
		if cur != nil {
			res.Slides = append(res.Slides, *cur)
		}
	}

	for _, line := range lines {
		raw := strings.TrimRight(line, " \t\r")
		t := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(t, slidePrefix):
			flush()
			cur = &Slide{Title: slideTitle(t), Points: []string{}}
		case cur == nil:
			// Content before the first slide heading has nowhere to go.
		case t == pointsMarker:
		case strings.HasPrefix(raw, nestedPrefix):
			p := strings.TrimSpace(strings.TrimPrefix(raw, nestedPrefix))
			if p != "" && !strings.HasPrefix(p, captionMarker) {
				cur.Points = append(cur.Points, p)
			}
		case strings.HasPrefix(t, itemPrefix):
			p := strings.TrimSpace(strings.TrimPrefix(t, itemPrefix))
			if p != "" && !isMetadata(p) {
				cur.Points = append(cur.Points, p)
			}
		}
	}
	flush()

	for _, s := range res.Slides {
		res.Outline = append(res.Outline, s.Title)
		res.Content = append(res.Content, slideContent(s))
	}
	return res
}

// slideTitle returns the text after the first ": " of a slide heading.
func slideTitle(heading string) string {
	_, after, ok := strings.Cut(heading, slideTitleSep)
	if !ok {
		return UntitledSlide
	}
	if title := strings.TrimSpace(after); title != "" {
		return title
	}
	return UntitledSlide
}

func isMetadata(p string) bool {
	for _, m := range metadataMarkers {
		if strings.HasPrefix(p, m) {
			return true
		}
	}
	return false
}

func slideContent(s Slide) string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	for i, p := range s.Points {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(p)
	}
	return b.String()
}
