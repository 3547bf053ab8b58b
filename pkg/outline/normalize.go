package outline

import (
	"bytes"

	"github.com/joeblew999/deckbind/pkg/deck"
)

// Format names the shape of generator output.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ClosingTitle is the title of the thank-you page appended to markdown decks.
const ClosingTitle = "谢谢！"

// ToDeck builds a deck from a parsed outline: a cover, one content page per
// slide and a closing thank-you page. A slide's points become the bullets of
// a single section; its title is the page title only.
func ToDeck(r Result) *deck.Deck {
	d := &deck.Deck{
		Title:   r.Title,
		Outline: append([]string{}, r.Outline...),
		Pages:   []deck.Page{&deck.Cover{Title: r.Title}},
	}
	for _, s := range r.Slides {
		d.Pages = append(d.Pages, &deck.Content{
			Title:    s.Title,
			Layout:   deck.LayoutTitleAndContent,
			Sections: []deck.Section{{BulletPoints: append([]string{}, s.Points...)}},
		})
	}
	d.Pages = append(d.Pages, &deck.ThankYou{Title: ClosingTitle})
	return d
}

// Decode accepts generator output as deck JSON or outline markdown, with or
// without a surrounding code fence, and returns the deck it describes.
// Markdown never fails; JSON errors are returned.
func Decode(input []byte) (*deck.Deck, Format, error) {
	body := stripFence(bytes.TrimSpace(input))
	if len(body) > 0 && body[0] == '{' {
		d, err := deck.Decode(body)
		if err != nil {
			return nil, FormatJSON, err
		}
		return d, FormatJSON, nil
	}
	return ToDeck(Parse(string(body))), FormatMarkdown, nil
}

// stripFence removes a ```lang ... ``` wrapper.
func stripFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	nl := bytes.IndexByte(b, '\n')
	if nl < 0 {
		return b
	}
	inner := bytes.TrimSpace(b[nl+1:])
	inner = bytes.TrimSuffix(inner, []byte("```"))
	return bytes.TrimSpace(inner)
}
