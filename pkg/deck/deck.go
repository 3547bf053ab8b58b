// Package deck is the abstract, style-free slide deck model.
//
// A Deck is a title, an outline and an ordered list of pages. Page is a
// closed set of variants; each variant carries only its own fields.
package deck

import "errors"

var (
	// ErrInvalidShape is returned for documents that are not shaped like a deck.
	ErrInvalidShape = errors.New("invalid deck shape")
	// ErrUnknownPageType is returned for a page whose type tag is not recognised.
	ErrUnknownPageType = errors.New("unknown page type")
)

// Kind is a page type tag.
type Kind string

const (
	KindCover         Kind = "cover"
	KindOutline       Kind = "outline"
	KindContent       Kind = "content"
	KindSectionHeader Kind = "section_header"
	KindConclusion    Kind = "conclusion"
	KindThankYou      Kind = "thank_you"
)

// Kinds lists every page kind in presentation order.
var Kinds = []Kind{KindCover, KindOutline, KindContent, KindSectionHeader, KindConclusion, KindThankYou}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Layout is the arrangement requested for a content page.
type Layout string

const (
	LayoutTitleAndContent Layout = "title_and_content"
	LayoutTwoContent      Layout = "two_content"
	LayoutComparison      Layout = "comparison"
	LayoutBlank           Layout = "blank"
)

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	switch l {
	case LayoutTitleAndContent, LayoutTwoContent, LayoutComparison, LayoutBlank:
		return true
	}
	return false
}

// Deck is a full presentation.
type Deck struct {
	Title   string
	Outline []string
	Pages   []Page
}

// Page is one slide. The concrete type is one of *Cover, *Outline, *Content,
// *SectionHeader, *Conclusion or *ThankYou.
type Page interface {
	Kind() Kind
	isPage()
}

type Cover struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Author   string `json:"author,omitempty"`
	Date     string `json:"date,omitempty"`
}

type Outline struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Items    []string `json:"outline"`
}

type Content struct {
	Title    string    `json:"title"`
	Layout   Layout    `json:"layout,omitempty"`
	Sections []Section `json:"sections"`
	Design   *Design   `json:"design,omitempty"`
}

// Section is one heading/body/bullets group of a content page.
type Section struct {
	Heading      string   `json:"heading"`
	Content      string   `json:"content"`
	BulletPoints []string `json:"bulletPoints"`
}

// Design carries the generator's visual hints for a content page.
type Design struct {
	Style       string   `json:"style,omitempty"`
	ColorScheme string   `json:"colorScheme,omitempty"`
	Visuals     []string `json:"visuals,omitempty"`
}

type SectionHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

type Conclusion struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"keyPoints"`
}

type ThankYou struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

func (*Cover) Kind() Kind         { return KindCover }
func (*Outline) Kind() Kind       { return KindOutline }
func (*Content) Kind() Kind       { return KindContent }
func (*SectionHeader) Kind() Kind { return KindSectionHeader }
func (*Conclusion) Kind() Kind    { return KindConclusion }
func (*ThankYou) Kind() Kind      { return KindThankYou }

func (*Cover) isPage()         {}
func (*Outline) isPage()       {}
func (*Content) isPage()       {}
func (*SectionHeader) isPage() {}
func (*Conclusion) isPage()    {}
func (*ThankYou) isPage()      {}

// Title returns the title of any page variant.
func Title(p Page) string {
	switch p := p.(type) {
	case *Cover:
		return p.Title
	case *Outline:
		return p.Title
	case *Content:
		return p.Title
	case *SectionHeader:
		return p.Title
	case *Conclusion:
		return p.Title
	case *ThankYou:
		return p.Title
	}
	return ""
}
