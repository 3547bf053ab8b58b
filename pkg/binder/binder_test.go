package binder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/paint"
	"github.com/joeblew999/deckbind/pkg/template"
)

// textSlot builds a text element holding a placeholder run.
func textSlot(id int, placeholder string) *template.TextElement {
	return &template.TextElement{
		Frame: template.Frame{ID: id, Width: 100, Height: 40},
		Contents: []template.TextRun{{
			Content:    placeholder,
			FontFamily: "Noto Sans",
			FontSize:   20,
			FontWeight: "400",
			FontFill:   paint.SolidRGBA(0, 0, 0, 1),
		}},
	}
}

func newTemplate(elems ...template.Element) *template.Template {
	return &template.Template{ID: 1, Background: paint.SolidToken("#fff"), Elements: elems}
}

// contents returns the run texts of every text element, in order.
func contents(f *template.Filled) [][]string {
	var out [][]string
	for _, e := range f.TextElements() {
		var runs []string
		for _, r := range e.Contents {
			runs = append(runs, r.Content)
		}
		out = append(out, runs)
	}
	return out
}

func TestBindPositionalOverflow(t *testing.T) {
	tmpl := newTemplate(textSlot(1, "T"), textSlot(2, "H"), textSlot(3, "B"))
	page := &deck.Content{
		Title: "市场概况",
		Sections: []deck.Section{
			{Heading: "规模", Content: "增长迅速", BulletPoints: []string{"销量"}},
			{Heading: "政策", Content: "补贴"},
		},
	}

	filled, err := Bind(tmpl, page)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	want := [][]string{{"市场概况"}, {"规模"}, {"增长迅速"}}
	if got := contents(filled); !reflect.DeepEqual(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}
	if n := len(filled.TextElements()); n != 3 {
		t.Errorf("got %d text elements, want 3", n)
	}
}

func TestBindCoverByID(t *testing.T) {
	tests := []struct {
		name  string
		elems []template.Element
		page  *deck.Cover
		want  [][]string
	}{
		{
			name:  "all fields",
			elems: []template.Element{textSlot(5, "t"), textSlot(6, "s"), textSlot(7, "a"), textSlot(8, "d")},
			page:  &deck.Cover{Title: "Title", Subtitle: "Sub", Author: "Ann", Date: "2024"},
			want:  [][]string{{"Title"}, {"Sub"}, {"Ann"}, {"2024"}},
		},
		{
			name:  "missing fields keep placeholders",
			elems: []template.Element{textSlot(5, "t"), textSlot(6, "s"), textSlot(7, "a"), textSlot(8, "d")},
			page:  &deck.Cover{Title: "Title", Date: "2024"},
			want:  [][]string{{"Title"}, {"s"}, {"a"}, {"2024"}},
		},
		{
			name:  "no subtitle",
			elems: []template.Element{textSlot(5, "t"), textSlot(6, "s"), textSlot(7, "a"), textSlot(8, "d")},
			page:  &deck.Cover{Title: "T", Author: "Alice", Date: "2025"},
			want:  [][]string{{"T"}, {"s"}, {"Alice"}, {"2025"}},
		},
		{
			name:  "title falls back to id 6",
			elems: []template.Element{textSlot(6, "t"), textSlot(7, "a"), textSlot(8, "d")},
			page:  &deck.Cover{Title: "Title", Subtitle: "Sub", Author: "Ann", Date: "2024"},
			want:  [][]string{{"Title"}, {"Ann"}, {"2024"}},
		},
		{
			name:  "decorations keep their text",
			elems: []template.Element{textSlot(1, "logo"), textSlot(5, "t"), textSlot(11, "footer")},
			page:  &deck.Cover{Title: "Title", Subtitle: "Sub"},
			want:  [][]string{{"logo"}, {"Title"}, {"footer"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, err := Bind(newTemplate(tt.elems...), tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if got := contents(filled); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("contents = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindBuiltinCover(t *testing.T) {
	lib, err := library.Builtin(library.Options{})
	if err != nil {
		t.Fatal(err)
	}
	filled, err := Bind(lib.Lookup(deck.KindCover), &deck.Cover{Title: "T", Author: "Alice", Date: "2025"})
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[int]string)
	for _, e := range filled.TextElements() {
		if len(e.Contents) > 0 {
			got[e.ID] = e.Contents[0].Content
		}
	}
	want := map[int]string{5: "T", 6: "副标题", 7: "Alice", 8: "2025"}
	for id, text := range want {
		if got[id] != text {
			t.Errorf("id %d = %q, want %q", id, got[id], text)
		}
	}
}

func TestBindContentByID(t *testing.T) {
	var elems []template.Element
	for id := 5; id <= 11; id++ {
		elems = append(elems, textSlot(id, "p"))
	}
	page := &deck.Content{
		Title: "T",
		Sections: []deck.Section{
			{Heading: "H1", Content: "C1"},
			{Heading: "H2", Content: "C2", BulletPoints: []string{"x", "", "y"}},
		},
	}

	filled, err := Bind(newTemplate(elems...), page)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"T"}, {"H1"}, {"C1"}, {"p"}, {"H2"}, {"C2"}, {"x", "y"}}
	if got := contents(filled); !reflect.DeepEqual(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}
}

func TestBindBulletsInheritStyle(t *testing.T) {
	slot := textSlot(4, "bullets")
	slot.Contents[0].FontFill = paint.SolidToken("crimson")
	tmpl := newTemplate(textSlot(1, "t"), textSlot(2, "h"), textSlot(3, "c"), slot)
	page := &deck.Content{Title: "T", Sections: []deck.Section{{BulletPoints: []string{"one", "two", "three"}}}}

	filled, err := Bind(tmpl, page)
	if err != nil {
		t.Fatal(err)
	}
	runs := filled.TextElements()[3].Contents
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, r := range runs {
		if r.FontFamily != "Noto Sans" || r.FontSize != 20 || r.FontWeight != "400" || r.FontFill.Color.Token != "crimson" {
			t.Errorf("run %d lost styling: %+v", i, r)
		}
	}
	// Empty heading and body leave their placeholders.
	if got := contents(filled)[1:3]; !reflect.DeepEqual(got, [][]string{{"h"}, {"c"}}) {
		t.Errorf("placeholders = %v", got)
	}
}

func TestBindSectionsReserveThreeSlots(t *testing.T) {
	var elems []template.Element
	for i := 0; i < 7; i++ {
		elems = append(elems, textSlot(0, "p"))
	}
	page := &deck.Content{
		Title: "T",
		Sections: []deck.Section{
			{Heading: "H1", Content: "C1"},
			{Heading: "H2", Content: "C2"},
		},
	}

	filled, err := Bind(newTemplate(elems...), page)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"T"}, {"H1"}, {"C1"}, {"p"}, {"H2"}, {"C2"}, {"p"}}
	if got := contents(filled); !reflect.DeepEqual(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}
}

func TestBindPages(t *testing.T) {
	four := func() *template.Template {
		return newTemplate(textSlot(0, "a"), textSlot(0, "b"), textSlot(0, "c"), textSlot(0, "d"))
	}

	tests := []struct {
		name string
		page deck.Page
		want [][]string
	}{
		{
			name: "outline items overflow",
			page: &deck.Outline{Title: "目录", Items: []string{"one", "", "two", "three"}},
			want: [][]string{{"目录"}, {"b"}, {"one"}, {"two"}},
		},
		{
			name: "section header",
			page: &deck.SectionHeader{Title: "Part", Subtitle: "Two"},
			want: [][]string{{"Part"}, {"Two"}, {"c"}, {"d"}},
		},
		{
			name: "conclusion",
			page: &deck.Conclusion{Title: "总结", Content: "body", KeyPoints: []string{"k1", "k2", "k3"}},
			want: [][]string{{"总结"}, {"body"}, {"k1"}, {"k2"}},
		},
		{
			name: "thank you",
			page: &deck.ThankYou{Title: "谢谢", Contact: "mail"},
			want: [][]string{{"谢谢"}, {"b"}, {"mail"}, {"d"}},
		},
		{
			name: "cover positional",
			page: &deck.Cover{Title: "T", Author: "A", Date: "   "},
			want: [][]string{{"T"}, {"b"}, {"A"}, {"d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, err := Bind(four(), tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if got := contents(filled); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("contents = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindSkipsNonTextElements(t *testing.T) {
	tmpl := newTemplate(
		&template.ImageElement{Src: "bg.png"},
		&template.UnknownElement{Tag: "chart"},
		textSlot(0, "t"),
		textSlot(0, "s"),
	)
	filled, err := Bind(tmpl, &deck.SectionHeader{Title: "Part", Subtitle: "Two"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filled.Elements) != 4 {
		t.Errorf("got %d elements, want 4", len(filled.Elements))
	}
	if got := contents(filled); !reflect.DeepEqual(got, [][]string{{"Part"}, {"Two"}}) {
		t.Errorf("contents = %v", got)
	}
}

func TestBindCreatesRunWhenEmpty(t *testing.T) {
	tmpl := newTemplate(&template.TextElement{})
	filled, err := Bind(tmpl, &deck.SectionHeader{Title: "Part"})
	if err != nil {
		t.Fatal(err)
	}
	if got := contents(filled); !reflect.DeepEqual(got, [][]string{{"Part"}}) {
		t.Errorf("contents = %v", got)
	}
}

func TestBindEmptyTemplate(t *testing.T) {
	tmpl := newTemplate()
	tmpl.Elements = []template.Element{}
	filled, err := Bind(tmpl, &deck.Cover{Title: "T"})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if filled.Elements == nil || len(filled.Elements) != 0 {
		t.Errorf("Elements = %#v, want empty", filled.Elements)
	}
}

func TestBindIsPureAndIsolated(t *testing.T) {
	src := newTemplate(textSlot(5, "t"), textSlot(6, "h"), textSlot(7, "c"), textSlot(8, "b"))
	before := src.Clone()
	page := &deck.Content{Title: "T", Sections: []deck.Section{{Heading: "H", Content: "C", BulletPoints: []string{"x"}}}}

	first, err := Bind(src, page)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Bind(src, page)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two binds of the same input differ")
	}
	if !reflect.DeepEqual(src, before) {
		t.Error("Bind modified the source template")
	}
	first.TextElements()[0].SetText("mutated")
	if reflect.DeepEqual(first, second) {
		t.Error("filled templates share memory")
	}
}

func TestBindExplicitSlots(t *testing.T) {
	tmpl := newTemplate(textSlot(20, "x"), textSlot(21, "y"))
	tmpl.Slots = template.SlotMap{
		deck.KindThankYou: {
			{Field: template.FieldContact, By: template.ByID, Slots: []int{20}},
			{Field: template.FieldTitle, By: template.ByID, Slots: []int{20, 21}, Fallback: true},
		},
	}
	filled, err := Bind(tmpl, &deck.ThankYou{Title: "Thanks", Contact: "mail"})
	if err != nil {
		t.Fatal(err)
	}
	if got := contents(filled); !reflect.DeepEqual(got, [][]string{{"mail"}, {"Thanks"}}) {
		t.Errorf("contents = %v", got)
	}
}

func TestBindNilInput(t *testing.T) {
	if _, err := Bind(nil, &deck.Cover{}); !errors.Is(err, ErrNilInput) {
		t.Errorf("Bind(nil, page) error = %v", err)
	}
	if _, err := Bind(newTemplate(), nil); !errors.Is(err, ErrNilInput) {
		t.Errorf("Bind(tmpl, nil) error = %v", err)
	}
}
