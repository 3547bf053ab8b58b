package deck

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleDeck = `{
  "title": "新能源汽车",
  "outline": ["市场概况"],
  "pages": [
    {"type": "cover", "title": "新能源汽车", "subtitle": "行业报告", "author": "", "date": "2024"},
    {"type": "outline", "title": "目录", "outline": ["市场概况", "技术路线"]},
    {"type": "content", "title": "市场概况", "layout": "two_content",
     "sections": [{"heading": "规模", "content": "增长迅速", "bulletPoints": ["销量", "渗透率"]}],
     "design": {"style": "modern", "colorScheme": "blue", "visuals": ["chart"]}},
    {"type": "section_header", "title": "第二部分"},
    {"type": "conclusion", "title": "总结", "content": "前景广阔", "keyPoints": ["政策", "技术"]},
    {"type": "thank_you", "title": "谢谢", "contact": "hi@example.com"}
  ]
}`

func TestDecode(t *testing.T) {
	d, err := Decode([]byte(sampleDeck))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if d.Title != "新能源汽车" {
		t.Errorf("Title = %q", d.Title)
	}

	wantKinds := []Kind{KindCover, KindOutline, KindContent, KindSectionHeader, KindConclusion, KindThankYou}
	if len(d.Pages) != len(wantKinds) {
		t.Fatalf("got %d pages, want %d", len(d.Pages), len(wantKinds))
	}
	for i, k := range wantKinds {
		if d.Pages[i].Kind() != k {
			t.Errorf("page %d kind = %s, want %s", i, d.Pages[i].Kind(), k)
		}
	}

	c := d.Pages[2].(*Content)
	if c.Layout != LayoutTwoContent {
		t.Errorf("Layout = %q", c.Layout)
	}
	if c.Design == nil || c.Design.ColorScheme != "blue" {
		t.Errorf("Design = %+v", c.Design)
	}
	if !reflect.DeepEqual(c.Sections[0].BulletPoints, []string{"销量", "渗透率"}) {
		t.Errorf("BulletPoints = %v", c.Sections[0].BulletPoints)
	}
	if got := d.Pages[1].(*Outline).Items; len(got) != 2 {
		t.Errorf("outline items = %v", got)
	}
	if got := Title(d.Pages[5]); got != "谢谢" {
		t.Errorf("Title(thank_you) = %q", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"not an object", `["cover"]`, ErrInvalidShape},
		{"pages not array", `{"title":"x","pages":{"type":"cover"}}`, ErrInvalidShape},
		{"page not object", `{"pages":["cover"]}`, ErrInvalidShape},
		{"unknown page type", `{"pages":[{"type":"agenda","title":"x"}]}`, ErrUnknownPageType},
		{"missing page type", `{"pages":[{"title":"x"}]}`, ErrUnknownPageType},
		{"wrong field type", `{"pages":[{"type":"cover","title":7}]}`, ErrInvalidShape},
		{"no pages", `{"title":"x","pages":[]}`, ErrInvalidShape},
		{"bad layout", `{"pages":[{"type":"content","title":"x","layout":"grid"}]}`, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeDefaultsLayout(t *testing.T) {
	d, err := Decode([]byte(`{"pages":[{"type":"content","title":"x","sections":[]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Pages[0].(*Content).Layout; got != LayoutTitleAndContent {
		t.Errorf("Layout = %q, want %q", got, LayoutTitleAndContent)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := Decode([]byte(sampleDeck))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	again, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode(Marshal()) error = %v", err)
	}
	if !reflect.DeepEqual(d, again) {
		t.Errorf("round trip mismatch:\n%s", b)
	}
}

func TestMarshalPageTag(t *testing.T) {
	b, err := MarshalPage(&SectionHeader{Title: "Part 2"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), `{"type":"section_header","title":"Part 2"`) {
		t.Errorf("MarshalPage() = %s", b)
	}
	if _, err := MarshalPage(nil); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("MarshalPage(nil) error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("thank_you"); !ok || k != KindThankYou {
		t.Errorf("ParseKind(thank_you) = %q, %v", k, ok)
	}
	if _, ok := ParseKind("agenda"); ok {
		t.Error("ParseKind(agenda) should fail")
	}
}
