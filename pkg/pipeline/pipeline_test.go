package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckbind/internal/metrics"
	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/library"
	"github.com/joeblew999/deckbind/pkg/outline"
)

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	lib, err := library.Builtin(library.Options{})
	require.NoError(t, err)
	return New(lib, opts)
}

func testDeck() *deck.Deck {
	return &deck.Deck{
		Title: "Quarterly Review",
		Pages: []deck.Page{
			&deck.Cover{Title: "Quarterly Review", Subtitle: "Q3", Author: "Ops"},
			&deck.Outline{Title: "Agenda", Items: []string{"Numbers", "Plans"}},
			&deck.Content{Title: "Numbers", Layout: deck.LayoutTitleAndContent, Sections: []deck.Section{
				{Heading: "Revenue", Content: "Up 12%", BulletPoints: []string{"EMEA", "APAC"}},
			}},
			&deck.ThankYou{Title: "Thanks"},
		},
	}
}

type fakePDF struct {
	calls atomic.Int32
	pages int
}

func (f *fakePDF) RenderPDF(_ context.Context, deckXML []byte, pages int) ([]byte, error) {
	f.calls.Add(1)
	f.pages = pages
	if !bytes.Contains(deckXML, []byte("<deck")) {
		return nil, errors.New("not deck xml")
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{" PNG ", FormatPNG, false},
		{"deckxml", FormatDeckXML, false},
		{"decksh", FormatDecksh, false},
		{"pdf", FormatPDF, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "json", FormatScene.Ext())
	assert.Equal(t, "dsh", FormatDecksh.Ext())
	assert.True(t, FormatPNG.PerPage())
	assert.False(t, FormatDeckXML.PerPage())
}

func TestRenderSVG(t *testing.T) {
	p := newTestPipeline(t, Options{Workers: 2})
	d := testDeck()

	res, err := p.Render(context.Background(), d, FormatSVG)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Review", res.Title)
	assert.Equal(t, 4, res.SlideCount)
	require.Len(t, res.Slides, 4)
	require.Len(t, res.Scenes, 4)
	for i, s := range res.Slides {
		assert.Contains(t, string(s), "<svg", "slide %d", i)
	}
	// page order survives concurrent rendering
	assert.Contains(t, string(res.Slides[1]), "Agenda")
	assert.Contains(t, string(res.Slides[2]), "Revenue")
	assert.Equal(t, 1, res.Scenes[0].TemplateID)
	assert.Equal(t, 6, res.Scenes[3].TemplateID)
}

func TestRenderFormats(t *testing.T) {
	pdf := &fakePDF{}
	p := newTestPipeline(t, Options{PDF: pdf})
	d := testDeck()
	ctx := context.Background()

	t.Run("png", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatPNG)
		require.NoError(t, err)
		require.Len(t, res.Slides, 4)
		assert.True(t, bytes.HasPrefix(res.Slides[0], []byte("\x89PNG")))
	})

	t.Run("scene", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatScene)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(res.Slides[0], &got))
		assert.EqualValues(t, 1, got["templateId"])
	})

	t.Run("filled", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatFilled)
		require.NoError(t, err)
		assert.Contains(t, string(res.Slides[2]), "Numbers")
	})

	t.Run("deckxml", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatDeckXML)
		require.NoError(t, err)
		require.Len(t, res.Slides, 1)
		assert.Equal(t, 4, strings.Count(string(res.Slides[0]), "<slide"))
	})

	t.Run("decksh", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatDecksh)
		require.NoError(t, err)
		require.Len(t, res.Slides, 1)
		assert.True(t, strings.HasPrefix(string(res.Slides[0]), "deck"))
	})

	t.Run("pdf", func(t *testing.T) {
		res, err := p.Render(ctx, d, FormatPDF)
		require.NoError(t, err)
		require.Len(t, res.Slides, 1)
		assert.Equal(t, int32(1), pdf.calls.Load())
		assert.Equal(t, 4, pdf.pages)
	})
}

func TestRenderErrors(t *testing.T) {
	p := newTestPipeline(t, Options{})
	ctx := context.Background()

	_, err := p.Render(ctx, testDeck(), FormatPDF)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Render(ctx, testDeck(), Format("gif"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Render(ctx, &deck.Deck{Title: "empty"}, FormatSVG)
	assert.ErrorIs(t, err, deck.ErrInvalidShape)

	_, err = p.Render(ctx, nil, FormatSVG)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Render(cancelled, testDeck(), FormatSVG)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderPage(t *testing.T) {
	p := newTestPipeline(t, Options{})
	d := testDeck()
	ctx := context.Background()

	out, err := p.RenderPage(ctx, d, 3, FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Thanks")

	_, err = p.RenderPage(ctx, d, 4, FormatSVG)
	assert.ErrorIs(t, err, ErrPageRange)
	_, err = p.RenderPage(ctx, d, -1, FormatSVG)
	assert.ErrorIs(t, err, ErrPageRange)
	_, err = p.RenderPage(ctx, d, 0, FormatDeckXML)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderMarkdownSlideOnce(t *testing.T) {
	md := "### PPT大纲：新能源汽车\n" +
		"#### 幻灯片1: 市场概况\n" +
		"- 内容要点：\n" +
		"  - 增长迅速\n" +
		"  - 政策支持\n"
	d, _, err := outline.Decode([]byte(md))
	require.NoError(t, err)

	p := newTestPipeline(t, Options{})
	out, err := p.RenderPage(context.Background(), d, 1, FormatSVG)
	require.NoError(t, err)

	svg := string(out)
	for _, text := range []string{"市场概况", "增长迅速", "政策支持"} {
		assert.Equal(t, 1, strings.Count(svg, text), "occurrences of %q", text)
	}
}

func TestSceneCache(t *testing.T) {
	m := metrics.New()
	p := newTestPipeline(t, Options{Workers: 1, CacheSize: 2, Metrics: m})
	d := testDeck()
	ctx := context.Background()

	first, err := p.Render(ctx, d, FormatScene)
	require.NoError(t, err)
	assert.Equal(t, 2, p.cache.len())

	// the last two pages are still cached
	again, err := p.RenderPage(ctx, d, 3, FormatScene)
	require.NoError(t, err)
	assert.Equal(t, first.Slides[3], again)
	assert.Equal(t, 2, p.cache.len())

	// a content change is a different key
	d.Pages[3].(*deck.ThankYou).Title = "Bye"
	changed, err := p.RenderPage(ctx, d, 3, FormatScene)
	require.NoError(t, err)
	assert.NotEqual(t, first.Slides[3], changed)
}

func TestSceneCacheEviction(t *testing.T) {
	c := newSceneCache(2)
	page := func(title string) deck.Page { return &deck.SectionHeader{Title: title} }

	keys := make([]cacheKey, 0, 3)
	for _, title := range []string{"a", "b", "c"} {
		k, ok := c.key(4, page(title))
		require.True(t, ok)
		c.put(k, nil)
		keys = append(keys, k)
	}
	assert.Equal(t, 2, c.len())
	_, present := c.items[keys[0]]
	assert.False(t, present, "oldest entry should be evicted")

	other, _ := c.key(5, page("a"))
	assert.NotEqual(t, keys[0], other, "template id is part of the key")

	disabled := newSceneCache(0)
	_, ok := disabled.key(1, page("a"))
	assert.False(t, ok)
	assert.Equal(t, 0, disabled.len())
}

func TestFill(t *testing.T) {
	p := newTestPipeline(t, Options{})
	filled, err := p.Fill(&deck.SectionHeader{Title: "Part two"})
	require.NoError(t, err)
	assert.Equal(t, 4, filled.ID)

	_, err = p.Fill(nil)
	assert.Error(t, err)
}
