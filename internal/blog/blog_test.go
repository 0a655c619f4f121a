package blog

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func parse(t *testing.T, name, raw string) Article {
	t.Helper()
	a, err := ParseArticle(name, []byte(raw), NewRenderer(), loadTime)
	require.NoError(t, err)
	return a
}

func TestParseArticle_YAMLDefaults(t *testing.T) {
	a := parse(t, "posts/Hello World.md", `---
title: Hello
createdAt: 2025-01-04
tags:
  - diary
  - 2025
excerpt: "  A short intro.  "
---

First paragraph.
`)

	assert.Equal(t, "Hello", a.Meta.Title)
	assert.Equal(t, "hello-world", a.Meta.Identifier)
	assert.Equal(t, "hello-world", a.Meta.Slug, "slug defaults to identifier")
	assert.Equal(t, "2025-01-04T00:00:00.000Z", a.Meta.CreatedAt)
	assert.Equal(t, a.Meta.CreatedAt, a.Meta.UpdatedAt, "updatedAt defaults to createdAt")
	assert.Equal(t, []string{"diary", "2025"}, a.Meta.Tags)
	assert.Equal(t, "A short intro.", a.Meta.Excerpt)
	assert.Contains(t, a.Content, "<p>First paragraph.</p>")
	assert.Equal(t, "First paragraph.", a.Text)
	assert.Equal(t, "\nFirst paragraph.\n", a.Source)
}

func TestParseArticle_ExplicitFields(t *testing.T) {
	a := parse(t, "x.md", `---
title: Reaching green
identifier: atcoder-green
slug: reaching-green
createdAt: 2025-03-02T21:00:00+09:00
updatedAt: 2025-03-09T10:30:00+09:00
---
body
`)

	assert.Equal(t, "atcoder-green", a.Meta.Identifier)
	assert.Equal(t, "reaching-green", a.Meta.Slug)
	assert.Equal(t, "2025-03-02T12:00:00.000Z", a.Meta.CreatedAt)
	assert.Equal(t, "2025-03-09T01:30:00.000Z", a.Meta.UpdatedAt)
	assert.Nil(t, a.Meta.Tags)
}

func TestParseArticle_DateAlias(t *testing.T) {
	a := parse(t, "x.md", "---\ndate: 2024-12-31\n---\nbody\n")
	assert.Equal(t, "2024-12-31T00:00:00.000Z", a.Meta.CreatedAt)
}

func TestParseArticle_TOML(t *testing.T) {
	a := parse(t, "chart.md", `+++
title = "Chart"
createdAt = 2025-05-18
updatedAt = 2025-05-20T08:00:00Z
tags = ["go", "github"]
+++

Body text.
`)

	assert.Equal(t, "Chart", a.Meta.Title)
	assert.Equal(t, "2025-05-18T00:00:00.000Z", a.Meta.CreatedAt)
	assert.Equal(t, "2025-05-20T08:00:00.000Z", a.Meta.UpdatedAt)
	assert.Equal(t, []string{"go", "github"}, a.Meta.Tags)
}

func TestParseArticle_NoFrontMatter(t *testing.T) {
	a := parse(t, "plain-notes.md", "Just some text that\nspans two lines.\n\nSecond.\n")

	assert.Equal(t, "plain-notes", a.Meta.Title, "title falls back to slug")
	assert.Equal(t, loadTime.Format(isoLayout), a.Meta.CreatedAt)
	assert.Equal(t, loadTime.Format(isoLayout), a.Meta.UpdatedAt)
	assert.Equal(t, "Just some text that spans two lines.", a.Meta.Excerpt)
}

func TestParseArticle_InvalidDateUsesLoadTime(t *testing.T) {
	a := parse(t, "x.md", "---\ncreatedAt: someday\n---\n")
	assert.Equal(t, loadTime.Format(isoLayout), a.Meta.CreatedAt)
}

func TestParseArticle_NonASCIIFileName(t *testing.T) {
	a := parse(t, "日記.md", "body")
	assert.Equal(t, "日記", a.Meta.Identifier)
}

func TestParseArticle_Errors(t *testing.T) {
	r := NewRenderer()

	_, err := ParseArticle("open.md", []byte("---\ntitle: x\nbody without close\n"), r, loadTime)
	assert.ErrorContains(t, err, "never closed")

	_, err = ParseArticle("bad.md", []byte("---\ntitle: [unterminated\n---\n"), r, loadTime)
	assert.ErrorContains(t, err, "bad.md")
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":          "hello-world",
		"Héllo, Wörld!":        "hello-world",
		"  --Go 1.22 Notes--  ": "go-1-22-notes",
		"already-a-slug":       "already-a-slug",
		"日本語":                  "",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestRenderer(t *testing.T) {
	html, err := NewRenderer().Render([]byte(`## What to expect

<script>alert(1)</script>
<a href="https://example.com" onclick="steal()">link</a>

| a | b |
|---|---|
| 1 | 2 |

` + "```go\nfmt.Println(1)\n```\n"))
	require.NoError(t, err)

	assert.Contains(t, html, `<h2 id="what-to-expect">What to expect</h2>`)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "onclick")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<code class="language-go">`)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "second", Excerpt("<h1>t</h1><p>  </p><p>second</p><p>third</p>", 10))
	assert.Equal(t, "abcd…", Excerpt("<p>abcdefgh</p>", 5))
	assert.Equal(t, "", Excerpt("<h1>only heading</h1>", 10))
}

func article(id, slug, updated string, tags ...string) Article {
	return Article{Meta: ArticleMeta{Title: id, Identifier: id, Slug: slug, CreatedAt: updated, UpdatedAt: updated, Tags: tags}}
}

func TestIndex(t *testing.T) {
	ix, err := NewIndex([]Article{
		article("old", "old-slug", "2024-01-01T00:00:00.000Z", "go"),
		article("new", "new-slug", "2025-01-01T00:00:00.000Z", "go", "atcoder"),
		article("mid", "new", "2024-06-01T00:00:00.000Z"),
	})
	require.NoError(t, err)

	ids := func(metas []ArticleMeta) []string {
		var out []string
		for _, m := range metas {
			out = append(out, m.Identifier)
		}
		return out
	}

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, []string{"new", "mid", "old"}, ids(ix.List()))

	got, ok := ix.Get("new")
	require.True(t, ok)
	assert.Equal(t, "new", got.Meta.Identifier, "identifier wins over a matching slug")

	got, ok = ix.Get("old-slug")
	require.True(t, ok)
	assert.Equal(t, "old", got.Meta.Identifier)

	_, ok = ix.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"atcoder", "go"}, ix.Tags())
	assert.Equal(t, []string{"new", "old"}, ids(ix.ByTag("go")))
	assert.Empty(t, ix.ByTag("rust"))
	assert.NotNil(t, ix.ByTag("rust"))
}

func TestIndex_DuplicateIdentifier(t *testing.T) {
	_, err := NewIndex([]Article{
		article("same", "a", "2024-01-01T00:00:00.000Z"),
		article("same", "b", "2024-01-02T00:00:00.000Z"),
	})
	assert.ErrorContains(t, err, `duplicate article identifier "same"`)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"first.md":        {Data: []byte("---\ntitle: First\ncreatedAt: 2025-01-01\n---\nhi\n")},
		"nested/second.md": {Data: []byte("---\ntitle: Second\ncreatedAt: 2025-02-01\n---\nhi\n")},
		"README.txt":      {Data: []byte("ignored")},
	}

	ix, err := Load(fsys, NewRenderer(), loadTime)
	require.NoError(t, err)
	require.Equal(t, 2, ix.Len())
	assert.Equal(t, "second", ix.List()[0].Identifier)
	assert.Equal(t, "first", ix.List()[1].Identifier)
}

func TestLoad_PropagatesParseErrors(t *testing.T) {
	fsys := fstest.MapFS{"broken.md": {Data: []byte("+++\ntitle = \n")}}
	_, err := Load(fsys, NewRenderer(), loadTime)
	assert.ErrorContains(t, err, "broken.md")
}

func TestEmbeddedContent(t *testing.T) {
	ix, err := Load(Embedded(), NewRenderer(), loadTime)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ix.Len(), 3)

	a, ok := ix.Get("reaching-green")
	require.True(t, ok)
	assert.Equal(t, "atcoder-green", a.Meta.Identifier)
	assert.Contains(t, ix.Tags(), "go")
}

func TestWriteRSS(t *testing.T) {
	ix, err := NewIndex([]Article{
		{Meta: ArticleMeta{
			Title: "Older", Identifier: "older", Slug: "older",
			CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z",
			Excerpt: "first words",
		}},
		{Meta: ArticleMeta{
			Title: "Newer & better", Identifier: "newer", Slug: "newer-slug",
			CreatedAt: "2025-01-01T09:30:00.000Z", UpdatedAt: "2025-01-02T00:00:00.000Z",
			Tags: []string{"go"},
		}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ix.WriteRSS(&buf, FeedInfo{Title: "zerozero blog", SiteURL: "https://zerozero.dev/"}))

	feed, err := gofeed.NewParser().ParseString(buf.String())
	require.NoError(t, err)

	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "zerozero blog", feed.Title)
	assert.Equal(t, "https://zerozero.dev/blog", feed.Link)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Newer & better", first.Title)
	assert.Equal(t, "https://zerozero.dev/blog/newer-slug", first.Link)
	assert.Equal(t, []string{"go"}, first.Categories)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)))

	assert.Equal(t, "first words", feed.Items[1].Description)
}
