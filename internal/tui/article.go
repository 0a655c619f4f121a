package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/zerozero-0-0/portfolio/internal/blog"
	"github.com/zerozero-0-0/portfolio/internal/search"
)

const dateLayout = "2006-01-02"

// FormatMillis renders a unix millisecond timestamp in local time.
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func shortDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return truncateEnd(iso, len(dateLayout))
	}
	return t.Format(dateLayout)
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return TagStyle.Render("#" + strings.Join(tags, " #"))
}

// ArticleTable lists articles one per line: update date, title, slug and
// tags, cut to width.
func ArticleTable(metas []blog.ArticleMeta, width int) string {
	if len(metas) == 0 {
		return HelpStyle.Render(MsgNoResults)
	}

	titleWidth := max(width-len(dateLayout)-4, 20)
	var b strings.Builder
	for _, m := range metas {
		fmt.Fprintf(&b, "%s  %s\n", TimeStyle.Render(shortDate(m.UpdatedAt)), TitleStyle.Render(truncateEnd(m.Title, titleWidth)))
		meta := HelpStyle.Render(truncateMiddle(m.Slug, titleWidth/2))
		if tags := tagList(m.Tags); tags != "" {
			meta += "  " + tags
		}
		fmt.Fprintf(&b, "%s  %s\n", strings.Repeat(" ", len(dateLayout)), meta)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SearchResults lists hits with their best matching snippet.
func SearchResults(results []search.Result, width int) string {
	if len(results) == 0 {
		return HelpStyle.Render(MsgNoResults)
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(MsgResultsCount(len(results))))
	b.WriteString("\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%s  %s\n", TitleStyle.Render(truncateEnd(r.Article.Title, width)), HelpStyle.Render(r.Article.Slug))
		if len(r.Matches) > 0 {
			m := r.Matches[0]
			fmt.Fprintf(&b, "  %s %s\n", TimeStyle.Render(m.Field+":"), truncateEnd(m.Text, max(width-len(m.Field)-4, 20)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderArticle renders an article's Markdown for the terminal. Extra
// options are applied after the defaults, so callers can pick a style.
func RenderArticle(a blog.Article, width int, opts ...glamour.TermRendererOption) (string, error) {
	wrap := width * 9 / 10
	if wrap > 120 {
		wrap = 120
	}
	if wrap < 40 {
		wrap = 40
	}

	options := append([]glamour.TermRendererOption{
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	}, opts...)
	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}

	body, err := r.Render(a.Source)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", a.Meta.Identifier, err)
	}

	header := []string{
		HeaderStyle.Render(a.Meta.Title),
		TimeStyle.Render(fmt.Sprintf("created %s · updated %s", shortDate(a.Meta.CreatedAt), shortDate(a.Meta.UpdatedAt))),
	}
	if tags := tagList(a.Meta.Tags); tags != "" {
		header = append(header, tags)
	}
	return strings.Join(header, "\n") + "\n" + body, nil
}
