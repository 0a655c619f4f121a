package blog

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.toISOString so stored timestamps sort
// lexically.
const isoLayout = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseArticle builds an article from a Markdown file. name is the file path
// relative to the content root; now stamps missing or invalid dates.
func ParseArticle(name string, raw []byte, r *Renderer, now time.Time) (Article, error) {
	data, body, err := splitFrontMatter(raw)
	if err != nil {
		return Article{}, fmt.Errorf("%s: %w", name, err)
	}

	identifier := stringField(data, "identifier")
	if identifier == "" {
		base := strings.TrimSuffix(path.Base(name), path.Ext(name))
		identifier = Slugify(base)
		if identifier == "" {
			identifier = base
		}
	}

	slug := stringField(data, "slug")
	if slug == "" {
		slug = identifier
	}

	title := stringField(data, "title")
	if title == "" {
		title = slug
	}

	createdRaw := data["createdAt"]
	if createdRaw == nil {
		createdRaw = data["date"]
	}
	updatedRaw := data["updatedAt"]
	if updatedRaw == nil {
		updatedRaw = createdRaw
	}

	content, err := r.Render(body)
	if err != nil {
		return Article{}, fmt.Errorf("%s: %w", name, err)
	}

	excerpt := stringField(data, "excerpt")
	if excerpt == "" {
		excerpt = Excerpt(content, excerptLength)
	}

	return Article{
		Meta: ArticleMeta{
			Title:      title,
			Identifier: identifier,
			Slug:       slug,
			CreatedAt:  normalizeDate(createdRaw, now),
			UpdatedAt:  normalizeDate(updatedRaw, now),
			Tags:       tagsField(data["tags"]),
			Excerpt:    excerpt,
		},
		Content: content,
		Source:  string(body),
		Text:    PlainText(content),
	}, nil
}

func stringField(data map[string]any, key string) string {
	s, ok := data[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func tagsField(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, t := range list {
		s := strings.TrimSpace(fmt.Sprint(t))
		if s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

// normalizeDate renders v as a UTC ISO-8601 timestamp. YAML may hand over
// a time.Time or a string; TOML local dates arrive as fmt.Stringers.
func normalizeDate(v any, now time.Time) string {
	switch d := v.(type) {
	case time.Time:
		return d.UTC().Format(isoLayout)
	case string:
		if t, ok := parseDate(d); ok {
			return t.UTC().Format(isoLayout)
		}
	case fmt.Stringer:
		if t, ok := parseDate(d.String()); ok {
			return t.UTC().Format(isoLayout)
		}
	}
	return now.UTC().Format(isoLayout)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
