// Package blog loads the Markdown articles served by the API into an
// immutable in-memory index.
package blog

// ArticleMeta is what article listings return.
type ArticleMeta struct {
	Title      string   `json:"title"`
	Identifier string   `json:"identifier"`
	Slug       string   `json:"slug"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
	Tags       []string `json:"tags,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
}

// Article is a rendered article. Content is sanitized HTML.
type Article struct {
	Meta    ArticleMeta `json:"meta"`
	Content string      `json:"content"`

	// Source is the Markdown body without front matter.
	Source string `json:"-"`
	// Text is Content with markup stripped, used for search.
	Text string `json:"-"`
}

// HasTag reports whether the article carries tag exactly.
func (m ArticleMeta) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
