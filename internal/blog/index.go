package blog

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/zerozero-0-0/portfolio/internal/debuglog"
)

// Index is an immutable set of articles, built once at startup.
type Index struct {
	articles []Article // newest update first
	byID     map[string]int
	bySlug   map[string]int
	tags     []string
}

// NewIndex orders articles by UpdatedAt, newest first. Two articles may not
// share an identifier.
func NewIndex(articles []Article) (*Index, error) {
	sorted := make([]Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Meta, sorted[j].Meta
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt > b.UpdatedAt
		}
		return a.Identifier < b.Identifier
	})

	ix := &Index{
		articles: sorted,
		byID:     make(map[string]int, len(sorted)),
		bySlug:   make(map[string]int, len(sorted)),
	}

	tagSet := map[string]bool{}
	for i, a := range sorted {
		if _, dup := ix.byID[a.Meta.Identifier]; dup {
			return nil, fmt.Errorf("duplicate article identifier %q", a.Meta.Identifier)
		}
		ix.byID[a.Meta.Identifier] = i
		if _, taken := ix.bySlug[a.Meta.Slug]; taken {
			debuglog.Warnf("blog: slug %q is used by more than one article", a.Meta.Slug)
		} else {
			ix.bySlug[a.Meta.Slug] = i
		}
		for _, t := range a.Meta.Tags {
			tagSet[t] = true
		}
	}

	ix.tags = make([]string, 0, len(tagSet))
	for t := range tagSet {
		ix.tags = append(ix.tags, t)
	}
	sort.Strings(ix.tags)

	return ix, nil
}

// Load parses every *.md file below the root of fsys.
func Load(fsys fs.FS, r *Renderer, now time.Time) (*Index, error) {
	var articles []Article
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		a, err := ParseArticle(p, raw, r, now)
		if err != nil {
			return err
		}
		articles = append(articles, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}

	debuglog.Infof("blog: loaded %d articles", len(articles))
	return NewIndex(articles)
}

func (ix *Index) Len() int { return len(ix.articles) }

// List returns article metadata, newest update first.
func (ix *Index) List() []ArticleMeta {
	out := make([]ArticleMeta, 0, len(ix.articles))
	for _, a := range ix.articles {
		out = append(out, a.Meta)
	}
	return out
}

// Articles returns the full articles in List order.
func (ix *Index) Articles() []Article {
	out := make([]Article, len(ix.articles))
	copy(out, ix.articles)
	return out
}

// Get looks key up as an identifier first, then as a slug.
func (ix *Index) Get(key string) (Article, bool) {
	if i, ok := ix.byID[key]; ok {
		return ix.articles[i], true
	}
	if i, ok := ix.bySlug[key]; ok {
		return ix.articles[i], true
	}
	return Article{}, false
}

// Tags returns every tag in use, sorted.
func (ix *Index) Tags() []string {
	out := make([]string, len(ix.tags))
	copy(out, ix.tags)
	return out
}

// ByTag lists articles carrying tag, newest update first.
func (ix *Index) ByTag(tag string) []ArticleMeta {
	out := []ArticleMeta{}
	for _, a := range ix.articles {
		if a.Meta.HasTag(tag) {
			out = append(out, a.Meta)
		}
	}
	return out
}
