package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/zerozero-0-0/portfolio/internal/blog"
)

const defaultLimit = 20

// Engine is a full-text index over the blog articles. Articles never change
// while the process runs, so the index lives in memory only.
type Engine struct {
	idx      bleve.Index
	articles map[string]blog.Article
}

// NewEngine indexes articles by identifier.
func NewEngine(articles []blog.Article) (*Engine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	e := &Engine{idx: idx, articles: make(map[string]blog.Article, len(articles))}

	batch := idx.NewBatch()
	for _, a := range articles {
		e.articles[a.Meta.Identifier] = a
		if err := batch.Index(a.Meta.Identifier, map[string]any{
			"title":   a.Meta.Title,
			"excerpt": a.Meta.Excerpt,
			"content": a.Text,
			"tags":    a.Meta.Tags,
			"slug":    a.Meta.Slug,
		}); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", a.Meta.Identifier, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("indexing articles: %w", err)
	}
	return e, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	excerpt := bleve.NewTextFieldMapping()
	excerpt.Analyzer = standard.Name
	excerpt.Store = true

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	content.Store = false

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = standard.Name
	tags.Store = true

	slug := bleve.NewTextFieldMapping()
	slug.Analyzer = standard.Name
	slug.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("excerpt", excerpt)
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("tags", tags)
	dm.AddFieldMappingsAt("slug", slug)

	im.DefaultMapping = dm
	return im
}

type fieldBoost struct {
	field  string
	match  float64
	prefix float64
}

var boosts = []fieldBoost{
	{"title", 4.0, 3.5},
	{"excerpt", 2.0, 1.8},
	{"tags", 1.5, 1.2},
	{"content", 1.0, 0.8},
	{"slug", 0.5, 0.3},
}

// Search returns up to limit articles matching query, best first. Queries
// shorter than two characters match nothing.
func (e *Engine) Search(query string, limit int) ([]Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []Result{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, b := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(b.field)
			mq.SetBoost(b.match)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(b.field)
			pq.SetBoost(b.prefix)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := e.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		a, ok := e.articles[h.ID]
		if !ok {
			continue
		}
		out = append(out, Result{
			Article: a.Meta,
			Score:   h.Score,
			Matches: articleMatches(a, tokens),
		})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (e *Engine) DocCount() (int, error) {
	n, err := e.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (e *Engine) Close() error {
	return e.idx.Close()
}
