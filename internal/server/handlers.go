package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/zerozero-0-0/portfolio/internal/blog"
	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/storage"
)

const (
	searchLimit    = 20
	maxSearchLimit = 100
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/atcoder", s.handleAtCoder)
	mux.HandleFunc("GET /api/article", s.handleArticleList)
	mux.HandleFunc("GET /api/article/{id}", s.handleArticle)
	// Kept outside /api/article/ so no identifier is shadowed.
	mux.HandleFunc("GET /api/articles/search", s.handleArticleSearch)
	mux.HandleFunc("GET /api/tags", s.handleTags)
	mux.HandleFunc("GET /api/tags/{tag}", s.handleTag)
	mux.HandleFunc("GET /api/feed.xml", s.handleFeed)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	return mux
}

type languagesResponse struct {
	Data      any   `json:"data"`
	Cached    bool  `json:"cached"`
	FetchedAt int64 `json:"fetchedAt"`
}

func cacheHeader(w http.ResponseWriter, fromCache bool) {
	if fromCache {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	key := storage.LanguagesKey(s.opts.Languages.Username())
	res := cache.Handle(r.Context(), s.opts.Coordinator, key, s.opts.TTL, s.opts.Languages.FetchLanguageSummary)
	if res.IsCanceled() {
		debuglog.Debugf("languages: client went away")
		return
	}
	if !res.OK {
		writeError(w, res.StatusOr(http.StatusBadGateway), res.ErrorMessage)
		return
	}

	cacheHeader(w, res.FromCache)
	writeJSON(w, http.StatusOK, languagesResponse{Data: res.Data, Cached: res.FromCache, FetchedAt: res.FetchedAt})
}

func (s *Server) handleAtCoder(w http.ResponseWriter, r *http.Request) {
	key := storage.AtCoderRateKey(s.opts.Rating.Username())
	res := cache.Handle(r.Context(), s.opts.Coordinator, key, s.opts.TTL, s.opts.Rating.LatestRateResult)
	if res.IsCanceled() {
		debuglog.Debugf("atcoder: client went away")
		return
	}
	if !res.OK {
		writeError(w, http.StatusNotFound, res.ErrorMessage)
		return
	}

	cacheHeader(w, res.FromCache)
	writeJSON(w, http.StatusOK, map[string]int{"latestRating": res.Data})
}

type dataResponse struct {
	Data any `json:"data"`
}

func (s *Server) handleArticleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dataResponse{Data: s.opts.Articles.List()})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := s.opts.Articles.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: article})
}

func (s *Server) handleArticleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	if s.opts.Search == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not available")
		return
	}

	limit := searchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := s.opts.Search.Search(q, limit)
	if err != nil {
		debuglog.Errorf("search %q: %v", q, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	metas := make([]blog.ArticleMeta, 0, len(results))
	for _, res := range results {
		metas = append(metas, res.Article)
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: metas})
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dataResponse{Data: s.opts.Articles.Tags()})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataResponse{Data: s.opts.Articles.ByTag(r.PathValue("tag"))})
}

func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.opts.Articles.WriteRSS(&buf, s.opts.Feed); err != nil {
		debuglog.Errorf("rendering feed: %v", err)
		writeError(w, http.StatusInternalServerError, "feed unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
