// Package server exposes the portfolio API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zerozero-0-0/portfolio/internal/blog"
	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/config"
	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/langstat"
	"github.com/zerozero-0-0/portfolio/internal/search"
	"github.com/zerozero-0-0/portfolio/internal/validation"
)

// LanguageSource produces a user's language breakdown.
type LanguageSource interface {
	Username() string
	FetchLanguageSummary(ctx context.Context) cache.Result[[]langstat.Usage]
}

// RatingSource produces a user's latest contest rating.
type RatingSource interface {
	Username() string
	LatestRateResult(ctx context.Context) cache.Result[int]
}

// Options carries everything a Server needs. Background is waited on during
// shutdown; it should be the scheduler Coordinator writes with.
type Options struct {
	Config      config.ServerConfig
	TTL         time.Duration
	Coordinator *cache.Coordinator
	Background  *cache.Background
	Languages   LanguageSource
	Rating      RatingSource
	Articles    *blog.Index
	Search      search.Searcher
	Feed        blog.FeedInfo
}

type Server struct {
	opts    Options
	handler http.Handler
}

func New(opts Options) (*Server, error) {
	if opts.Coordinator == nil || opts.Languages == nil || opts.Rating == nil || opts.Articles == nil {
		return nil, errors.New("server: coordinator, sources and articles are required")
	}
	if opts.TTL <= 0 {
		opts.TTL = config.CacheTTL
	}

	origins, err := validation.NewAllowList(validation.NewOriginValidator(), opts.Config.AllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{opts: opts}
	s.handler = Chain(s.routes(), RecoverPanic(), LogRequests(), CORS(origins))
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then drains in-flight
// requests and pending cache writes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.Config.ReadTimeout,
		WriteTimeout: s.opts.Config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		debuglog.Infof("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.drainBackground()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.Config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	debuglog.Infof("shutting down")
	err := srv.Shutdown(shutdownCtx)
	s.drainBackground()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) drainBackground() {
	if s.opts.Background != nil {
		s.opts.Background.Wait()
	}
}
